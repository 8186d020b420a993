// Package number defines the arithmetic every working domain must provide so
// that expressions can be generated, evaluated and rendered over it.
package number

// Number is the capability set of a numeric domain. Implementations are value
// types; every method returns a fresh value and never mutates the receiver.
//
// Arithmetic is total: singularities yield NaN or infinities rather than
// errors or panics.
type Number[T any] interface {
	Add(T) T
	Sub(T) T
	Mul(T) T
	Div(T) T
	Neg() T
	Sqrt() T
	Pow(T) T

	// Distance is the non-negative closeness metric used to accept candidates.
	Distance(T) float64

	// FromInt and FromFloat embed host numbers; the receiver is ignored.
	FromInt(int64) T
	FromFloat(float64) T
	// Parse reads a literal of the domain; the receiver is ignored.
	Parse(string) (T, error)

	// Key identifies a value by its exact bit pattern. Two constants are the
	// same token iff their keys match, so -0 and +0 differ and NaN matches NaN.
	Key() string

	String() string
	LaTeX() string
}

// Zero returns the additive identity of T.
func Zero[T Number[T]]() T {
	var z T
	return z.FromInt(0)
}

// Int embeds n into T.
func Int[T Number[T]](n int64) T {
	var z T
	return z.FromInt(n)
}

// Float embeds f into T.
func Float[T Number[T]](f float64) T {
	var z T
	return z.FromFloat(f)
}

// Parse reads s as a literal of T.
func Parse[T Number[T]](s string) (T, error) {
	var z T
	return z.Parse(s)
}
