package number

import (
	"math"
	"math/big"
	"strings"

	"github.com/zephyrtronium/bigfloat"
)

// DefaultPrecision is the mantissa size, in bits, of BigFloat values created
// by FromInt, FromFloat and Parse.
const DefaultPrecision uint = 128

// maxIntPow bounds the exponents handled by repeated squaring. Larger integer
// exponents go through bigfloat.Pow like any other.
const maxIntPow = 1 << 20

// maxLog2 bounds the estimated binary magnitude of a power before it is
// rounded straight to infinity or zero.
const maxLog2 = 1 << 24

// BigFloat is an arbitrary-precision real domain. big.Float has no NaN and
// panics on operations that would produce one, so BigFloat carries its own
// NaN state and checks those cases before calling into math/big.
//
// The zero value is 0 at DefaultPrecision.
type BigFloat struct {
	f   *big.Float
	nan bool
}

// NewBigFloat returns a BigFloat holding a copy of f.
func NewBigFloat(f *big.Float) BigFloat {
	return BigFloat{f: new(big.Float).Copy(f)}
}

// NaN returns the BigFloat NaN.
func NaN() BigFloat { return BigFloat{nan: true} }

// IsNaN reports whether a is NaN.
func (a BigFloat) IsNaN() bool { return a.nan }

// Float returns a copy of the value, or nil for NaN.
func (a BigFloat) Float() *big.Float {
	if a.nan {
		return nil
	}
	return new(big.Float).Copy(a.val())
}

func (a BigFloat) val() *big.Float {
	if a.f == nil {
		return new(big.Float).SetPrec(DefaultPrecision)
	}
	return a.f
}

func (a BigFloat) prec(b BigFloat) uint {
	p := a.val().Prec()
	if q := b.val().Prec(); q > p {
		p = q
	}
	if p == 0 {
		p = DefaultPrecision
	}
	return p
}

func (a BigFloat) Add(b BigFloat) BigFloat {
	x, y := a.val(), b.val()
	if a.nan || b.nan || x.IsInf() && y.IsInf() && x.Signbit() != y.Signbit() {
		return NaN()
	}
	return BigFloat{f: new(big.Float).SetPrec(a.prec(b)).Add(x, y)}
}

func (a BigFloat) Sub(b BigFloat) BigFloat {
	x, y := a.val(), b.val()
	if a.nan || b.nan || x.IsInf() && y.IsInf() && x.Signbit() == y.Signbit() {
		return NaN()
	}
	return BigFloat{f: new(big.Float).SetPrec(a.prec(b)).Sub(x, y)}
}

func (a BigFloat) Mul(b BigFloat) BigFloat {
	x, y := a.val(), b.val()
	if a.nan || b.nan || x.IsInf() && y.Sign() == 0 || x.Sign() == 0 && y.IsInf() {
		return NaN()
	}
	return BigFloat{f: new(big.Float).SetPrec(a.prec(b)).Mul(x, y)}
}

// Div follows IEEE-754: x/0 is a signed infinity, 0/0 and inf/inf are NaN.
func (a BigFloat) Div(b BigFloat) BigFloat {
	x, y := a.val(), b.val()
	if a.nan || b.nan || x.Sign() == 0 && y.Sign() == 0 || x.IsInf() && y.IsInf() {
		return NaN()
	}
	return BigFloat{f: new(big.Float).SetPrec(a.prec(b)).Quo(x, y)}
}

func (a BigFloat) Neg() BigFloat {
	if a.nan {
		return a
	}
	return BigFloat{f: new(big.Float).Neg(a.val())}
}

// Sqrt returns NaN for negative inputs.
func (a BigFloat) Sqrt() BigFloat {
	x := a.val()
	if a.nan || x.Sign() < 0 {
		return NaN()
	}
	return BigFloat{f: new(big.Float).SetPrec(a.prec(a)).Sqrt(x)}
}

// Pow computes a^b. Integer exponents use repeated squaring so negative
// bases work; other exponents need a non-negative base and go through
// bigfloat.Pow.
func (a BigFloat) Pow(b BigFloat) BigFloat {
	if a.nan || b.nan {
		return NaN()
	}
	x, y := a.val(), b.val()
	prec := a.prec(b)
	if y.Sign() == 0 {
		return BigFloat{f: new(big.Float).SetPrec(prec).SetInt64(1)}
	}
	if x.IsInf() || y.IsInf() {
		return powFloat64(x, y, prec)
	}
	if y.IsInt() {
		if n, acc := y.Int64(); acc == big.Exact && n >= -maxIntPow && n <= maxIntPow {
			return intPow(x, n, prec)
		}
	}
	switch x.Sign() {
	case -1:
		return NaN()
	case 0:
		if y.Sign() > 0 {
			return BigFloat{f: new(big.Float).SetPrec(prec)}
		}
		return BigFloat{f: new(big.Float).SetPrec(prec).SetInf(false)}
	}

	// Estimate log2(x^y) to keep bigfloat.Pow away from results that
	// cannot be represented anyway.
	mant := new(big.Float)
	exp := x.MantExp(mant)
	m, _ := mant.Float64()
	yf, _ := y.Float64()
	est := yf * (float64(exp) + math.Log2(m))
	switch {
	case est > maxLog2:
		return BigFloat{f: new(big.Float).SetPrec(prec).SetInf(false)}
	case est < -maxLog2:
		return BigFloat{f: new(big.Float).SetPrec(prec)}
	}
	z := new(big.Float).SetPrec(prec)
	base := new(big.Float).SetPrec(prec).Set(x)
	return BigFloat{f: bigfloat.Pow(z, base, y)}
}

func intPow(x *big.Float, n int64, prec uint) BigFloat {
	neg := n < 0
	if neg {
		n = -n
	}
	r := new(big.Float).SetPrec(prec).SetInt64(1)
	b := new(big.Float).SetPrec(prec).Set(x)
	for n > 0 {
		if n&1 == 1 {
			r.Mul(r, b)
		}
		n >>= 1
		if n > 0 {
			b.Mul(b, b)
		}
	}
	if neg {
		// 1/±0 is ±inf and 1/±inf is ±0, so Quo cannot panic here.
		r.Quo(new(big.Float).SetPrec(prec).SetInt64(1), r)
	}
	return BigFloat{f: r}
}

// powFloat64 handles infinite operands, where math.Pow already encodes every
// IEEE-754 special case.
func powFloat64(x, y *big.Float, prec uint) BigFloat {
	xf, _ := x.Float64()
	yf, _ := y.Float64()
	r := math.Pow(xf, yf)
	if math.IsNaN(r) {
		return NaN()
	}
	return BigFloat{f: new(big.Float).SetPrec(prec).SetFloat64(r)}
}

// Distance is |a-b| rounded to float64, NaN if either side is NaN.
func (a BigFloat) Distance(b BigFloat) float64 {
	d := a.Sub(b)
	if d.nan {
		return math.NaN()
	}
	f, _ := new(big.Float).Abs(d.val()).Float64()
	return f
}

func (BigFloat) FromInt(n int64) BigFloat {
	return BigFloat{f: new(big.Float).SetPrec(DefaultPrecision).SetInt64(n)}
}

func (BigFloat) FromFloat(f float64) BigFloat {
	if math.IsNaN(f) {
		return NaN()
	}
	return BigFloat{f: new(big.Float).SetPrec(DefaultPrecision).SetFloat64(f)}
}

func (BigFloat) Parse(s string) (BigFloat, error) {
	if strings.EqualFold(s, "nan") {
		return NaN(), nil
	}
	f, _, err := big.ParseFloat(s, 10, DefaultPrecision, big.ToNearestEven)
	if err != nil {
		return BigFloat{}, err
	}
	return BigFloat{f: f}, nil
}

// Key is the exact binary mantissa and exponent, independent of precision.
func (a BigFloat) Key() string {
	if a.nan {
		return "NaN"
	}
	return a.val().Text('p', 0)
}

func (a BigFloat) String() string {
	x := a.val()
	switch {
	case a.nan:
		return "NaN"
	case x.IsInf():
		if x.Signbit() {
			return "-inf"
		}
		return "inf"
	}
	return x.Text('g', -1)
}

func (a BigFloat) LaTeX() string {
	x := a.val()
	switch {
	case a.nan:
		return `\mathrm{NaN}`
	case x.IsInf():
		if x.Signbit() {
			return `-\infty`
		}
		return `\infty`
	}
	return scientificLaTeX(x.Text('g', -1))
}
