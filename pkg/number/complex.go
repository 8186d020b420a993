package number

import (
	"math"
	"math/cmplx"
	"strconv"
)

// Complex128 is the complex domain over float64 parts.
type Complex128 complex128

func (a Complex128) Add(b Complex128) Complex128 { return a + b }
func (a Complex128) Sub(b Complex128) Complex128 { return a - b }
func (a Complex128) Mul(b Complex128) Complex128 { return a * b }
func (a Complex128) Div(b Complex128) Complex128 { return a / b }
func (a Complex128) Neg() Complex128             { return -a }

// Sqrt is the principal square root.
func (a Complex128) Sqrt() Complex128 { return Complex128(cmplx.Sqrt(complex128(a))) }

func (a Complex128) Pow(b Complex128) Complex128 {
	return Complex128(cmplx.Pow(complex128(a), complex128(b)))
}

// Distance is the modulus of the difference.
func (a Complex128) Distance(b Complex128) float64 { return cmplx.Abs(complex128(a - b)) }

func (Complex128) FromInt(n int64) Complex128     { return Complex128(complex(float64(n), 0)) }
func (Complex128) FromFloat(f float64) Complex128 { return Complex128(complex(f, 0)) }

func (Complex128) Parse(s string) (Complex128, error) {
	c, err := strconv.ParseComplex(s, 128)
	if err != nil {
		return 0, err
	}
	return Complex128(c), nil
}

func (a Complex128) Key() string {
	return complexKey(real(a), imag(a))
}

func (a Complex128) String() string { return formatComplex(real(a), imag(a), 64, false) }
func (a Complex128) LaTeX() string  { return formatComplex(real(a), imag(a), 64, true) }

// Complex64 is the complex domain over float32 parts.
type Complex64 complex64

func (a Complex64) Add(b Complex64) Complex64 { return a + b }
func (a Complex64) Sub(b Complex64) Complex64 { return a - b }
func (a Complex64) Mul(b Complex64) Complex64 { return a * b }
func (a Complex64) Div(b Complex64) Complex64 { return a / b }
func (a Complex64) Neg() Complex64            { return -a }

func (a Complex64) Sqrt() Complex64 { return Complex64(cmplx.Sqrt(complex128(a))) }

func (a Complex64) Pow(b Complex64) Complex64 {
	return Complex64(cmplx.Pow(complex128(a), complex128(b)))
}

func (a Complex64) Distance(b Complex64) float64 { return cmplx.Abs(complex128(a - b)) }

func (Complex64) FromInt(n int64) Complex64     { return Complex64(complex(float32(n), 0)) }
func (Complex64) FromFloat(f float64) Complex64 { return Complex64(complex(float32(f), 0)) }

func (Complex64) Parse(s string) (Complex64, error) {
	c, err := strconv.ParseComplex(s, 64)
	if err != nil {
		return 0, err
	}
	return Complex64(c), nil
}

func (a Complex64) Key() string {
	return complexKey(float64(real(a)), float64(imag(a)))
}

func (a Complex64) String() string {
	return formatComplex(float64(real(a)), float64(imag(a)), 32, false)
}

func (a Complex64) LaTeX() string {
	return formatComplex(float64(real(a)), float64(imag(a)), 32, true)
}

func complexKey(re, im float64) string {
	return strconv.FormatUint(math.Float64bits(re), 16) + ":" + strconv.FormatUint(math.Float64bits(im), 16)
}

// formatComplex drops whichever part is zero: 3, (2i), (1+2i).
func formatComplex(re, im float64, bitSize int, latex bool) string {
	part := formatFloat
	if latex {
		part = latexFloat
	}
	switch {
	case im == 0:
		return part(re, bitSize)
	case re == 0:
		return "(" + part(im, bitSize) + "i)"
	}
	sign := "+"
	if im < 0 || math.IsInf(im, -1) {
		sign = ""
	}
	return "(" + part(re, bitSize) + sign + part(im, bitSize) + "i)"
}
