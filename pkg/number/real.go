package number

import (
	"math"
	"strconv"
	"strings"
)

// Real64 is the float64 domain.
type Real64 float64

func (a Real64) Add(b Real64) Real64 { return a + b }
func (a Real64) Sub(b Real64) Real64 { return a - b }
func (a Real64) Mul(b Real64) Real64 { return a * b }
func (a Real64) Div(b Real64) Real64 { return a / b }
func (a Real64) Neg() Real64         { return -a }

// Sqrt returns NaN for negative inputs.
func (a Real64) Sqrt() Real64 { return Real64(math.Sqrt(float64(a))) }

func (a Real64) Pow(b Real64) Real64 { return Real64(math.Pow(float64(a), float64(b))) }

func (a Real64) Distance(b Real64) float64 { return math.Abs(float64(a - b)) }

func (Real64) FromInt(n int64) Real64     { return Real64(n) }
func (Real64) FromFloat(f float64) Real64 { return Real64(f) }

func (Real64) Parse(s string) (Real64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return Real64(f), nil
}

func (a Real64) Key() string {
	return strconv.FormatUint(math.Float64bits(float64(a)), 16)
}

func (a Real64) String() string { return formatFloat(float64(a), 64) }
func (a Real64) LaTeX() string  { return latexFloat(float64(a), 64) }

// Real32 is the float32 domain. Operations without a float32 variant in the
// math package are computed in float64 and rounded back.
type Real32 float32

func (a Real32) Add(b Real32) Real32 { return a + b }
func (a Real32) Sub(b Real32) Real32 { return a - b }
func (a Real32) Mul(b Real32) Real32 { return a * b }
func (a Real32) Div(b Real32) Real32 { return a / b }
func (a Real32) Neg() Real32         { return -a }

func (a Real32) Sqrt() Real32 { return Real32(math.Sqrt(float64(a))) }

func (a Real32) Pow(b Real32) Real32 { return Real32(math.Pow(float64(a), float64(b))) }

func (a Real32) Distance(b Real32) float64 { return math.Abs(float64(a - b)) }

func (Real32) FromInt(n int64) Real32     { return Real32(n) }
func (Real32) FromFloat(f float64) Real32 { return Real32(f) }

func (Real32) Parse(s string) (Real32, error) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, err
	}
	return Real32(f), nil
}

func (a Real32) Key() string {
	return strconv.FormatUint(uint64(math.Float32bits(float32(a))), 16)
}

func (a Real32) String() string { return formatFloat(float64(a), 32) }
func (a Real32) LaTeX() string  { return latexFloat(float64(a), 32) }

// formatFloat prints the shortest representation that round-trips at the
// given bit size, so 3.0 prints as "3".
func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'g', -1, bitSize)
}

func latexFloat(f float64, bitSize int) string {
	switch {
	case math.IsInf(f, 1):
		return `\infty`
	case math.IsInf(f, -1):
		return `-\infty`
	case math.IsNaN(f):
		return `\mathrm{NaN}`
	}
	return scientificLaTeX(strconv.FormatFloat(f, 'g', -1, bitSize))
}

// scientificLaTeX rewrites exponent notation such as 1.5e-07 as
// 1.5 \times 10^{-7}. Other input is returned unchanged.
func scientificLaTeX(s string) string {
	mant, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	sign := ""
	switch {
	case strings.HasPrefix(exp, "-"):
		sign, exp = "-", exp[1:]
	case strings.HasPrefix(exp, "+"):
		exp = exp[1:]
	}
	if exp = strings.TrimLeft(exp, "0"); exp == "" {
		exp = "0"
	}
	return mant + ` \times 10^{` + sign + exp + `}`
}
