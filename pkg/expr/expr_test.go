package expr

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildfunctions/eureka/pkg/number"
)

type r64 = number.Real64

func c(v float64) Token[r64]    { return Constant(r64(v)) }
func op(o Operation) Token[r64] { return Op[r64](o) }

func TestArity(t *testing.T) {
	for _, o := range Operations() {
		want := 2
		if o == OpNeg || o == OpSqrt {
			want = 1
		}
		assert.Equal(t, want, o.Arity(), o.String())
		assert.Equal(t, want, op(o).Arity())
	}
	assert.Equal(t, 0, c(3).Arity())
}

func TestTokenIdentity(t *testing.T) {
	assert.True(t, c(3).Equal(c(3)))
	assert.False(t, c(3).Equal(c(4)))
	assert.False(t, c(0).Equal(c(math.Copysign(0, -1))), "constants compare by bit pattern")
	assert.True(t, c(math.NaN()).Equal(c(math.NaN())))
	assert.True(t, op(OpAdd).Equal(op(OpAdd)))
	assert.False(t, op(OpAdd).Equal(op(OpSub)))
	assert.False(t, op(OpNeg).Equal(c(0)))

	counts := map[TokenKey]int{}
	for _, tok := range []Token[r64]{c(1), c(1), op(OpMul), op(OpMul), op(OpMul)} {
		counts[tok.Key()]++
	}
	assert.Equal(t, 2, counts[c(1).Key()])
	assert.Equal(t, 3, counts[op(OpMul).Key()])
}

func TestNew(t *testing.T) {
	cases := []struct {
		name   string
		tokens []Token[r64]
		ok     bool
	}{
		{"single", []Token[r64]{c(1)}, true},
		{"sum", []Token[r64]{c(3), c(4), op(OpAdd)}, true},
		{"unary", []Token[r64]{c(3), op(OpSqrt), op(OpNeg)}, true},
		{"empty", nil, false},
		{"underflow", []Token[r64]{c(3), op(OpAdd)}, false},
		{"leading-op", []Token[r64]{op(OpNeg), c(3)}, false},
		{"residue", []Token[r64]{c(3), c(4)}, false},
		{"unknown-op", []Token[r64]{c(3), op(Operation(42))}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.tokens...)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrMalformed), "got %v", err)
		})
	}
}

func TestNewCopiesInput(t *testing.T) {
	tokens := []Token[r64]{c(3), c(4), op(OpAdd)}
	e := MustNew(tokens...)
	tokens[0] = c(100)
	assert.Equal(t, r64(7), e.Eval())

	out := e.Tokens()
	out[0] = c(100)
	assert.Equal(t, r64(7), e.Eval())
}

func TestEval(t *testing.T) {
	cases := []struct {
		name   string
		tokens []Token[r64]
		want   float64
	}{
		{"const", []Token[r64]{c(7)}, 7},
		{"add", []Token[r64]{c(3), c(4), op(OpAdd)}, 7},
		// The first value popped is the left operand.
		{"sub", []Token[r64]{c(4), c(3), op(OpSub)}, -1},
		{"div", []Token[r64]{c(4), c(2), op(OpDiv)}, 0.5},
		{"pow", []Token[r64]{c(3), c(2), op(OpPow)}, 8},
		{"neg", []Token[r64]{c(3), op(OpNeg)}, -3},
		{"sqrt", []Token[r64]{c(9), op(OpSqrt)}, 3},
		{"nested", []Token[r64]{c(1), c(2), op(OpAdd), c(3), op(OpMul)}, 9},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := MustNew(tc.tokens...)
			assert.Equal(t, r64(tc.want), e.Eval())
			assert.Equal(t, r64(tc.want), e.Infix().Eval(), "tree evaluation must agree")
		})
	}
}

func TestEvalNonFinite(t *testing.T) {
	e := MustNew(c(0), c(1), op(OpDiv))
	assert.True(t, math.IsInf(float64(e.Eval()), 1))

	e = MustNew(c(4), op(OpNeg), op(OpSqrt))
	assert.True(t, math.IsNaN(float64(e.Eval())))
}

func TestEvalComplex(t *testing.T) {
	type cx = number.Complex128
	e := MustNew(Constant(cx(-4)), Op[cx](OpSqrt))
	assert.Equal(t, cx(2i), e.Eval())
	assert.Equal(t, "√-4", e.Infix().String())

	e = MustNew(Constant(cx(4)), Constant(cx(3)), Op[cx](OpAdd), Op[cx](OpNeg))
	assert.Equal(t, cx(-7), e.Eval())
}

func TestEvalPanicsOnBrokenInvariant(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(*InvariantError)
		require.True(t, ok, "panic value %#v", r)
		assert.Contains(t, err.Error(), "inconsistent stack")
	}()
	var e Expression[r64]
	e.Eval()
}

func TestPostfixString(t *testing.T) {
	e := MustNew(c(4), c(3), op(OpAdd), op(OpNeg), op(OpSqrt))
	assert.Equal(t, "4 3 + neg sqrt", e.String())
	assert.Equal(t, 5, e.Len())
}

func TestString(t *testing.T) {
	cases := []struct {
		name   string
		tokens []Token[r64]
		want   string
	}{
		{"sum", []Token[r64]{c(4), c(3), op(OpAdd)}, "3 + 4"},
		{"neg-const", []Token[r64]{c(2), op(OpNeg)}, "-2"},
		{"neg-sum", []Token[r64]{c(3), c(2), op(OpAdd), op(OpNeg)}, "-(2 + 3)"},
		{"sqrt", []Token[r64]{c(2), op(OpSqrt)}, "√2"},
		{"nested", []Token[r64]{c(1), c(2), op(OpAdd), c(3), op(OpMul)}, "3 * (2 + 1)"},
		{"pow", []Token[r64]{c(3), c(2), op(OpPow)}, "2 ^ 3"},
		{"fraction", []Token[r64]{c(0.5), c(1.5), op(OpDiv)}, "1.5 / 0.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MustNew(tc.tokens...).Infix().String())
		})
	}
}

func TestLaTeX(t *testing.T) {
	cases := []struct {
		name   string
		tokens []Token[r64]
		want   string
	}{
		{"sum", []Token[r64]{c(4), c(3), op(OpAdd)}, "3 + 4"},
		{"pow", []Token[r64]{c(3), c(2), op(OpPow)}, "{2}^{3}"},
		{"div", []Token[r64]{c(3), c(2), op(OpDiv)}, `\frac{2}{3}`},
		{"neg-sum", []Token[r64]{c(3), c(2), op(OpAdd), op(OpNeg)}, "-(2 + 3)"},
		{"neg-const", []Token[r64]{c(3), op(OpNeg)}, "-3"},
		{"neg-sqrt", []Token[r64]{c(2), op(OpSqrt), op(OpNeg)}, `-\sqrt{2}`},
		{"neg-div", []Token[r64]{c(2), c(1), op(OpDiv), op(OpNeg)}, `-\frac{1}{2}`},
		{"sqrt-sum", []Token[r64]{c(1), c(2), op(OpAdd), op(OpSqrt)}, `\sqrt{2 + 1}`},
		{"mul-sums", []Token[r64]{c(4), c(3), op(OpAdd), c(2), c(1), op(OpAdd), op(OpMul)}, `(1 + 2) \cdot (3 + 4)`},
		{"neg-operand", []Token[r64]{c(3), c(2), op(OpNeg), op(OpAdd)}, "(-2) + 3"},
		{"div-of-sum", []Token[r64]{c(4), c(3), op(OpAdd), c(2), op(OpDiv)}, `\frac{2}{3 + 4}`},
		{"pow-of-sum", []Token[r64]{c(2), c(1), c(1), op(OpAdd), op(OpPow)}, "{1 + 1}^{2}"},
		{"sub-of-fraction", []Token[r64]{c(1), c(2), c(3), op(OpDiv), op(OpSub)}, `\frac{3}{2} - 1`},
		{"mul-sqrt", []Token[r64]{c(2), op(OpSqrt), c(3), op(OpMul)}, `3 \cdot \sqrt{2}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MustNew(tc.tokens...).Infix().LaTeX())
		})
	}
}

func TestLaTeXComplexConstants(t *testing.T) {
	type cx = number.Complex128
	e := MustNew(Constant(cx(1+2i)), Constant(cx(2i)), Op[cx](OpAdd), Constant(cx(3)), Op[cx](OpMul))
	assert.Equal(t, `3 \cdot ((2i) + (1+2i))`, e.Infix().LaTeX())
}

func TestComplexity(t *testing.T) {
	leaf := MustNew(c(1)).Infix()
	assert.Equal(t, 1, leaf.NodeCount())
	assert.Equal(t, 1, leaf.Depth())

	tree := MustNew(c(1), c(2), op(OpMul), c(3), op(OpAdd), op(OpNeg)).Infix()
	assert.Equal(t, 6, tree.NodeCount())
	assert.Equal(t, 4, tree.Depth())
	assert.Equal(t, 1.0+1.0+1.0+1.5+1.0+1.0, WeightedComplexity(tree))
}

func BenchmarkEval(b *testing.B) {
	e := MustNew(c(1), c(2), op(OpAdd), c(3), op(OpMul), op(OpSqrt), c(4), op(OpPow))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		e.Eval()
	}
}
