package expr

import (
	"fmt"

	"github.com/wildfunctions/eureka/pkg/number"
)

// opNames is the postfix spelling of each operation.
var opNames = map[Operation]string{
	OpNeg:  "neg",
	OpSqrt: "sqrt",
	OpAdd:  "+",
	OpSub:  "-",
	OpMul:  "*",
	OpDiv:  "/",
	OpPow:  "^",
}

var infixSymbols = map[Operation]string{
	OpNeg:  "-",
	OpSqrt: "√",
	OpAdd:  "+",
	OpSub:  "-",
	OpMul:  "*",
	OpDiv:  "/",
	OpPow:  "^",
}

var latexSymbols = map[Operation]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: `\cdot`,
}

func (o Operation) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Operation(%d)", int(o))
}

// String methods

func (c *ConstNode[T]) String() string {
	return c.Val.String()
}

func (u *UnaryNode[T]) String() string {
	sym := infixSymbols[u.Op]
	if _, ok := u.Child.(*ConstNode[T]); ok {
		return sym + u.Child.String()
	}
	return sym + "(" + u.Child.String() + ")"
}

func (b *BinaryNode[T]) String() string {
	return plainOperand(b.Left) + " " + infixSymbols[b.Op] + " " + plainOperand(b.Right)
}

func plainOperand[T number.Number[T]](n Node[T]) string {
	if _, ok := n.(*ConstNode[T]); ok {
		return n.String()
	}
	return "(" + n.String() + ")"
}

// LaTeX methods

func (c *ConstNode[T]) LaTeX() string {
	return c.Val.LaTeX()
}

func (u *UnaryNode[T]) LaTeX() string {
	child := u.Child.LaTeX()
	switch u.Op {
	case OpNeg:
		if needsParens(u.Child) {
			return fmt.Sprintf("-(%s)", child)
		}
		return "-" + child
	case OpSqrt:
		return fmt.Sprintf("\\sqrt{%s}", child)
	default:
		return child
	}
}

func (b *BinaryNode[T]) LaTeX() string {
	switch b.Op {
	case OpDiv:
		return fmt.Sprintf("\\frac{%s}{%s}", b.Left.LaTeX(), b.Right.LaTeX())
	case OpPow:
		return fmt.Sprintf("{%s}^{%s}", b.Left.LaTeX(), b.Right.LaTeX())
	default:
		return latexOperand(b.Left) + " " + latexSymbols[b.Op] + " " + latexOperand(b.Right)
	}
}

func latexOperand[T number.Number[T]](n Node[T]) string {
	if needsParens(n) {
		return "(" + n.LaTeX() + ")"
	}
	return n.LaTeX()
}

// needsParens reports whether n must be grouped when it appears as an
// operand. Constants, square roots, fractions and powers are visually
// self-delimiting in LaTeX; everything else is not.
func needsParens[T number.Number[T]](n Node[T]) bool {
	switch n := n.(type) {
	case *ConstNode[T]:
		return false
	case *UnaryNode[T]:
		return n.Op != OpSqrt
	case *BinaryNode[T]:
		return n.Op != OpDiv && n.Op != OpPow
	default:
		return true
	}
}
