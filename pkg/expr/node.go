package expr

import (
	"github.com/wildfunctions/eureka/pkg/number"
)

// Operation identifies an operator of the vocabulary.
type Operation int

const (
	OpNeg Operation = iota
	OpSqrt
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpPow
)

var opArity = [...]int{
	OpNeg:  1,
	OpSqrt: 1,
	OpAdd:  2,
	OpSub:  2,
	OpMul:  2,
	OpDiv:  2,
	OpPow:  2,
}

// Operations lists every operation in declaration order.
func Operations() []Operation {
	return []Operation{OpNeg, OpSqrt, OpAdd, OpSub, OpMul, OpDiv, OpPow}
}

// Arity is the number of operands the operation consumes.
func (o Operation) Arity() int { return opArity[o] }

// Valid reports whether o is one of the declared operations.
func (o Operation) Valid() bool { return o >= OpNeg && o <= OpPow }

// Token is a postfix element: either a constant of the working domain or an
// operation.
type Token[T number.Number[T]] struct {
	op      Operation
	val     T
	isConst bool
}

// Constant returns a token pushing v.
func Constant[T number.Number[T]](v T) Token[T] {
	return Token[T]{val: v, isConst: true}
}

// Op returns a token applying o.
func Op[T number.Number[T]](o Operation) Token[T] {
	return Token[T]{op: o}
}

func (t Token[T]) IsConstant() bool { return t.isConst }

// Operation returns the operation of an operation token.
func (t Token[T]) Operation() Operation { return t.op }

// Value returns the value of a constant token.
func (t Token[T]) Value() T { return t.val }

// Arity is 0 for constants.
func (t Token[T]) Arity() int {
	if t.isConst {
		return 0
	}
	return t.op.Arity()
}

// TokenKey is the identity of a token. Operations are identified by variant,
// constants by the exact bit pattern of their value.
type TokenKey struct {
	Op    Operation
	Const bool
	Value string
}

func (t Token[T]) Key() TokenKey {
	if t.isConst {
		return TokenKey{Const: true, Value: t.val.Key()}
	}
	return TokenKey{Op: t.op}
}

// Equal reports whether t and u are the same token.
func (t Token[T]) Equal(u Token[T]) bool { return t.Key() == u.Key() }

// String is the postfix spelling of the token.
func (t Token[T]) String() string {
	if t.isConst {
		return t.val.String()
	}
	return opNames[t.op]
}

// Node is a node of the infix tree built from an Expression.
type Node[T number.Number[T]] interface {
	Eval() T
	String() string
	LaTeX() string
	NodeCount() int
	Depth() int
}

// ConstNode is a leaf holding a constant.
type ConstNode[T number.Number[T]] struct {
	Val T
}

// UnaryNode applies a unary operation to a child expression.
type UnaryNode[T number.Number[T]] struct {
	Op    Operation
	Child Node[T]
}

// BinaryNode applies a binary operation. Left is the operand popped first
// from the evaluation stack.
type BinaryNode[T number.Number[T]] struct {
	Op          Operation
	Left, Right Node[T]
}
