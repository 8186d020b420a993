package expr

import "github.com/wildfunctions/eureka/pkg/number"

// Eval reduces the expression on a value stack. Binary operations pop a, then
// b, and push a op b. Non-finite results are ordinary values.
//
// Eval panics with *InvariantError if the stack underflows or more than one
// value remains, which means e did not come from New or a generator.
func (e Expression[T]) Eval() T {
	stack := make([]T, 0, len(e.tokens)/2+1)
	for i, t := range e.tokens {
		if t.isConst {
			stack = append(stack, t.val)
			continue
		}
		n := t.op.Arity()
		if len(stack) < n {
			panic(&InvariantError{Pos: i, Depth: len(stack)})
		}
		top := len(stack) - 1
		switch n {
		case 1:
			stack[top] = unary(t.op, stack[top])
		case 2:
			a, b := stack[top], stack[top-1]
			stack = stack[:top]
			stack[top-1] = binary(t.op, a, b)
		}
	}
	if len(stack) != 1 {
		panic(&InvariantError{Pos: len(e.tokens), Depth: len(stack)})
	}
	return stack[0]
}

func unary[T number.Number[T]](op Operation, a T) T {
	switch op {
	case OpNeg:
		return a.Neg()
	case OpSqrt:
		return a.Sqrt()
	default:
		panic("expr: invalid unary operation " + op.String())
	}
}

func binary[T number.Number[T]](op Operation, a, b T) T {
	switch op {
	case OpAdd:
		return a.Add(b)
	case OpSub:
		return a.Sub(b)
	case OpMul:
		return a.Mul(b)
	case OpDiv:
		return a.Div(b)
	case OpPow:
		return a.Pow(b)
	default:
		panic("expr: invalid binary operation " + op.String())
	}
}

// Infix converts the postfix sequence into a tree with the same stack
// discipline as Eval: the first value popped becomes the left operand.
func (e Expression[T]) Infix() Node[T] {
	stack := make([]Node[T], 0, len(e.tokens)/2+1)
	for i, t := range e.tokens {
		if t.isConst {
			stack = append(stack, &ConstNode[T]{Val: t.val})
			continue
		}
		n := t.op.Arity()
		if len(stack) < n {
			panic(&InvariantError{Pos: i, Depth: len(stack)})
		}
		top := len(stack) - 1
		switch n {
		case 1:
			stack[top] = &UnaryNode[T]{Op: t.op, Child: stack[top]}
		case 2:
			a, b := stack[top], stack[top-1]
			stack = stack[:top]
			stack[top-1] = &BinaryNode[T]{Op: t.op, Left: a, Right: b}
		}
	}
	if len(stack) != 1 {
		panic(&InvariantError{Pos: len(e.tokens), Depth: len(stack)})
	}
	return stack[0]
}

func (c *ConstNode[T]) Eval() T { return c.Val }

func (u *UnaryNode[T]) Eval() T { return unary(u.Op, u.Child.Eval()) }

func (b *BinaryNode[T]) Eval() T { return binary(b.Op, b.Left.Eval(), b.Right.Eval()) }
