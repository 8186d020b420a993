package expr

import "github.com/wildfunctions/eureka/pkg/number"

// NodeCount is the number of tokens the tree was built from.
func (c *ConstNode[T]) NodeCount() int { return 1 }
func (u *UnaryNode[T]) NodeCount() int { return 1 + u.Child.NodeCount() }
func (b *BinaryNode[T]) NodeCount() int {
	return 1 + b.Left.NodeCount() + b.Right.NodeCount()
}

// Depth is the nesting depth of the tree; a lone constant has depth 1.
func (c *ConstNode[T]) Depth() int { return 1 }
func (u *UnaryNode[T]) Depth() int { return 1 + u.Child.Depth() }
func (b *BinaryNode[T]) Depth() int { return 1 + max(b.Left.Depth(), b.Right.Depth()) }

// WeightedComplexity scores an expression with heavier weights for the
// operations that are harder to read off a formula.
func WeightedComplexity[T number.Number[T]](node Node[T]) float64 {
	switch n := node.(type) {
	case *ConstNode[T]:
		return 1.0
	case *UnaryNode[T]:
		return opWeight(n.Op) + WeightedComplexity(n.Child)
	case *BinaryNode[T]:
		return opWeight(n.Op) + WeightedComplexity(n.Left) + WeightedComplexity(n.Right)
	default:
		return 1.0
	}
}

func opWeight(op Operation) float64 {
	switch op {
	case OpNeg, OpAdd, OpSub:
		return 1.0
	case OpMul, OpDiv:
		return 1.5
	case OpSqrt, OpPow:
		return 2.0
	default:
		return 1.5
	}
}
