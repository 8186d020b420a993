package expr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wildfunctions/eureka/pkg/number"
)

// ErrMalformed is returned by New for token sequences that do not reduce to
// exactly one value.
var ErrMalformed = errors.New("malformed expression")

// Expression is an immutable sequence of tokens in postfix order. Every
// Expression obtained from New reduces to exactly one value: the running
// stack depth never drops below the arity of the next operation and ends at 1.
type Expression[T number.Number[T]] struct {
	tokens []Token[T]
}

// New validates tokens and returns them as an Expression.
func New[T number.Number[T]](tokens ...Token[T]) (Expression[T], error) {
	depth := 0
	for i, t := range tokens {
		if !t.isConst && !t.op.Valid() {
			return Expression[T]{}, fmt.Errorf("%w: unknown operation %d at position %d", ErrMalformed, t.op, i)
		}
		if n := t.Arity(); n > depth {
			return Expression[T]{}, fmt.Errorf("%w: %s at position %d needs %d operands, stack holds %d",
				ErrMalformed, t, i, n, depth)
		}
		depth += 1 - t.Arity()
	}
	if depth != 1 {
		return Expression[T]{}, fmt.Errorf("%w: %d values left on the stack", ErrMalformed, depth)
	}
	return Expression[T]{tokens: append([]Token[T](nil), tokens...)}, nil
}

// MustNew is like New but panics on malformed input.
func MustNew[T number.Number[T]](tokens ...Token[T]) Expression[T] {
	e, err := New(tokens...)
	if err != nil {
		panic("expr: " + err.Error())
	}
	return e
}

// Tokens returns a copy of the postfix sequence.
func (e Expression[T]) Tokens() []Token[T] {
	return append([]Token[T](nil), e.tokens...)
}

func (e Expression[T]) Len() int { return len(e.tokens) }

// String is the space-separated postfix form, e.g. "3 4 +".
func (e Expression[T]) String() string {
	parts := make([]string, len(e.tokens))
	for i, t := range e.tokens {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// InvariantError reports a postfix sequence that does not reduce to a single
// value. Evaluation panics with it; it never occurs for expressions built by
// New or by a generator.
type InvariantError struct {
	Pos   int // index of the offending token, or the length for residue
	Depth int // stack depth at that point
}

func (err *InvariantError) Error() string {
	return fmt.Sprintf("expr: inconsistent stack: depth %d at token %d (bad expression?)", err.Depth, err.Pos)
}
