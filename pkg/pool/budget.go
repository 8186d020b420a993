package pool

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wildfunctions/eureka/pkg/expr"
	"github.com/wildfunctions/eureka/pkg/number"
)

// Unlimited marks a token that may be used any number of times.
const Unlimited = -1

// ErrInfeasible is returned when a budget cannot produce a complete
// expression.
var ErrInfeasible = errors.New("infeasible token budget")

// Budget maps each distinct token to the number of times a generated
// expression may use it. A positive count is a cap, Unlimited lifts the cap,
// and zero or absence makes the token unusable.
//
// Tokens keep their insertion order so that generation with a seeded source
// is reproducible. A Budget must not be modified while it is being used to
// generate; generation itself never modifies it.
type Budget[T number.Number[T]] struct {
	tokens []expr.Token[T]
	counts []int
	index  map[expr.TokenKey]int
}

// NewBudget returns an empty budget.
func NewBudget[T number.Number[T]]() *Budget[T] {
	return &Budget[T]{index: make(map[expr.TokenKey]int)}
}

// Set replaces the count of tok. Counts below Unlimited are treated as
// Unlimited.
func (b *Budget[T]) Set(tok expr.Token[T], n int) {
	if n < Unlimited {
		n = Unlimited
	}
	if i, ok := b.index[tok.Key()]; ok {
		b.counts[i] = n
		return
	}
	b.index[tok.Key()] = len(b.tokens)
	b.tokens = append(b.tokens, tok)
	b.counts = append(b.counts, n)
}

// Add increases the count of tok by n. Unlimited on either side stays
// Unlimited.
func (b *Budget[T]) Add(tok expr.Token[T], n int) {
	cur, ok := b.lookup(tok)
	switch {
	case !ok:
		b.Set(tok, n)
	case cur == Unlimited || n <= Unlimited:
		b.Set(tok, Unlimited)
	default:
		b.Set(tok, cur+n)
	}
}

// Count returns the count of tok, 0 if absent.
func (b *Budget[T]) Count(tok expr.Token[T]) int {
	n, _ := b.lookup(tok)
	return n
}

func (b *Budget[T]) lookup(tok expr.Token[T]) (int, bool) {
	i, ok := b.index[tok.Key()]
	if !ok {
		return 0, false
	}
	return b.counts[i], true
}

// Tokens returns the tokens in insertion order, including unusable ones.
func (b *Budget[T]) Tokens() []expr.Token[T] {
	return append([]expr.Token[T](nil), b.tokens...)
}

// Len is the number of distinct tokens.
func (b *Budget[T]) Len() int { return len(b.tokens) }

// Clone returns an independent copy.
func (b *Budget[T]) Clone() *Budget[T] {
	c := &Budget[T]{
		tokens: append([]expr.Token[T](nil), b.tokens...),
		counts: append([]int(nil), b.counts...),
		index:  make(map[expr.TokenKey]int, len(b.index)),
	}
	for k, v := range b.index {
		c.index[k] = v
	}
	return c
}

// Validate reports ErrInfeasible for budgets whose constants cannot always be
// combined into a single value. A budget is rejected when it has no usable
// constant, fewer binary operations than are needed to join every capped
// constant, or unlimited constants next to capped ones that the binary
// operations cannot reliably close. Once the capped constants are placed the
// stack only shrinks on average if unlimited binary kinds outnumber
// unlimited constant kinds.
func (b *Budget[T]) Validate() error {
	var (
		constants, binaries          int
		freeConstants, freeBinaries int
		anyConstant                 bool
	)
	for i, t := range b.tokens {
		n := b.counts[i]
		if n == 0 {
			continue
		}
		switch {
		case t.IsConstant():
			anyConstant = true
			if n == Unlimited {
				freeConstants++
			} else {
				constants += n
			}
		case t.Arity() == 2:
			if n == Unlimited {
				freeBinaries++
			} else {
				binaries += n
			}
		}
	}
	if !anyConstant {
		return fmt.Errorf("%w: no usable constant", ErrInfeasible)
	}
	if freeBinaries == 0 && constants > binaries+1 {
		return fmt.Errorf("%w: %d constants must all be used but only %d binary operations are available",
			ErrInfeasible, constants, binaries)
	}
	if freeConstants > 0 && constants > 0 && freeBinaries <= freeConstants {
		return fmt.Errorf("%w: %d unlimited constants alongside capped ones need more than %d unlimited binary operations",
			ErrInfeasible, freeConstants, freeBinaries)
	}
	return nil
}

// String lists the budget as a spec string that Parse accepts.
func (b *Budget[T]) String() string {
	parts := make([]string, 0, len(b.tokens))
	for i, t := range b.tokens {
		name := t.String()
		switch n := b.counts[i]; n {
		case Unlimited:
			if t.IsConstant() {
				parts = append(parts, name+":inf")
			} else {
				parts = append(parts, name)
			}
		case 1:
			if t.IsConstant() {
				parts = append(parts, name)
			} else {
				parts = append(parts, fmt.Sprintf("%s:1", name))
			}
		default:
			parts = append(parts, fmt.Sprintf("%s:%d", name, n))
		}
	}
	return strings.Join(parts, ",")
}
