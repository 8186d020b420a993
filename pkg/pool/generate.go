package pool

import (
	"fmt"
	"math/rand/v2"

	"github.com/wildfunctions/eureka/pkg/expr"
	"github.com/wildfunctions/eureka/pkg/number"
)

// maxTokens caps the length of a generated expression. Budgets that pass
// Validate stay far below it.
const maxTokens = 1 << 16

// Generate draws one random expression from the budget.
//
// Tokens are appended one at a time, each chosen uniformly among the tokens
// that still have budget and whose arity does not exceed the current stack
// depth. Negation never directly follows negation. Generation stops once
// every capped constant has been placed and exactly one value remains, so
// the result always evaluates cleanly.
//
// The receiver is only read; concurrent calls with distinct rng values are
// safe.
func (b *Budget[T]) Generate(rng *rand.Rand) (expr.Expression[T], error) {
	counts := append([]int(nil), b.counts...)

	var constantsLeft, binariesLeft int
	freeBinaries := false
	for i, t := range b.tokens {
		n := counts[i]
		switch {
		case t.IsConstant():
			if n > 0 {
				constantsLeft += n
			}
		case t.Arity() == 2:
			if n == Unlimited {
				freeBinaries = true
			} else if n > 0 {
				binariesLeft += n
			}
		}
	}

	var out []expr.Token[T]
	eligible := make([]int, 0, len(b.tokens))
	depth, lastNeg := 0, false
	for !(constantsLeft == 0 && depth == 1) {
		if constantsLeft == 0 && depth > 1 && !freeBinaries && binariesLeft == 0 {
			return expr.Expression[T]{}, fmt.Errorf("%w: %d values left on the stack with no binary operation to join them",
				ErrInfeasible, depth)
		}

		if len(out) >= maxTokens {
			return expr.Expression[T]{}, fmt.Errorf("%w: stack still %d deep after %d tokens",
				ErrInfeasible, depth, len(out))
		}

		eligible = eligible[:0]
		for i, t := range b.tokens {
			if counts[i] == 0 || t.Arity() > depth {
				continue
			}
			if lastNeg && isNeg(t) {
				continue
			}
			eligible = append(eligible, i)
		}
		if len(eligible) == 0 {
			return expr.Expression[T]{}, fmt.Errorf("%w: nothing usable at depth %d with %d constants left",
				ErrInfeasible, depth, constantsLeft)
		}

		i := eligible[rng.IntN(len(eligible))]
		t := b.tokens[i]
		if counts[i] > 0 {
			counts[i]--
			switch {
			case t.IsConstant():
				constantsLeft--
			case t.Arity() == 2:
				binariesLeft--
			}
		}
		depth += 1 - t.Arity()
		lastNeg = isNeg(t)
		out = append(out, t)
	}
	return expr.New(out...)
}

func isNeg[T number.Number[T]](t expr.Token[T]) bool {
	return !t.IsConstant() && t.Operation() == expr.OpNeg
}
