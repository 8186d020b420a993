package search

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/wildfunctions/eureka/pkg/number"
	"github.com/wildfunctions/eureka/pkg/pool"
)

// Improvement is a new overall best reported by Stream.
type Improvement[T number.Number[T]] struct {
	// Plain and LaTeX render the expression in infix form.
	Plain string
	LaTeX string
	// Value is the display form of the expression's value.
	Value    string
	Distance float64
	Result   Result[T]
}

func newImprovement[T number.Number[T]](r Result[T]) Improvement[T] {
	tree := r.Expr.Infix()
	return Improvement[T]{
		Plain:    tree.String(),
		LaTeX:    tree.LaTeX(),
		Value:    r.Value.String(),
		Distance: r.Distance,
		Result:   r,
	}
}

// Stream samples candidates until one lands within threshold or ctx ends,
// calling sink on the caller's goroutine for every strictly better candidate
// in the order they are accepted. sink may be nil.
//
// The context deadline is the wall-clock budget: when it passes, Stream
// returns the best candidate seen so far with a nil error. It returns the
// context error only if nothing was found, and a generator error always.
func Stream[T number.Number[T]](ctx context.Context, budget *pool.Budget[T], target T, threshold float64, opts Options, sink func(Improvement[T])) (res Result[T], err error) {
	workers := opts.workers()
	ctx, span := tracer.Start(ctx, "search.Stream", trace.WithAttributes(
		attribute.String("target", target.String()),
		attribute.Float64("threshold", threshold),
		attribute.Int("workers", workers),
	))
	defer span.End()
	start := time.Now()
	defer func() {
		observeSearch("stream", start, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "search failed")
		}
	}()

	if err := budget.Validate(); err != nil {
		return Result[T]{}, err
	}

	var next atomic.Int64
	improvements := make(chan Result[T], workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(opts.Seed, uint64(w)))
			tally := worker{strategy: "stream"}
			defer tally.flush()
			var local Result[T]
			have := false
			for {
				if tally.drawn%ctxCheckEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				r, err := draw(budget, rng, target)
				if err != nil {
					return fmt.Errorf("generate candidate: %w", err)
				}
				r.Index = next.Add(1) - 1
				tally.observe(r.Distance)
				if !r.better(local, have) {
					continue
				}
				local, have = r, true
				select {
				case improvements <- r:
				case <-gctx.Done():
					return gctx.Err()
				}
				if r.Distance < threshold {
					return errFound
				}
			}
		})
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- g.Wait()
		close(improvements)
	}()

	var best Result[T]
	have := false
	reported := 0
	for r := range improvements {
		// Workers only know their own best; drop anything not globally better.
		if have && !(r.Distance < best.Distance) {
			continue
		}
		best, have = r, true
		reported++
		if sink != nil {
			sink(newImprovement(r))
		}
	}
	err = <-waitErr
	best.Candidates = next.Load()
	span.SetAttributes(
		attribute.Int("improvements", reported),
		attribute.Int64("candidates", best.Candidates),
	)

	switch {
	case errors.Is(err, errFound):
		return best, nil
	case !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded):
		return Result[T]{}, err
	case have:
		return best, nil
	default:
		return Result[T]{}, fmt.Errorf("%w: %w", ErrNoResult, err)
	}
}
