package search

import (
	"context"
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

// BestOf draws exactly n candidates and returns the one closest to target,
// ties going to the lowest index. Candidate i is generated from a source
// seeded with (opts.Seed, i), so the result does not depend on the number of
// workers or on scheduling.
//
// It returns ErrNoResult when every candidate evaluated to NaN or overflowed.
func BestOf[T number.Number[T]](ctx context.Context, budget *pool.Budget[T], target T, n int, opts Options) (res Result[T], err error) {
	workers := min(opts.workers(), max(n, 1))
	ctx, span := tracer.Start(ctx, "search.BestOf", trace.WithAttributes(
		attribute.String("target", target.String()),
		attribute.Int("n", n),
		attribute.Int("workers", workers),
	))
	defer span.End()
	start := time.Now()
	defer func() {
		observeSearch("best", start, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "search failed")
		}
	}()

	if n <= 0 {
		return Result[T]{}, fmt.Errorf("search: batch size must be positive, got %d", n)
	}
	if err := budget.Validate(); err != nil {
		return Result[T]{}, err
	}

	var next atomic.Int64
	bests := make([]Result[T], workers)
	haves := make([]bool, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			src := rand.NewPCG(0, 0)
			rng := rand.New(src)
			tally := worker{strategy: "best"}
			defer tally.flush()
			for {
				i := next.Add(1) - 1
				if i >= int64(n) {
					return nil
				}
				if tally.drawn%ctxCheckEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				src.Seed(opts.Seed, uint64(i))
				r, err := draw(budget, rng, target)
				if err != nil {
					return fmt.Errorf("generate candidate %d: %w", i, err)
				}
				r.Index = i
				tally.observe(r.Distance)
				if r.better(bests[w], haves[w]) {
					bests[w], haves[w] = r, true
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return Result[T]{}, err
	}

	var best Result[T]
	have := false
	for w := range bests {
		if haves[w] && bests[w].better(best, have) {
			best, have = bests[w], true
		}
	}
	if !have {
		return Result[T]{}, fmt.Errorf("%w: none of %d candidates has a finite distance", ErrNoResult, n)
	}
	best.Candidates = int64(n)
	span.SetAttributes(
		attribute.Float64("distance", best.Distance),
		attribute.Int64("index", best.Index),
	)
	return best, nil
}
