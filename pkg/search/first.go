package search

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/wildfunctions/eureka/pkg/number"
	"github.com/wildfunctions/eureka/pkg/pool"
)

// First samples candidates on every worker until one lands strictly within
// threshold of target and returns it. It runs until a match is found or ctx
// ends, in which case ctx.Err() is returned. A generator error aborts the
// search.
func First[T number.Number[T]](ctx context.Context, budget *pool.Budget[T], target T, threshold float64, opts Options) (res Result[T], err error) {
	workers := opts.workers()
	ctx, span := tracer.Start(ctx, "search.First", trace.WithAttributes(
		attribute.String("target", target.String()),
		attribute.Float64("threshold", threshold),
		attribute.Int("workers", workers),
	))
	defer span.End()
	start := time.Now()
	defer func() {
		observeSearch("first", start, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "search failed")
		}
	}()

	if err := budget.Validate(); err != nil {
		return Result[T]{}, err
	}

	var (
		next  atomic.Int64
		once  sync.Once
		found Result[T]
	)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(opts.Seed, uint64(w)))
			tally := worker{strategy: "first"}
			defer tally.flush()
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
				if r.Distance < threshold {
					once.Do(func() { found = r })
					return errFound
				}
			}
		})
	}

	err = g.Wait()
	if !errors.Is(err, errFound) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result[T]{}, ctxErr
		}
		return Result[T]{}, err
	}
	found.Candidates = next.Load()
	span.SetAttributes(
		attribute.Float64("distance", found.Distance),
		attribute.Int64("candidates", found.Candidates),
	)
	return found, nil
}
