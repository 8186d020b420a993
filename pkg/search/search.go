// Package search samples random expressions from a token budget in parallel
// and keeps the ones whose value lands closest to a target.
//
// Three strategies are provided: First stops at the first candidate within a
// threshold, BestOf scores a fixed batch and returns the closest, and Stream
// reports every improvement as it is found until the threshold is met or the
// context ends.
package search

import (
	"errors"
	"math"
	"math/rand/v2"
	"runtime"

	"go.opentelemetry.io/otel"

	"github.com/wildfunctions/eureka/pkg/expr"
	"github.com/wildfunctions/eureka/pkg/number"
	"github.com/wildfunctions/eureka/pkg/pool"
)

// ErrNoResult is returned when a search ends without any comparable
// candidate, for example when every candidate evaluated to NaN or overflowed.
var ErrNoResult = errors.New("search: no result")

// errFound stops the worker group once a candidate meets the threshold.
var errFound = errors.New("search: threshold met")

// ctxCheckEvery is how many candidates a worker draws between context checks.
const ctxCheckEvery = 64

var tracer = otel.Tracer("eureka.search")

// Options tunes how a search runs. The zero value uses every CPU and seed 0.
type Options struct {
	// Workers is the number of sampling goroutines; <= 0 means runtime.NumCPU().
	Workers int
	// Seed feeds every worker's random source. BestOf is reproducible for a
	// fixed seed; First and Stream depend on scheduling.
	Seed uint64
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

// Result is a scored candidate.
type Result[T number.Number[T]] struct {
	Expr     expr.Expression[T]
	Value    T
	Distance float64
	// Index is the candidate's position in generation order.
	Index int64
	// Candidates is how many candidates the search drew in total.
	Candidates int64
}

// better reports whether r should replace best. Candidates that overflowed
// or evaluated to NaN are never comparable, and equal distances go to the
// earlier candidate.
func (r Result[T]) better(best Result[T], have bool) bool {
	if math.IsNaN(r.Distance) || math.IsInf(r.Distance, 0) {
		return false
	}
	if !have {
		return true
	}
	if r.Distance != best.Distance {
		return r.Distance < best.Distance
	}
	return r.Index < best.Index
}

// draw generates and scores one candidate.
func draw[T number.Number[T]](b *pool.Budget[T], rng *rand.Rand, target T) (Result[T], error) {
	e, err := b.Generate(rng)
	if err != nil {
		return Result[T]{}, err
	}
	v := e.Eval()
	return Result[T]{Expr: e, Value: v, Distance: v.Distance(target)}, nil
}

// worker tallies what one goroutine drew so metrics are published once.
type worker struct {
	strategy  string
	drawn     int64
	nonFinite int64
}

func (w *worker) observe(d float64) {
	w.drawn++
	if math.IsNaN(d) || math.IsInf(d, 0) {
		w.nonFinite++
	}
}

func (w *worker) flush() {
	candidatesTotal.WithLabelValues(w.strategy).Add(float64(w.drawn))
	nonFiniteTotal.WithLabelValues(w.strategy).Add(float64(w.nonFinite))
}
