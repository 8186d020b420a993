// Package engine runs a configured search: it resolves the domain, target and
// token budget, drives the chosen strategy and assembles the report.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wildfunctions/eureka/pkg/constants"
	"github.com/wildfunctions/eureka/pkg/expr"
	"github.com/wildfunctions/eureka/pkg/number"
	"github.com/wildfunctions/eureka/pkg/pool"
	"github.com/wildfunctions/eureka/pkg/search"
)

// ErrUnknownTarget is returned for a target that is neither a known constant
// nor a literal of the domain.
var ErrUnknownTarget = errors.New("unknown target")

var tracer = otel.Tracer("eureka.engine")

// Engine runs one search.
type Engine struct {
	cfg    Config
	runID  uuid.UUID
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates a new engine from the given config. A zero seed is replaced by
// a random one so that the report always records the seed used.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = rand.Uint64()
	}
	e := &Engine{cfg: cfg, runID: uuid.New(), logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(slog.String("run_id", e.runID.String()))
	return e, nil
}

// Config returns the effective configuration, including the chosen seed.
func (e *Engine) Config() Config { return e.cfg }

// RunID identifies this engine's run in logs and reports.
func (e *Engine) RunID() uuid.UUID { return e.runID }

// Run executes the search and returns the final report. When OutDir is set
// the LaTeX hall of fame is written there as well.
func (e *Engine) Run(ctx context.Context) (FinalReport, error) {
	ctx, span := tracer.Start(ctx, "engine.Run", trace.WithAttributes(
		attribute.String("run_id", e.runID.String()),
		attribute.String("domain", e.cfg.Domain),
		attribute.String("mode", e.cfg.Mode),
		attribute.String("target", e.cfg.Target),
	))
	defer span.End()

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	var (
		report FinalReport
		err    error
	)
	switch e.cfg.Domain {
	case DomainReal64:
		report, err = run[number.Real64](ctx, e)
	case DomainReal32:
		report, err = run[number.Real32](ctx, e)
	case DomainComplex128:
		report, err = run[number.Complex128](ctx, e)
	case DomainComplex64:
		report, err = run[number.Complex64](ctx, e)
	case DomainBig:
		report, err = run[number.BigFloat](ctx, e)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownDomain, e.cfg.Domain)
	}
	runsTotal.WithLabelValues(e.cfg.Domain, e.cfg.Mode, outcome(err)).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "run failed")
		e.logger.Error("search failed", slog.Any("error", err))
		return report, err
	}

	if e.cfg.OutDir != "" {
		if err := WriteOutputs(e.cfg.OutDir, report, e.logger); err != nil {
			e.logger.Warn("writing outputs failed", slog.Any("error", err))
		}
	}
	return report, nil
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// run is the domain-generic part of Run.
func run[T number.Number[T]](ctx context.Context, e *Engine) (FinalReport, error) {
	cfg := e.cfg
	report := FinalReport{RunID: e.runID.String(), Config: cfg}

	target, label, symbol, err := resolveTarget[T](cfg.Target)
	if err != nil {
		return report, err
	}
	budget, err := resolveBudget[T](cfg)
	if err != nil {
		return report, err
	}
	report.Target = label
	report.TargetLaTeX = symbol
	report.TargetValue = target.String()
	report.Tokens = budget.String()

	e.logger.Info("starting search",
		slog.String("domain", cfg.Domain),
		slog.String("mode", cfg.Mode),
		slog.String("target", cfg.Target),
		slog.String("tokens", report.Tokens),
		slog.Float64("threshold", cfg.Threshold),
		slog.Int("workers", cfg.Workers),
		slog.Uint64("seed", cfg.Seed),
	)

	opts := search.Options{Workers: cfg.Workers, Seed: cfg.Seed}
	start := time.Now()
	var res search.Result[T]
	switch cfg.Mode {
	case ModeFirst:
		res, err = search.First(ctx, budget, target, cfg.Threshold, opts)
	case ModeBest:
		res, err = search.BestOf(ctx, budget, target, cfg.Batch, opts)
	case ModeStream:
		res, err = search.Stream(ctx, budget, target, cfg.Threshold, opts, func(imp search.Improvement[T]) {
			entry := newEntry(imp.Result, target, time.Since(start))
			report.HallOfFame = append(report.HallOfFame, entry)
			bestDistance.WithLabelValues(cfg.Domain).Set(imp.Distance)
			e.logger.Info("improvement",
				slog.Float64("distance", imp.Distance),
				slog.String("expr", imp.Plain),
				slog.String("value", imp.Value),
				slog.Int64("candidate", imp.Result.Index),
			)
		})
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownMode, cfg.Mode)
	}
	report.ElapsedSeconds = time.Since(start).Seconds()
	if err != nil {
		return report, fmt.Errorf("%s search: %w", cfg.Mode, err)
	}

	best := newEntry(res, target, time.Since(start))
	report.Best = best
	report.Candidates = res.Candidates
	report.Accepted = res.Distance < cfg.Threshold
	if cfg.Mode != ModeStream {
		report.HallOfFame = []Entry{best}
	}
	bestDistance.WithLabelValues(cfg.Domain).Set(res.Distance)

	e.logger.Info("search finished",
		slog.String("expr", best.Infix),
		slog.String("value", best.Value),
		slog.Float64("distance", best.Distance),
		slog.Float64("digits", best.Digits),
		slog.Int64("candidates", res.Candidates),
		slog.Bool("accepted", report.Accepted),
		slog.Duration("elapsed", time.Since(start)),
	)
	e.logger.Debug("best postfix", slog.String("postfix", best.Postfix))
	return report, nil
}

func newEntry[T number.Number[T]](r search.Result[T], target T, elapsed time.Duration) Entry {
	tree := r.Expr.Infix()
	return Entry{
		Postfix:        r.Expr.String(),
		Infix:          tree.String(),
		LaTeX:          tree.LaTeX(),
		Value:          r.Value.String(),
		Distance:       r.Distance,
		Digits:         CorrectDigits(r.Distance, target.Distance(number.Zero[T]())),
		Complexity:     expr.WeightedComplexity(tree),
		Nodes:          tree.NodeCount(),
		Depth:          tree.Depth(),
		Candidate:      r.Index,
		ElapsedSeconds: elapsed.Seconds(),
		Timestamp:      time.Now().UTC(),
	}
}

// resolveTarget accepts a constant name or a literal of T. It returns the
// value, the label used in reports and its LaTeX symbol.
func resolveTarget[T number.Number[T]](name string) (T, string, string, error) {
	if c := constants.Get(name); c != nil {
		v, err := constants.In[T](c)
		if err != nil {
			return v, "", "", fmt.Errorf("target %s: %w", name, err)
		}
		return v, c.Name, c.LaTeX, nil
	}
	v, err := number.Parse[T](name)
	if err != nil {
		var zero T
		return zero, "", "", fmt.Errorf("%w: %q is neither a literal nor one of %s",
			ErrUnknownTarget, name, strings.Join(constants.Names(), ", "))
	}
	return v, v.String(), v.LaTeX(), nil
}

func resolveBudget[T number.Number[T]](cfg Config) (*pool.Budget[T], error) {
	if cfg.Tokens != "" {
		b, err := pool.Parse[T](cfg.Tokens)
		if err != nil {
			return nil, fmt.Errorf("tokens: %w", err)
		}
		return b, nil
	}
	b, err := pool.Get[T](cfg.Pool)
	if err != nil {
		return nil, fmt.Errorf("pool %s: %w (available: %s)", cfg.Pool, err, strings.Join(pool.Names(), ", "))
	}
	return b, nil
}
