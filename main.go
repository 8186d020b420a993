package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wildfunctions/eureka/pkg/constants"
	"github.com/wildfunctions/eureka/pkg/engine"
	"github.com/wildfunctions/eureka/pkg/pool"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// override copies one flag's value from the flag-bound config when the flag
// was given on the command line.
type override struct {
	flag  string
	apply func(dst, src *engine.Config)
}

var overrides = []override{
	{"domain", func(d, s *engine.Config) { d.Domain = s.Domain }},
	{"tokens", func(d, s *engine.Config) { d.Tokens = s.Tokens }},
	{"pool", func(d, s *engine.Config) { d.Pool = s.Pool }},
	{"target", func(d, s *engine.Config) { d.Target = s.Target }},
	{"threshold", func(d, s *engine.Config) { d.Threshold = s.Threshold }},
	{"mode", func(d, s *engine.Config) { d.Mode = s.Mode }},
	{"batch", func(d, s *engine.Config) { d.Batch = s.Batch }},
	{"timeout", func(d, s *engine.Config) { d.Timeout = s.Timeout }},
	{"workers", func(d, s *engine.Config) { d.Workers = s.Workers }},
	{"seed", func(d, s *engine.Config) { d.Seed = s.Seed }},
	{"format", func(d, s *engine.Config) { d.Format = s.Format }},
	{"verbose", func(d, s *engine.Config) { d.Verbose = s.Verbose }},
	{"outdir", func(d, s *engine.Config) { d.OutDir = s.OutDir }},
	{"metrics-addr", func(d, s *engine.Config) { d.MetricsAddr = s.MetricsAddr }},
}

func newRootCmd() *cobra.Command {
	flags := engine.DefaultConfig()
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "eureka",
		Short: "Search for closed-form expressions that approximate a number",
		Long: `eureka draws random postfix expressions from a budget of constants and
operators and reports the ones whose value lands closest to a target.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := engine.LoadConfig(configPath)
			if err != nil {
				return err
			}
			for _, o := range overrides {
				if cmd.Flags().Changed(o.flag) {
					o.apply(&cfg, &flags)
				}
			}
			return runSearch(cmd, cfg)
		},
	}

	f := rootCmd.Flags()
	f.StringVar(&configPath, "config", "", "YAML config file")
	f.StringVar(&flags.Domain, "domain", flags.Domain, "number domain (f64, f32, c128, c64, big)")
	f.StringVar(&flags.Tokens, "tokens", flags.Tokens, `token budget, e.g. "+,-,*,/,neg,1-9" (overrides --pool)`)
	f.StringVar(&flags.Pool, "pool", flags.Pool, "named token budget ("+strings.Join(pool.Names(), ", ")+")")
	f.StringVar(&flags.Target, "target", flags.Target, "target constant ("+strings.Join(constants.Names(), ", ")+") or literal")
	f.Float64Var(&flags.Threshold, "threshold", flags.Threshold, "accept candidates strictly closer than this")
	f.StringVar(&flags.Mode, "mode", flags.Mode, "search mode (first, best, stream)")
	f.IntVar(&flags.Batch, "batch", flags.Batch, "candidates drawn in best mode")
	f.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "time budget for the run (0 = none)")
	f.IntVar(&flags.Workers, "workers", flags.Workers, "number of parallel workers")
	f.Uint64Var(&flags.Seed, "seed", flags.Seed, "random seed (0 = random)")
	f.StringVar(&flags.Format, "format", flags.Format, "output format (text, json)")
	f.BoolVarP(&flags.Verbose, "verbose", "v", flags.Verbose, "debug logging")
	f.StringVar(&flags.OutDir, "outdir", flags.OutDir, "directory for the LaTeX hall of fame")
	f.StringVar(&flags.MetricsAddr, "metrics-addr", flags.MetricsAddr, "serve Prometheus metrics on this address")

	rootCmd.AddCommand(newPoolsCmd(), newConstantsCmd())
	return rootCmd
}

func newLogger(cfg engine.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.Verbose {
		opts.Level = slog.LevelDebug
	}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func runSearch(cmd *cobra.Command, cfg engine.Config) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if cfg.MetricsAddr != "" {
		go func() {
			if err := engine.ServeMetrics(ctx, cfg.MetricsAddr, logger); err != nil {
				logger.Error("metrics server failed", slog.Any("error", err))
			}
		}()
	}

	e, err := engine.New(cfg, engine.WithLogger(logger))
	if err != nil {
		return err
	}
	report, err := e.Run(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cfg.Format == "json" {
		if err := engine.WriteJSONFinal(out, report); err != nil {
			return fmt.Errorf("writing JSON: %w", err)
		}
		return nil
	}
	engine.WriteTextFinal(out, report)
	return nil
}

func newPoolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pools",
		Short: "List the named token budgets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range pool.Names() {
				spec, err := pool.Spec(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", name, spec)
			}
			return nil
		},
	}
}

func newConstantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "constants",
		Short: "List the named target constants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range constants.Names() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", name, constants.Get(name).Digits)
			}
			return nil
		},
	}
}
