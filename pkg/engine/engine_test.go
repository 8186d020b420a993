package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildfunctions/eureka/pkg/pool"
	"github.com/wildfunctions/eureka/pkg/search"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Tokens = "+,-,*,/,neg,1-5"
	cfg.Target = "7"
	cfg.Threshold = 1e-9
	cfg.Batch = 500
	cfg.Timeout = 10 * time.Second
	cfg.Workers = 2
	cfg.Seed = 42
	return cfg
}

func TestEngine_EveryDomainAndMode(t *testing.T) {
	for _, domain := range []string{DomainReal64, DomainReal32, DomainComplex128, DomainComplex64, DomainBig} {
		for _, mode := range []string{ModeFirst, ModeBest, ModeStream} {
			t.Run(domain+"/"+mode, func(t *testing.T) {
				cfg := smallConfig()
				cfg.Domain = domain
				cfg.Mode = mode

				e, err := New(cfg, WithLogger(quietLogger()))
				require.NoError(t, err)
				report, err := e.Run(context.Background())
				require.NoError(t, err)

				assert.NotEmpty(t, report.RunID)
				assert.Equal(t, e.RunID().String(), report.RunID)
				assert.Equal(t, "7", report.Target)
				assert.NotEmpty(t, report.Best.Postfix)
				assert.NotEmpty(t, report.Best.Infix)
				assert.NotEmpty(t, report.Best.LaTeX)
				assert.Positive(t, report.Candidates)
				assert.NotEmpty(t, report.HallOfFame)
				assert.Equal(t, len(strings.Fields(report.Best.Postfix)), report.Best.Nodes)
				assert.GreaterOrEqual(t, report.Best.Depth, 1)
				assert.LessOrEqual(t, report.Best.Depth, report.Best.Nodes)
				if mode != ModeBest {
					assert.True(t, report.Accepted, "best %s = %s", report.Best.Infix, report.Best.Value)
					assert.Less(t, report.Best.Distance, cfg.Threshold)
				}
			})
		}
	}
}

func TestEngine_StreamHallOfFame(t *testing.T) {
	cfg := smallConfig()
	cfg.Tokens = ""
	cfg.Pool = "kitchensink"
	cfg.Target = "pi"
	cfg.Threshold = 0
	cfg.Timeout = 300 * time.Millisecond

	e, err := New(cfg, WithLogger(quietLogger()))
	require.NoError(t, err)
	report, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Accepted)
	require.NotEmpty(t, report.HallOfFame)
	for i := 1; i < len(report.HallOfFame); i++ {
		assert.Less(t, report.HallOfFame[i].Distance, report.HallOfFame[i-1].Distance)
	}
	last := report.HallOfFame[len(report.HallOfFame)-1]
	assert.Equal(t, last.Postfix, report.Best.Postfix)
	assert.Equal(t, "pi", report.Target)
}

func TestEngine_StreamSkipsOverflow(t *testing.T) {
	for seed := uint64(1); seed <= 10; seed++ {
		cfg := smallConfig()
		cfg.Mode = ModeStream
		cfg.Tokens = "^,+,9:3,2"
		cfg.Target = "pi"
		cfg.Threshold = 0
		cfg.Timeout = 50 * time.Millisecond
		cfg.Seed = seed

		e, err := New(cfg, WithLogger(quietLogger()))
		require.NoError(t, err)
		report, err := e.Run(context.Background())
		require.NoError(t, err)
		for _, entry := range report.HallOfFame {
			assert.False(t, math.IsInf(entry.Distance, 0), "seed %d: %s", seed, entry.Infix)
		}
		require.NoError(t, WriteJSONFinal(io.Discard, report), "seed %d", seed)
	}

	cfg := smallConfig()
	cfg.Mode = ModeStream
	cfg.Tokens = "^,9:4"
	cfg.Timeout = 50 * time.Millisecond
	e, err := New(cfg, WithLogger(quietLogger()))
	require.NoError(t, err)
	_, err = e.Run(context.Background())
	assert.ErrorIs(t, err, search.ErrNoResult)
}

func TestEngine_RandomSeedIsRecorded(t *testing.T) {
	cfg := smallConfig()
	cfg.Seed = 0
	e, err := New(cfg, WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.NotZero(t, e.Config().Seed)
}

func TestEngine_Errors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"domain", func(c *Config) { c.Domain = "quaternion" }, ErrUnknownDomain},
		{"mode", func(c *Config) { c.Mode = "anneal" }, ErrUnknownMode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := smallConfig()
			tc.mutate(&cfg)
			_, err := New(cfg)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	runErr := func(mutate func(*Config)) error {
		cfg := smallConfig()
		mutate(&cfg)
		e, err := New(cfg, WithLogger(quietLogger()))
		require.NoError(t, err)
		_, err = e.Run(context.Background())
		return err
	}
	assert.ErrorIs(t, runErr(func(c *Config) { c.Target = "tau" }), ErrUnknownTarget)
	assert.ErrorIs(t, runErr(func(c *Config) { c.Tokens = "+,bogus" }), pool.ErrSyntax)
	assert.ErrorIs(t, runErr(func(c *Config) { c.Tokens = "1,2,3,+:1" }), pool.ErrInfeasible)
	assert.Error(t, runErr(func(c *Config) { c.Tokens = ""; c.Pool = "nonexistent" }))
}

func TestEngine_FirstTimesOut(t *testing.T) {
	cfg := smallConfig()
	cfg.Mode = ModeFirst
	cfg.Target = "nan"
	cfg.Timeout = 50 * time.Millisecond

	e, err := New(cfg, WithLogger(quietLogger()))
	require.NoError(t, err)
	_, err = e.Run(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEngine_WritesOutputs(t *testing.T) {
	cfg := smallConfig()
	cfg.Mode = ModeBest
	cfg.OutDir = t.TempDir()

	e, err := New(cfg, WithLogger(quietLogger()))
	require.NoError(t, err)
	_, err = e.Run(context.Background())
	require.NoError(t, err)

	tex, err := os.ReadFile(filepath.Join(cfg.OutDir, "7_f64_best.tex"))
	require.NoError(t, err)
	assert.Contains(t, string(tex), `\begin{document}`)
	assert.Contains(t, string(tex), `\end{document}`)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Format = "xml"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Batch = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.MetricsAddr = "not an address"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Pool = ""
	assert.Error(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eureka.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"domain: c128",
		"tokens: \"+,*,sqrt,1-4\"",
		"target: e",
		"mode: best",
		"batch: 250",
		"timeout: 2s",
	}, "\n")), 0o644))

	t.Setenv("EUREKA_BATCH", "99")
	t.Setenv("EUREKA_SEED", "7")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DomainComplex128, cfg.Domain)
	assert.Equal(t, "+,*,sqrt,1-4", cfg.Tokens)
	assert.Equal(t, "e", cfg.Target)
	assert.Equal(t, ModeBest, cfg.Mode)
	assert.Equal(t, 99, cfg.Batch, "environment overrides the file")
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, "text", cfg.Format, "defaults survive")
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: sideways\n"), 0o644))
	_, err = LoadConfig(path)
	assert.True(t, errors.Is(err, ErrUnknownMode), "got %v", err)
}

func TestWriteReports(t *testing.T) {
	cfg := smallConfig()
	cfg.Mode = ModeStream
	e, err := New(cfg, WithLogger(quietLogger()))
	require.NoError(t, err)
	report, err := e.Run(context.Background())
	require.NoError(t, err)

	var text bytes.Buffer
	WriteTextFinal(&text, report)
	assert.Contains(t, text.String(), "FINAL RESULT")
	assert.Contains(t, text.String(), report.Best.Infix)

	var js bytes.Buffer
	require.NoError(t, WriteJSONFinal(&js, report))
	var decoded FinalReport
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, report.RunID, decoded.RunID)
	assert.Equal(t, report.Best.Postfix, decoded.Best.Postfix)

	var tex bytes.Buffer
	WriteHallOfFameLatex(&tex, report)
	assert.Contains(t, tex.String(), report.Best.LaTeX)
}

func TestLatexUsesTargetSymbol(t *testing.T) {
	cfg := smallConfig()
	cfg.Mode = ModeBest
	cfg.Target = "euler_gamma"
	e, err := New(cfg, WithLogger(quietLogger()))
	require.NoError(t, err)
	report, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `\gamma`, report.TargetLaTeX)

	var tex bytes.Buffer
	WriteHallOfFameLatex(&tex, report)
	assert.Contains(t, tex.String(), `\title{Hall of Fame --- Target: $\gamma$}`)
	assert.Contains(t, tex.String(), `\texttt{euler\_gamma}`)

	tex.Reset()
	WriteHallOfFameLatex(&tex, FinalReport{Target: "my_target"})
	assert.Contains(t, tex.String(), `Target: \texttt{my\_target}}`)
}

func TestSortByDistance(t *testing.T) {
	in := []Entry{{Distance: 3}, {Distance: 1}, {Distance: 2}}
	out := sortByDistance(in)
	assert.Equal(t, []float64{1, 2, 3}, []float64{out[0].Distance, out[1].Distance, out[2].Distance})
	assert.Equal(t, 3.0, in[0].Distance, "input is not reordered")
}

func TestSortByDistanceTieBreaks(t *testing.T) {
	in := []Entry{
		{Infix: "deep", Distance: 1, Complexity: 4, Nodes: 3, Depth: 3},
		{Infix: "heavy", Distance: 1, Complexity: 5, Nodes: 3, Depth: 2},
		{Infix: "shallow", Distance: 1, Complexity: 4, Nodes: 3, Depth: 2},
		{Infix: "small", Distance: 1, Complexity: 4, Nodes: 2, Depth: 2},
	}
	var got []string
	for _, e := range sortByDistance(in) {
		got = append(got, e.Infix)
	}
	assert.Equal(t, []string{"small", "shallow", "deep", "heavy"}, got)
}

func TestCorrectDigits(t *testing.T) {
	cases := []struct {
		name                string
		distance, magnitude float64
		want                float64
	}{
		{"exact", 0, 3, MaxDigits},
		{"relative", 3e-6, 3, 6},
		{"zero-target", 1e-4, 0, 4},
		{"far", 10, 1, 0},
		{"nan", math.NaN(), 1, 0},
		{"inf", math.Inf(1), 1, 0},
		{"capped", 1e-300, 1, MaxDigits},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, CorrectDigits(tc.distance, tc.magnitude), 1e-9)
		})
	}
}
