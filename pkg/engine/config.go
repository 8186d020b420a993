package engine

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Domains accepted in Config.Domain.
const (
	DomainReal64     = "f64"
	DomainReal32     = "f32"
	DomainComplex128 = "c128"
	DomainComplex64  = "c64"
	DomainBig        = "big"
)

// Modes accepted in Config.Mode.
const (
	ModeFirst  = "first"
	ModeBest   = "best"
	ModeStream = "stream"
)

var (
	ErrUnknownDomain = errors.New("unknown domain")
	ErrUnknownMode   = errors.New("unknown mode")
)

// Config holds all parameters for a search run.
type Config struct {
	Domain string `yaml:"domain" json:"domain" env:"EUREKA_DOMAIN"`
	// Tokens is a budget spec such as "+,-,*,/,neg,1-9". When empty the
	// named Pool is used.
	Tokens string `yaml:"tokens" json:"tokens,omitempty" env:"EUREKA_TOKENS"`
	Pool   string `yaml:"pool" json:"pool,omitempty" env:"EUREKA_POOL"`
	// Target is a constant name (pi, e, ...) or a literal of the domain.
	Target    string  `yaml:"target" json:"target" env:"EUREKA_TARGET" validate:"required"`
	Threshold float64 `yaml:"threshold" json:"threshold" env:"EUREKA_THRESHOLD" validate:"gte=0"`
	Mode      string  `yaml:"mode" json:"mode" env:"EUREKA_MODE"`
	// Batch is the number of candidates drawn in best mode.
	Batch int `yaml:"batch" json:"batch" env:"EUREKA_BATCH" validate:"gte=1"`
	// Timeout bounds the whole run; 0 means no limit. In stream mode it is
	// the wall-clock budget.
	Timeout     time.Duration `yaml:"timeout" json:"timeout" env:"EUREKA_TIMEOUT" validate:"gte=0"`
	Workers     int           `yaml:"workers" json:"workers" env:"EUREKA_WORKERS" validate:"gte=0"`
	Seed        uint64        `yaml:"seed" json:"seed" env:"EUREKA_SEED"` // 0 = random
	Format      string        `yaml:"format" json:"format" env:"EUREKA_FORMAT" validate:"oneof=text json"`
	Verbose     bool          `yaml:"verbose" json:"verbose" env:"EUREKA_VERBOSE"`
	OutDir      string        `yaml:"outdir" json:"outdir,omitempty" env:"EUREKA_OUTDIR"`
	MetricsAddr string        `yaml:"metrics_addr" json:"metrics_addr,omitempty" env:"EUREKA_METRICS_ADDR" validate:"omitempty,hostname_port"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Domain:    DomainReal64,
		Pool:      "moderate",
		Target:    "pi",
		Threshold: 1e-6,
		Mode:      ModeStream,
		Batch:     100000,
		Timeout:   30 * time.Second,
		Workers:   runtime.NumCPU(),
		Format:    "text",
	}
}

var validate = validator.New()

// Validate checks the domain and mode names, then field constraints.
func (c Config) Validate() error {
	switch c.Domain {
	case DomainReal64, DomainReal32, DomainComplex128, DomainComplex64, DomainBig:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDomain, c.Domain)
	}
	switch c.Mode {
	case ModeFirst, ModeBest, ModeStream:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, c.Mode)
	}
	if c.Tokens == "" && c.Pool == "" {
		return errors.New("one of tokens or pool must be set")
	}
	return validate.Struct(c)
}

// LoadConfig loads configuration with priority: env > file > defaults.
// An empty path skips the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
