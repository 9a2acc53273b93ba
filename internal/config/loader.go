package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable conventions.
const (
	EnvPrefix     = "ALLOC_"
	EnvConfigFile = "ALLOC_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if ALLOC_CONFIG is set
//  3. env (prefix ALLOC_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// ALLOC_MAX_K -> max_k. Underscores are preserved to match the koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.StoreDriver != StoreMemory && c.StoreDriver != StorePostgres:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	case c.StoreDriver == StorePostgres && c.DatabaseURL == "":
		return fmt.Errorf("%w: database_url is required for the postgres driver", ErrInvalidConfig)
	case c.MaxK < 1:
		return fmt.Errorf("%w: max_k must be positive", ErrInvalidConfig)
	case c.DefaultK < 1 || c.DefaultK > c.MaxK:
		return fmt.Errorf("%w: default_k must be in [1, %d]", ErrInvalidConfig, c.MaxK)
	case c.WeightSkill < 0 || c.WeightWorkload < 0 || c.WeightAvailability < 0:
		return fmt.Errorf("%w: score weights must not be negative", ErrInvalidConfig)
	case c.WeightSkill+c.WeightWorkload+c.WeightAvailability == 0:
		return fmt.Errorf("%w: score weights must not all be zero", ErrInvalidConfig)
	case c.PostgresQueryTimeout <= 0:
		return fmt.Errorf("%w: postgres_query_timeout must be positive", ErrInvalidConfig)
	case c.PostgresMaxOpenConns < 1:
		return fmt.Errorf("%w: postgres_max_open_conns must be positive", ErrInvalidConfig)
	case c.MetricsRefreshInterval <= 0:
		return fmt.Errorf("%w: metrics_refresh_interval must be positive", ErrInvalidConfig)
	case c.TracingSampleRate < 0 || c.TracingSampleRate > 1:
		return fmt.Errorf("%w: tracing_sample_rate must be in [0, 1]", ErrInvalidConfig)
	}
	return nil
}
