// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and environment variables on top of New().
// - Validation errors wrap ErrInvalidConfig; source errors wrap ErrLoadConfig.
package config

import "time"

// Store drivers understood by the repository factory.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the employee/task store: memory or postgres.
	StoreDriver string `koanf:"store_driver"`

	// DatabaseURL is the lib/pq connection string used by the postgres driver.
	DatabaseURL string `koanf:"database_url"`

	// Postgres pool settings. The timeout bounds each query, e.g. "5s".
	PostgresQueryTimeout time.Duration `koanf:"postgres_query_timeout"`
	PostgresMaxOpenConns int           `koanf:"postgres_max_open_conns"`

	// DatasetPath points at a YAML dataset loaded by the memory driver.
	// Empty means an empty store.
	DatasetPath string `koanf:"dataset_path"`

	// DefaultK is used by GET /recommend when k is omitted.
	DefaultK int `koanf:"default_k"`

	// MaxK caps GET /recommend?k.
	MaxK int `koanf:"max_k"`

	// Score weights. Defaults are 0.60 / 0.20 / 0.20.
	WeightSkill        float64 `koanf:"weight_skill"`
	WeightWorkload     float64 `koanf:"weight_workload"`
	WeightAvailability float64 `koanf:"weight_availability"`

	// Tracing exports spans over OTLP/HTTP when enabled.
	TracingEnabled    bool    `koanf:"tracing_enabled"`
	TracingEndpoint   string  `koanf:"tracing_endpoint"`
	TracingSampleRate float64 `koanf:"tracing_sample_rate"`
	// TracingInsecure disables TLS towards the collector.
	TracingInsecure bool `koanf:"tracing_insecure"`
	// TracingEnvironment is exported as the "environment" resource attribute.
	TracingEnvironment string `koanf:"tracing_environment"`

	// MetricsRefreshInterval controls how often runtime gauges are sampled.
	MetricsRefreshInterval time.Duration `koanf:"metrics_refresh_interval"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		StoreDriver:            StoreMemory,
		PostgresQueryTimeout:   5 * time.Second,
		PostgresMaxOpenConns:   10,
		DefaultK:               5,
		MaxK:                   20,
		WeightSkill:            0.60,
		WeightWorkload:         0.20,
		WeightAvailability:     0.20,
		TracingEndpoint:        "localhost:4318",
		TracingSampleRate:      1.0,
		TracingInsecure:        true,
		TracingEnvironment:     "development",
		MetricsRefreshInterval: 10 * time.Second,
	}
}
