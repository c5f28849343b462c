package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the rule element engine and its tools
type Config struct {
	Rules RulesConfig `envPrefix:"RULES_"`
	Redis RedisConfig `envPrefix:"REDIS_"`
	Log   LogConfig   `envPrefix:"LOG_"`
}

// RulesConfig holds engine settings copied into every preparation context
type RulesConfig struct {
	SuppressWarnings bool          `env:"SUPPRESS_WARNINGS" envDefault:"false"`
	WarningDebounce  time.Duration `env:"WARNING_DEBOUNCE" envDefault:"250ms"`
	MaxGrantDepth    int           `env:"MAX_GRANT_DEPTH" envDefault:"4"`
	SchemaVersion    float64       `env:"SCHEMA_VERSION" envDefault:"0.9"`
}

// RedisConfig holds Redis-specific configuration. An empty URL selects in-memory repositories.
type RedisConfig struct {
	URL string `env:"URL"`
	DB  int    `env:"DB" envDefault:"0"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"console"`
}

// Load reads an optional .env file and parses configuration from the environment
func Load() (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	return Parse()
}

// Parse parses configuration from the current environment only
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Rules.MaxGrantDepth < 1 {
		return nil, fmt.Errorf("RULES_MAX_GRANT_DEPTH must be at least 1, got %d", cfg.Rules.MaxGrantDepth)
	}
	switch cfg.Log.Format {
	case "console", "json":
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be console or json, got %q", cfg.Log.Format)
	}

	return cfg, nil
}
