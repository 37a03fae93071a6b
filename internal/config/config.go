// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings shared by every figma-batch command. Command-line
// flags override these values when they are set explicitly.
type Config struct {
	RelayURL  string        `env:"FIGMA_BATCH_RELAY_URL" envDefault:"ws://localhost:3055"`
	Channel   string        `env:"FIGMA_BATCH_CHANNEL"`
	Timeout   time.Duration `env:"FIGMA_BATCH_TIMEOUT" envDefault:"30s"`
	LogLevel  string        `env:"FIGMA_BATCH_LOG_LEVEL" envDefault:"info"`
	Transport string        `env:"FIGMA_BATCH_TRANSPORT" envDefault:"stdio"`
	Port      int           `env:"FIGMA_BATCH_PORT" envDefault:"8080"`
}

// Load parses Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Timeout <= 0 {
		return Config{}, fmt.Errorf("FIGMA_BATCH_TIMEOUT must be positive, got %s", cfg.Timeout)
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
