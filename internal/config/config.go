// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mihau1211/expense-share/internal/settlement"
)

// Config holds the server configuration.
type Config struct {
	// Addr is the listen address.
	Addr string `env:"ADDR" envDefault:":8080"`

	// DBPath is the SQLite database file path.
	DBPath string `env:"DB_PATH" envDefault:"./data/expenses.db"`

	// JWTSecret signs session tokens. Required.
	JWTSecret string `env:"JWT_SECRET"`

	// TokenTTL is how long issued tokens remain valid.
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"72h"`

	// SettlementCounting selects whether the expense owner is implicitly a
	// participant for settlement division: "owner" (default) or "listed".
	SettlementCounting string `env:"SETTLEMENT_COUNTING" envDefault:"owner"`
}

// Load parses configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if _, err := cfg.Counting(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Counting resolves the configured settlement counting mode.
func (c *Config) Counting() (settlement.Counting, error) {
	switch c.SettlementCounting {
	case "owner":
		return settlement.CountOwnerAlways, nil
	case "listed":
		return settlement.CountListedOnly, nil
	default:
		return 0, fmt.Errorf("SETTLEMENT_COUNTING must be \"owner\" or \"listed\", got %q", c.SettlementCounting)
	}
}
