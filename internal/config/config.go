// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Config holds runtime configuration for the application.
type Config struct {
	DBPath string `envconfig:"PAYPALS_DB_PATH" default:"./data/paypals.db"`
	Group  string `envconfig:"PAYPALS_GROUP" default:"default"`
	Addr   string `envconfig:"PAYPALS_ADDR" default:":8080"`

	AmountLimit   string `envconfig:"PAYPALS_AMOUNT_LIMIT" default:"10000"`
	MaxActivities int    `envconfig:"PAYPALS_MAX_ACTIVITIES" default:"1000"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// A missing .env file is normal outside development.
		_ = godotenv.Load(f)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that envconfig cannot check by type alone.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Group) == "" {
		return errors.New("group name must be provided")
	}
	if c.MaxActivities <= 0 {
		return fmt.Errorf("max activities must be positive, got %d", c.MaxActivities)
	}
	limit, err := decimal.NewFromString(c.AmountLimit)
	if err != nil {
		return fmt.Errorf("invalid amount limit %q: %w", c.AmountLimit, err)
	}
	if !limit.IsPositive() {
		return fmt.Errorf("amount limit must be positive, got %s", limit)
	}
	return nil
}

// Limit returns the amount limit as a decimal. Call Validate first.
func (c *Config) Limit() decimal.Decimal {
	return decimal.RequireFromString(c.AmountLimit)
}

// Level maps LOG_LEVEL to a slog level, defaulting to INFO.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
