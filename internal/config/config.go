package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrInvalidConfig is returned when a configuration value is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all application configuration.
type Config struct {
	// Database
	DatabasePath string

	// Trend computation
	Window time.Duration // Look-back window for decay scoring (default: 24h)
	TopK   int           // Maximum labels in a snapshot (default: 10)

	// Scheduler settings
	RefreshPeriod time.Duration

	// HTTP
	HTTPAddr string

	// Source circuit breaker
	BreakerFailures int
	BreakerCooldown time.Duration

	// Labels never stored at ingest time
	BlockedLabels []string

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables.
// It automatically loads .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath:  getEnv("DATABASE_PATH", "data/hashtrend.db"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		BlockedLabels: splitList(getEnv("BLOCKED_LABELS", "")),
	}

	var err error
	cfg.Window, err = time.ParseDuration(getEnv("TREND_WINDOW", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TREND_WINDOW: %w", err)
	}

	cfg.RefreshPeriod, err = time.ParseDuration(getEnv("REFRESH_PERIOD", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_PERIOD: %w", err)
	}

	cfg.BreakerCooldown, err = time.ParseDuration(getEnv("SOURCE_BREAKER_COOLDOWN", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SOURCE_BREAKER_COOLDOWN: %w", err)
	}

	cfg.TopK, err = strconv.Atoi(getEnv("TREND_TOP_K", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid TREND_TOP_K: %w", err)
	}

	cfg.BreakerFailures, err = strconv.Atoi(getEnv("SOURCE_BREAKER_FAILURES", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid SOURCE_BREAKER_FAILURES: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: DATABASE_PATH is required", ErrInvalidConfig)
	}
	return nil
}

// ValidateForTrends checks configuration needed to compute trends.
func (c *Config) ValidateForTrends() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Window <= 0 {
		return fmt.Errorf("%w: TREND_WINDOW must be positive, got %s", ErrInvalidConfig, c.Window)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: TREND_TOP_K must be positive, got %d", ErrInvalidConfig, c.TopK)
	}
	return nil
}

// ValidateForServe checks all configuration needed for serve mode.
func (c *Config) ValidateForServe() error {
	if err := c.ValidateForTrends(); err != nil {
		return err
	}
	if c.RefreshPeriod <= 0 {
		return fmt.Errorf("%w: REFRESH_PERIOD must be positive, got %s", ErrInvalidConfig, c.RefreshPeriod)
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("%w: HTTP_ADDR is required for serve", ErrInvalidConfig)
	}
	if c.BreakerFailures <= 0 {
		return fmt.Errorf("%w: SOURCE_BREAKER_FAILURES must be positive, got %d", ErrInvalidConfig, c.BreakerFailures)
	}
	if c.BreakerCooldown <= 0 {
		return fmt.Errorf("%w: SOURCE_BREAKER_COOLDOWN must be positive, got %s", ErrInvalidConfig, c.BreakerCooldown)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// splitList parses a comma separated env value, dropping empty entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
