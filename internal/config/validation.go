package config

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for configuration validation.
var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidAddr indicates the listen address is malformed.
	ErrInvalidAddr = errors.New("invalid listen address")

	// ErrInvalidModelName indicates the model name is empty.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidRateLimit indicates the rate-limit settings are out of range.
	ErrInvalidRateLimit = errors.New("invalid rate limit")

	// ErrInvalidHistoryDepth indicates the undo depth is out of range.
	ErrInvalidHistoryDepth = errors.New("invalid history depth")

	// ErrInvalidDebounce indicates the debounce window is out of range.
	ErrInvalidDebounce = errors.New("invalid debounce")

	// ErrInvalidDatabaseURL indicates the database URL has the wrong scheme.
	ErrInvalidDatabaseURL = errors.New("invalid database URL")

	// ErrInvalidLogLevel indicates an unknown log level name.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Validate checks all configuration values and fails fast on the first
// problem.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if c.Addr == "" || !strings.Contains(c.Addr, ":") {
		return fmt.Errorf("%w: %q (want host:port or :port)", ErrInvalidAddr, c.Addr)
	}
	if c.ModelName == "" {
		return fmt.Errorf("%w: model name is empty", ErrInvalidModelName)
	}
	if c.ImageModel == "" {
		return fmt.Errorf("%w: image model is empty", ErrInvalidModelName)
	}

	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("%w: rps %v (must be > 0)", ErrInvalidRateLimit, c.RateLimitRPS)
	}
	if c.RateLimitBurst < 1 {
		return fmt.Errorf("%w: burst %d (must be >= 1)", ErrInvalidRateLimit, c.RateLimitBurst)
	}

	if c.HistoryDepth < 1 || c.HistoryDepth > 1000 {
		return fmt.Errorf("%w: %d (must be 1-1000)", ErrInvalidHistoryDepth, c.HistoryDepth)
	}
	if c.DebounceMS < 0 || c.DebounceMS > 10000 {
		return fmt.Errorf("%w: %dms (must be 0-10000)", ErrInvalidDebounce, c.DebounceMS)
	}

	if c.DatabaseURL != "" &&
		!strings.HasPrefix(c.DatabaseURL, "postgres://") &&
		!strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		return fmt.Errorf("%w: %q (want postgres:// or postgresql://)", ErrInvalidDatabaseURL, redactURL(c.DatabaseURL))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}

// redactURL strips everything after the scheme so credentials embedded in
// a malformed URL never reach logs or error messages.
func redactURL(u string) string {
	if i := strings.Index(u, "://"); i >= 0 {
		return u[:i+3] + "..."
	}
	if len(u) > 12 {
		return u[:12] + "..."
	}
	return u
}
