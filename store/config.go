package store

import "log/slog"

// Config holds configuration for the Store.
type Config struct {
	// ConsistentReads requests strongly consistent GetItem calls.
	// Default: false (eventually consistent).
	ConsistentReads bool

	// Logger receives store diagnostics. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{}
}

// validate normalizes config values.
func (c *Config) validate() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
