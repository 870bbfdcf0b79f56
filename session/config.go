package session

import (
	"context"
	"fmt"

	"github.com/robinvdvleuten/datemath/calendar"
)

// Config selects the evaluation semantics of a session. It is fixed for
// the lifetime of the session.
type Config struct {
	Semantics calendar.Semantics
	Rounding  calendar.RoundingMode
}

// NewConfig creates a Config with calendar-relative durations and
// midnight rounding.
func NewConfig() *Config {
	return &Config{
		Semantics: calendar.CalendarRelative,
		Rounding:  calendar.RoundMidnight,
	}
}

// ConfigFromOptions parses an options map into a Config.
// Supports:
//   - semantics: fixed | calendar
//   - rounding: midnight | exact
//
// Unknown keys are rejected.
func ConfigFromOptions(options map[string]string) (*Config, error) {
	cfg := NewConfig()

	for key, val := range options {
		switch key {
		case "semantics":
			s, err := calendar.ParseSemantics(val)
			if err != nil {
				return nil, fmt.Errorf("option %s: %w", key, err)
			}
			cfg.Semantics = s
		case "rounding":
			m, err := calendar.ParseRoundingMode(val)
			if err != nil {
				return nil, fmt.Errorf("option %s: %w", key, err)
			}
			cfg.Rounding = m
		default:
			return nil, fmt.Errorf("unknown option %q", key)
		}
	}

	return cfg, nil
}

// Options returns the config as an options map, the inverse of
// ConfigFromOptions.
func (c *Config) Options() map[string]string {
	return map[string]string{
		"semantics": c.Semantics.String(),
		"rounding":  c.Rounding.String(),
	}
}

// contextKey is a private type to avoid key collisions in context.
type contextKey struct{}

// WithContext returns a new context with the Config attached.
func (c *Config) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// ConfigFromContext retrieves the Config from context.
// Returns a default Config if not found.
func ConfigFromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(contextKey{}).(*Config); ok {
		return cfg
	}
	return NewConfig()
}
