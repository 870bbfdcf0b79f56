// Package session evaluates datemath statements against a persistent
// environment.
//
// A Session owns one Environment, one Config and one Clock. Statements are
// evaluated one at a time; bindings made by a statement are visible to
// every later statement of the same session. Sessions share no state, so
// independent sessions may run concurrently, but a single Session must not
// be used from more than one goroutine at a time.
package session

import (
	"context"
	"fmt"

	"github.com/robinvdvleuten/datemath/parser"
	"github.com/robinvdvleuten/datemath/telemetry"
)

// Session evaluates statements with a persistent environment.
type Session struct {
	env        *Environment
	config     *Config
	clock      Clock
	sourceName string
}

// Option configures a Session.
type Option func(*Session)

// WithConfig sets the evaluation config.
func WithConfig(cfg *Config) Option {
	return func(s *Session) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// WithClock sets the clock NOW is read from.
func WithClock(c Clock) Option {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithSourceName sets the filename reported in diagnostics.
func WithSourceName(name string) Option {
	return func(s *Session) {
		s.sourceName = name
	}
}

// New creates a session with an empty environment, the default config and
// the system clock.
func New(opts ...Option) *Session {
	s := &Session{
		env:    NewEnvironment(),
		config: NewConfig(),
		clock:  SystemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromContext creates a session using the Config attached to ctx.
func NewFromContext(ctx context.Context, opts ...Option) *Session {
	return New(append([]Option{WithConfig(ConfigFromContext(ctx))}, opts...)...)
}

// Environment returns the session's bindings.
func (s *Session) Environment() *Environment {
	return s.env
}

// Config returns the session's config.
func (s *Session) Config() *Config {
	return s.config
}

// Evaluate evaluates one statement. See parser.Evaluate for the error
// contract: a returned error aborts only this statement and leaves the
// environment untouched.
func (s *Session) Evaluate(ctx context.Context, line string) (parser.Result, error) {
	return s.EvaluateAt(ctx, line, 1)
}

// EvaluateAt evaluates a statement read from the given source line.
func (s *Session) EvaluateAt(ctx context.Context, line string, lineNo int) (parser.Result, error) {
	if err := ctx.Err(); err != nil {
		return parser.Result{}, err
	}

	timer := telemetry.FromContext(ctx).Start(fmt.Sprintf("%d: %s", lineNo, line))
	defer timer.End()

	return parser.Evaluate(line, s.env,
		parser.WithClock(s.clock.Now()),
		parser.WithSemantics(s.config.Semantics),
		parser.WithRounding(s.config.Rounding),
		parser.WithSourceName(s.sourceName),
		parser.WithSourceLine(lineNo),
	)
}

// Reset clears the environment. The config and clock are kept.
func (s *Session) Reset() {
	s.env.Reset()
}
