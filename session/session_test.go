package session

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/datemath/calendar"
	"github.com/robinvdvleuten/datemath/parser"
	"github.com/robinvdvleuten/datemath/telemetry"
	"github.com/robinvdvleuten/datemath/value"
)

var march31 = time.Date(2024, time.March, 31, 14, 45, 30, 0, time.UTC)

func newTestSession(opts ...Option) *Session {
	return New(append([]Option{WithClock(FixedClock{T: march31})}, opts...)...)
}

func TestSessionAssignmentPersists(t *testing.T) {
	ctx := context.Background()
	s := newTestSession()

	result, err := s.Evaluate(ctx, "x = 5YEARS")
	assert.NoError(t, err)
	assert.Equal(t, "x", result.Assigned)

	result, err = s.Evaluate(ctx, "x + 1DAY")
	assert.NoError(t, err)
	assert.Equal(t, "5y 86400s", result.Value.String())

	v, ok := s.Environment().Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, calendar.Duration{Months: 60}, v.Duration())
}

func TestSessionSyntaxErrorIsLocal(t *testing.T) {
	ctx := context.Background()
	s := newTestSession()

	_, err := s.Evaluate(ctx, "x = 1")
	assert.NoError(t, err)

	_, err = s.Evaluate(ctx, "x = 1 +")
	var diag *parser.Diagnostic
	assert.True(t, errors.As(err, &diag))
	assert.Equal(t, parser.SyntaxError, diag.Kind)
	assert.Contains(t, diag.Message, "end of input")

	v, _ := s.Environment().Lookup("x")
	assert.Equal(t, int64(1), v.Int())

	result, err := s.Evaluate(ctx, "x + 41")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), result.Value.Int())
}

func TestSessionSemanticsFromConfig(t *testing.T) {
	ctx := context.Background()

	calendarSession := newTestSession()
	result, err := calendarSession.Evaluate(ctx, "NOW - 1MONTH")
	assert.NoError(t, err)
	assert.Equal(t, "2024-02-29T14:45:30Z", result.Value.String())

	fixed := &Config{Semantics: calendar.FixedRatio}
	fixedSession := newTestSession(WithConfig(fixed))
	result, err = fixedSession.Evaluate(ctx, "NOW - 1MONTH")
	assert.NoError(t, err)
	assert.Equal(t, "2024-03-01T14:45:30Z", result.Value.String())

	result, err = fixedSession.Evaluate(ctx, "3DAYS + 2HOURS")
	assert.NoError(t, err)
	assert.Equal(t, "266400s", result.Value.String())
}

func TestSessionRoundingFromConfig(t *testing.T) {
	ctx := context.Background()

	result, err := newTestSession().Evaluate(ctx, "NOW / HOUR")
	assert.NoError(t, err)
	assert.Equal(t, "2024-03-31T00:00:00Z", result.Value.String())

	exact := newTestSession(WithConfig(&Config{Rounding: calendar.RoundExact}))
	result, err = exact.Evaluate(ctx, "NOW / HOUR")
	assert.NoError(t, err)
	assert.Equal(t, "2024-03-31T14:00:00Z", result.Value.String())
}

func TestSessionReadsClockPerStatement(t *testing.T) {
	ctx := context.Background()
	clock := &steppingClock{t: march31}
	s := New(WithClock(clock))

	_, err := s.Evaluate(ctx, "a = NOW")
	assert.NoError(t, err)
	_, err = s.Evaluate(ctx, "b = NOW")
	assert.NoError(t, err)

	result, err := s.Evaluate(ctx, "b - a")
	assert.NoError(t, err)
	assert.Equal(t, "1s", result.Value.String())

	// Both NOWs in one statement are the same instant.
	result, err = s.Evaluate(ctx, "NOW - NOW")
	assert.NoError(t, err)
	assert.Equal(t, "0s", result.Value.String())
}

func TestSessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	a, b := newTestSession(), newTestSession()

	_, err := a.Evaluate(ctx, "x = 1")
	assert.NoError(t, err)

	result, err := b.Evaluate(ctx, "x")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), result.Value.Int())
	assert.Equal(t, 1, len(result.Diagnostics))
	assert.Equal(t, 0, b.Environment().Len())
}

func TestSessionReset(t *testing.T) {
	ctx := context.Background()
	s := newTestSession()

	_, err := s.Evaluate(ctx, "x = 1")
	assert.NoError(t, err)
	s.Reset()
	assert.Equal(t, 0, s.Environment().Len())
}

func TestSessionSourcePosition(t *testing.T) {
	s := newTestSession(WithSourceName("dates.dm"))
	_, err := s.EvaluateAt(context.Background(), "1 +", 7)
	assert.EqualError(t, err, "dates.dm:7:4: syntax error: unexpected end of input")
}

func TestSessionCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestSession().Evaluate(ctx, "x = 1")
	assert.IsError(t, err, context.Canceled)
}

func TestSessionRecordsTelemetry(t *testing.T) {
	collector := telemetry.NewTimingCollector()
	ctx := telemetry.WithCollector(context.Background(), collector)

	root := collector.Start("session")
	s := newTestSession()
	_, err := s.Evaluate(ctx, "NOW / DAY")
	assert.NoError(t, err)
	root.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	assert.True(t, strings.Contains(buf.String(), "1: NOW / DAY"), buf.String())
}

func TestNewFromContext(t *testing.T) {
	cfg := &Config{Semantics: calendar.FixedRatio, Rounding: calendar.RoundExact}
	ctx := cfg.WithContext(context.Background())

	s := NewFromContext(ctx, WithClock(FixedClock{T: march31}))
	assert.Equal(t, cfg, s.Config())

	result, err := s.Evaluate(ctx, "1MONTH")
	assert.NoError(t, err)
	assert.Equal(t, "2592000s", result.Value.String())
}

type steppingClock struct {
	t time.Time
}

func (c *steppingClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(time.Second)
	return now
}

func TestEnvironment(t *testing.T) {
	env := NewEnvironment()
	assert.Equal(t, 0, env.Len())

	_, ok := env.Lookup("x")
	assert.False(t, ok)

	env.Assign("zeta", value.Int(1))
	env.Assign("alpha", value.Int(2))
	env.Assign("mid", value.Unit(calendar.Day))
	env.Assign("alpha", value.Int(3))

	assert.Equal(t, 3, env.Len())
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, env.Names())

	v, ok := env.Lookup("alpha")
	assert.True(t, ok)
	assert.Equal(t, int64(3), v.Int())

	env.Reset()
	assert.Equal(t, 0, env.Len())
	assert.Equal(t, 0, len(env.Names()))
}

func TestConfigFromOptions(t *testing.T) {
	tests := []struct {
		name    string
		options map[string]string
		want    *Config
		wantErr string
	}{
		{
			name:    "empty options use defaults",
			options: map[string]string{},
			want:    &Config{Semantics: calendar.CalendarRelative, Rounding: calendar.RoundMidnight},
		},
		{
			name:    "fixed semantics",
			options: map[string]string{"semantics": "fixed"},
			want:    &Config{Semantics: calendar.FixedRatio, Rounding: calendar.RoundMidnight},
		},
		{
			name:    "exact rounding",
			options: map[string]string{"rounding": "EXACT", "semantics": "calendar"},
			want:    &Config{Semantics: calendar.CalendarRelative, Rounding: calendar.RoundExact},
		},
		{
			name:    "invalid semantics",
			options: map[string]string{"semantics": "lunar"},
			wantErr: `option semantics: invalid semantics "lunar", expected fixed or calendar`,
		},
		{
			name:    "invalid rounding",
			options: map[string]string{"rounding": "up"},
			wantErr: `option rounding: invalid rounding mode "up", expected midnight or exact`,
		},
		{
			name:    "unknown option",
			options: map[string]string{"timezone": "UTC"},
			wantErr: `unknown option "timezone"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ConfigFromOptions(tt.options)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestConfigOptionsRoundTrip(t *testing.T) {
	cfg := &Config{Semantics: calendar.FixedRatio, Rounding: calendar.RoundExact}
	parsed, err := ConfigFromOptions(cfg.Options())
	assert.NoError(t, err)
	assert.Equal(t, cfg, parsed)
}

func TestConfigContext(t *testing.T) {
	assert.Equal(t, NewConfig(), ConfigFromContext(context.Background()))

	cfg := &Config{Semantics: calendar.FixedRatio}
	ctx := cfg.WithContext(context.Background())
	assert.True(t, cfg == ConfigFromContext(ctx))
}
