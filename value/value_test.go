package value

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/datemath/calendar"
)

var (
	march31 = time.Date(2024, time.March, 31, 9, 15, 0, 0, time.UTC)
	oneDay  = calendar.Duration{Micros: 86400 * 1_000_000}
)

func TestApplyAdd(t *testing.T) {
	r := Rules{}

	tests := []struct {
		name        string
		left, right Value
		want        Value
	}{
		{"integers", Int(2), Int(40), Int(42)},
		{"durations", Dur(oneDay), Dur(calendar.Duration{Months: 1}), Dur(calendar.Duration{Months: 1, Micros: oneDay.Micros})},
		{"timestamp plus duration", Time(march31), Dur(oneDay), Time(march31.AddDate(0, 0, 1))},
		{"duration plus timestamp", Dur(oneDay), Time(march31), Time(march31.AddDate(0, 0, 1))},
		{"timestamp plus month", Time(march31), Dur(calendar.Duration{Months: 1}), Time(time.Date(2024, time.April, 30, 9, 15, 0, 0, time.UTC))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Apply(OpAdd, tt.left, tt.right)
			assert.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestApplySub(t *testing.T) {
	r := Rules{}

	tests := []struct {
		name        string
		left, right Value
		want        Value
	}{
		{"integers", Int(2), Int(40), Int(-38)},
		{"durations", Dur(oneDay), Dur(oneDay), Dur(calendar.Duration{})},
		{"timestamp minus month clamps", Time(march31), Dur(calendar.Duration{Months: 1}), Time(time.Date(2024, time.February, 29, 9, 15, 0, 0, time.UTC))},
		{"timestamp minus timestamp", Time(march31), Time(march31.Add(-time.Hour)), Dur(calendar.Duration{Micros: 3600 * 1_000_000})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Apply(OpSub, tt.left, tt.right)
			assert.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestApplyRejectsMismatchedKinds(t *testing.T) {
	r := Rules{}

	tests := []struct {
		name        string
		op          Op
		left, right Value
	}{
		{"integer plus duration", OpAdd, Int(1), Dur(oneDay)},
		{"integer plus timestamp", OpAdd, Int(1), Time(march31)},
		{"timestamp plus timestamp", OpAdd, Time(march31), Time(march31)},
		{"unit plus integer", OpAdd, Unit(calendar.Day), Int(1)},
		{"duration minus timestamp", OpSub, Dur(oneDay), Time(march31)},
		{"round duration", OpRound, Dur(oneDay), Unit(calendar.Day)},
		{"round by integer", OpRound, Time(march31), Int(2)},
		{"round by duration", OpRound, Time(march31), Dur(oneDay)},
		{"round unit", OpRound, Unit(calendar.Day), Unit(calendar.Day)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Apply(tt.op, tt.left, tt.right)
			var opErr *OpError
			assert.True(t, errors.As(err, &opErr))
			assert.Equal(t, tt.op, opErr.Op)
			assert.Equal(t, tt.left.Kind(), opErr.Left)
			assert.Equal(t, tt.right.Kind(), opErr.Right)
		})
	}
}

func TestApplyIntegerOverflow(t *testing.T) {
	_, err := Rules{}.Apply(OpAdd, Int(math.MaxInt64), Int(1))
	assert.IsError(t, err, ErrIntegerOverflow)

	_, err = Rules{}.Apply(OpSub, Int(math.MinInt64), Int(1))
	assert.IsError(t, err, ErrIntegerOverflow)
}

func TestApplyRound(t *testing.T) {
	got, err := Rules{}.Apply(OpRound, Time(march31), Unit(calendar.Month))
	assert.NoError(t, err)
	assert.Equal(t, "2024-03-01T00:00:00Z", got.String())

	got, err = Rules{Rounding: calendar.RoundExact}.Apply(OpRound, Time(march31), Unit(calendar.Hour))
	assert.NoError(t, err)
	assert.Equal(t, "2024-03-31T09:00:00Z", got.String())

	got, err = Rules{}.Apply(OpRound, Time(march31), Unit(calendar.Hour))
	assert.NoError(t, err)
	assert.Equal(t, "2024-03-31T00:00:00Z", got.String())
}

func TestApplyRoundInteger(t *testing.T) {
	// 2024-03-31T09:15:00Z as Unix seconds.
	got, err := Rules{Location: time.UTC}.Apply(OpRound, Int(march31.Unix()), Unit(calendar.Day))
	assert.NoError(t, err)
	assert.Equal(t, Timestamp, got.Kind())
	assert.Equal(t, "2024-03-31T00:00:00Z", got.String())
}

func TestNeg(t *testing.T) {
	got, err := Neg(Int(5))
	assert.NoError(t, err)
	assert.Equal(t, int64(-5), got.Int())

	got, err = Neg(Dur(calendar.Duration{Months: 1, Micros: 10}))
	assert.NoError(t, err)
	assert.Equal(t, calendar.Duration{Months: -1, Micros: -10}, got.Duration())

	_, err = Neg(Time(march31))
	var opErr *OpError
	assert.True(t, errors.As(err, &opErr))
	assert.True(t, opErr.Unary)
	assert.Equal(t, "cannot negate timestamp", err.Error())

	_, err = Neg(Unit(calendar.Day))
	assert.Error(t, err)

	_, err = Neg(Int(math.MinInt64))
	assert.IsError(t, err, ErrIntegerOverflow)
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "42", Int(42).String())
	assert.Equal(t, "DAY", Unit(calendar.Day).String())
	assert.Equal(t, "266400s", Dur(calendar.Duration{Micros: 266400 * 1_000_000}).String())
	assert.Equal(t, "2024-03-31T09:15:00Z", Time(march31).String())
	assert.Equal(t, "2024-03-31T09:15:00.0005Z", Time(march31.Add(500*time.Microsecond)).String())
}

func TestZeroValueIsIntegerZero(t *testing.T) {
	var v Value
	assert.Equal(t, Integer, v.Kind())
	assert.True(t, v.Equal(Int(0)))
}

func TestOpErrorMessages(t *testing.T) {
	_, err := Rules{}.Apply(OpRound, Dur(oneDay), Unit(calendar.Day))
	assert.EqualError(t, err, "cannot round duration to unit, expected timestamp / UNIT")

	_, err = Rules{}.Apply(OpAdd, Int(1), Time(march31))
	assert.EqualError(t, err, "cannot apply + to integer and timestamp")
}
