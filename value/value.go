// Package value defines the values produced by datemath expressions and
// the semantics of the operators that combine them.
package value

import (
	"strconv"
	"time"

	"github.com/robinvdvleuten/datemath/calendar"
)

// Kind discriminates the variants of a Value.
type Kind uint8

const (
	Integer Kind = iota
	Duration
	Timestamp
	UnitName
)

var kindNames = map[Kind]string{
	Integer:   "integer",
	Duration:  "duration",
	Timestamp: "timestamp",
	UnitName:  "unit",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// TimestampLayout is the layout used to render timestamps.
const TimestampLayout = "2006-01-02T15:04:05.999999Z07:00"

// Value is one of an integer, a duration, a timestamp or a bare unit
// name. The zero Value is Integer 0.
type Value struct {
	kind Kind
	i    int64
	d    calendar.Duration
	t    time.Time
	u    calendar.Unit
}

// Int returns an Integer value.
func Int(n int64) Value {
	return Value{kind: Integer, i: n}
}

// Dur returns a Duration value.
func Dur(d calendar.Duration) Value {
	return Value{kind: Duration, d: d}
}

// Time returns a Timestamp value.
func Time(t time.Time) Value {
	return Value{kind: Timestamp, t: t}
}

// Unit returns a UnitName value.
func Unit(u calendar.Unit) Value {
	return Value{kind: UnitName, u: u}
}

// Kind returns the variant of v.
func (v Value) Kind() Kind { return v.kind }

// Int returns the integer of an Integer value.
func (v Value) Int() int64 { return v.i }

// Duration returns the duration of a Duration value.
func (v Value) Duration() calendar.Duration { return v.d }

// Time returns the instant of a Timestamp value.
func (v Value) Time() time.Time { return v.t }

// Unit returns the unit of a UnitName value.
func (v Value) Unit() calendar.Unit { return v.u }

// Equal reports whether two values have the same kind and payload.
// Timestamps compare as instants.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Integer:
		return v.i == o.i
	case Duration:
		return v.d == o.d
	case Timestamp:
		return v.t.Equal(o.t)
	case UnitName:
		return v.u == o.u
	}
	return false
}

func (v Value) String() string {
	switch v.kind {
	case Integer:
		return strconv.FormatInt(v.i, 10)
	case Duration:
		return v.d.String()
	case Timestamp:
		return v.t.Format(TimestampLayout)
	case UnitName:
		return v.u.String()
	}
	return "?"
}
