package calendar

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrOverflow is returned when duration arithmetic leaves the int64 range.
var ErrOverflow = errors.New("duration overflow")

// Duration is a signed span made of a calendar part counted in months and
// a flat part counted in microseconds. Under FixedRatio semantics Months
// is always zero.
type Duration struct {
	Months int64
	Micros int64
}

// IsZero reports whether both parts are zero.
func (d Duration) IsZero() bool {
	return d.Months == 0 && d.Micros == 0
}

// IsFlat reports whether the duration has no calendar part.
func (d Duration) IsFlat() bool {
	return d.Months == 0
}

// Add returns d + o.
func (d Duration) Add(o Duration) (Duration, error) {
	months, ok := addInt64(d.Months, o.Months)
	if !ok {
		return Duration{}, ErrOverflow
	}
	micros, ok := addInt64(d.Micros, o.Micros)
	if !ok {
		return Duration{}, ErrOverflow
	}
	return Duration{Months: months, Micros: micros}, nil
}

// Neg returns -d.
func (d Duration) Neg() (Duration, error) {
	if d.Months == math.MinInt64 || d.Micros == math.MinInt64 {
		return Duration{}, ErrOverflow
	}
	return Duration{Months: -d.Months, Micros: -d.Micros}, nil
}

// Mul scales both parts by n.
func (d Duration) Mul(n int64) (Duration, error) {
	months, ok := mulInt64(d.Months, n)
	if !ok {
		return Duration{}, ErrOverflow
	}
	micros, ok := mulInt64(d.Micros, n)
	if !ok {
		return Duration{}, ErrOverflow
	}
	return Duration{Months: months, Micros: micros}, nil
}

// Seconds returns the flat part as exact decimal seconds.
func (d Duration) Seconds() decimal.Decimal {
	return decimal.New(d.Micros, -6)
}

// AddTo shifts t by d. The month part moves the calendar month and clamps
// the day of month to the length of the target month; the flat part is
// then added as elapsed time.
func (d Duration) AddTo(t time.Time) (time.Time, error) {
	if !d.IsFlat() {
		y, m, day := t.Date()
		total, ok := addInt64(int64(y)*12+int64(m-1), d.Months)
		if !ok || total/12 > math.MaxInt32 || total/12 < math.MinInt32 {
			return time.Time{}, ErrOverflow
		}
		ny := int(floorDiv(total, 12))
		nm := time.Month(total-floorDiv(total, 12)*12) + 1
		if last := DaysIn(ny, nm); day > last {
			day = last
		}
		hh, mm, ss := t.Clock()
		t = time.Date(ny, nm, day, hh, mm, ss, t.Nanosecond(), t.Location())
	}
	if d.Micros == 0 {
		return t, nil
	}
	sec, ok := addInt64(t.Unix(), d.Micros/microsPerSecond)
	if !ok {
		return time.Time{}, ErrOverflow
	}
	nsec := int64(t.Nanosecond()) + (d.Micros%microsPerSecond)*1000
	return time.Unix(sec, nsec).In(t.Location()), nil
}

// Between returns the flat duration from b to a, truncated to microseconds.
func Between(a, b time.Time) (Duration, error) {
	secs, ok := subInt64(a.Unix(), b.Unix())
	if !ok {
		return Duration{}, ErrOverflow
	}
	micros, ok := mulInt64(secs, microsPerSecond)
	if !ok {
		return Duration{}, ErrOverflow
	}
	frac := int64(a.Nanosecond()-b.Nanosecond()) / 1000
	micros, ok = addInt64(micros, frac)
	if !ok {
		return Duration{}, ErrOverflow
	}
	return Duration{Micros: micros}, nil
}

// String renders the duration, e.g. "266400s", "1y2mo", "-1mo 3600s" or
// "0.005s".
func (d Duration) String() string {
	if d.IsZero() {
		return "0s"
	}

	var parts []string
	if d.Months != 0 {
		parts = append(parts, formatMonths(d.Months))
	}
	if d.Micros != 0 {
		parts = append(parts, d.Seconds().String()+"s")
	}
	return strings.Join(parts, " ")
}

func formatMonths(months int64) string {
	sign := ""
	if months < 0 {
		sign = "-"
		if months == math.MinInt64 {
			return fmt.Sprintf("%dmo", months)
		}
		months = -months
	}
	years, rest := months/12, months%12
	switch {
	case years == 0:
		return fmt.Sprintf("%s%dmo", sign, rest)
	case rest == 0:
		return fmt.Sprintf("%s%dy", sign, years)
	default:
		return fmt.Sprintf("%s%dy%dmo", sign, years, rest)
	}
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func addInt64(a, b int64) (int64, bool) {
	c := a + b
	if (c > a) == (b > 0) {
		return c, true
	}
	return c, b == 0
}

func subInt64(a, b int64) (int64, bool) {
	if b == math.MinInt64 {
		if a >= 0 {
			return 0, false
		}
		return a - b, true
	}
	return addInt64(a, -b)
}

func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	if c/b != a {
		return 0, false
	}
	return c, true
}

// AddInt returns a + b and reports whether the sum fits in an int64.
func AddInt(a, b int64) (int64, bool) { return addInt64(a, b) }

// SubInt returns a - b and reports whether the difference fits in an int64.
func SubInt(a, b int64) (int64, bool) { return subInt64(a, b) }
