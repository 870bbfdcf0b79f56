// Package calendar implements the duration units, the two duration
// semantics and the rounding rules used by datemath expressions.
//
// Two semantics are supported and are selected once per session:
//
//   - FixedRatio converts every unit to a constant number of seconds
//     (MONTH = 30 days, YEAR = 365 days).
//   - CalendarRelative keeps MONTH and YEAR as month offsets that are
//     applied to timestamps with calendar-aware addition, so that
//     March 31 minus one month is the last day of February.
//
// Units below a month are flat in both semantics.
package calendar

import (
	"fmt"
	"strings"
)

// Unit is a calendar or clock unit usable in duration literals.
type Unit uint8

const (
	Year Unit = iota
	Month
	Day
	Hour
	Minute
	Second
	Millisecond
)

// Units lists every unit from the largest to the smallest.
var Units = []Unit{Year, Month, Day, Hour, Minute, Second, Millisecond}

var unitNames = map[Unit]string{
	Year:        "YEAR",
	Month:       "MONTH",
	Day:         "DAY",
	Hour:        "HOUR",
	Minute:      "MINUTE",
	Second:      "SECOND",
	Millisecond: "MILLISECOND",
}

// unitKeywords maps the upper-cased keywords accepted by the lexer to
// their unit. MILLI is an alias of MILLISECOND.
var unitKeywords = map[string]Unit{
	"YEAR":        Year,
	"MONTH":       Month,
	"DAY":         Day,
	"HOUR":        Hour,
	"MINUTE":      Minute,
	"SECOND":      Second,
	"MILLISECOND": Millisecond,
	"MILLI":       Millisecond,
}

func (u Unit) String() string {
	if name, ok := unitNames[u]; ok {
		return name
	}
	return "UNKNOWN"
}

// LookupUnit resolves a unit keyword. Matching is case-insensitive and
// accepts a single trailing S, so "days", "DAY" and "Millis" all match.
func LookupUnit(word string) (Unit, bool) {
	upper := strings.ToUpper(word)
	if u, ok := unitKeywords[upper]; ok {
		return u, true
	}
	if strings.HasSuffix(upper, "S") {
		if u, ok := unitKeywords[upper[:len(upper)-1]]; ok {
			return u, true
		}
	}
	return 0, false
}

// Microseconds per flat unit.
const (
	microsPerMilli  int64 = 1000
	microsPerSecond int64 = 1000 * microsPerMilli
	microsPerMinute int64 = 60 * microsPerSecond
	microsPerHour   int64 = 60 * microsPerMinute
	microsPerDay    int64 = 24 * microsPerHour
)

// Semantics selects how MONTH and YEAR are converted.
type Semantics uint8

const (
	// CalendarRelative keeps months and years as calendar offsets.
	CalendarRelative Semantics = iota
	// FixedRatio converts months to 30 days and years to 365 days.
	FixedRatio
)

func (s Semantics) String() string {
	switch s {
	case FixedRatio:
		return "fixed"
	case CalendarRelative:
		return "calendar"
	default:
		return "unknown"
	}
}

// ParseSemantics parses "fixed" or "calendar" (case-insensitive).
func ParseSemantics(s string) (Semantics, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed", "fixed-ratio":
		return FixedRatio, nil
	case "calendar", "calendar-relative":
		return CalendarRelative, nil
	default:
		return 0, fmt.Errorf("invalid semantics %q, expected fixed or calendar", s)
	}
}

// Table converts unit counts to durations under one Semantics.
type Table struct {
	semantics Semantics
}

// NewTable returns the unit table for the given semantics.
func NewTable(s Semantics) Table {
	return Table{semantics: s}
}

// Semantics returns the semantics this table was built with.
func (t Table) Semantics() Semantics {
	return t.semantics
}

// Magnitude returns the length of one unit. Under calendar-relative
// semantics MONTH and YEAR carry a month count instead of microseconds.
func (t Table) Magnitude(u Unit) Duration {
	switch u {
	case Year:
		if t.semantics == FixedRatio {
			return Duration{Micros: 365 * microsPerDay}
		}
		return Duration{Months: 12}
	case Month:
		if t.semantics == FixedRatio {
			return Duration{Micros: 30 * microsPerDay}
		}
		return Duration{Months: 1}
	case Day:
		return Duration{Micros: microsPerDay}
	case Hour:
		return Duration{Micros: microsPerHour}
	case Minute:
		return Duration{Micros: microsPerMinute}
	case Second:
		return Duration{Micros: microsPerSecond}
	case Millisecond:
		return Duration{Micros: microsPerMilli}
	default:
		return Duration{}
	}
}

// Duration returns count units. It fails with ErrOverflow when the
// result does not fit the internal representation.
func (t Table) Duration(count int64, u Unit) (Duration, error) {
	return t.Magnitude(u).Mul(count)
}
