package calendar

import (
	"fmt"
	"strings"
	"time"
)

// RoundingMode selects how sub-day units are rounded.
type RoundingMode uint8

const (
	// RoundMidnight floors every unit below a month to midnight of the
	// same day, whatever the requested unit.
	RoundMidnight RoundingMode = iota
	// RoundExact floors HOUR, MINUTE, SECOND and MILLISECOND to their
	// own boundary.
	RoundExact
)

func (m RoundingMode) String() string {
	switch m {
	case RoundMidnight:
		return "midnight"
	case RoundExact:
		return "exact"
	default:
		return "unknown"
	}
}

// ParseRoundingMode parses "midnight" or "exact" (case-insensitive).
func ParseRoundingMode(s string) (RoundingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "midnight":
		return RoundMidnight, nil
	case "exact":
		return RoundExact, nil
	default:
		return 0, fmt.Errorf("invalid rounding mode %q, expected midnight or exact", s)
	}
}

// Round floors t to the start of the given unit in t's location.
func Round(t time.Time, u Unit, mode RoundingMode) time.Time {
	y, m, d := t.Date()
	loc := t.Location()

	switch u {
	case Year:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	case Month:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	}

	if mode == RoundMidnight {
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}

	hh, mm, ss := t.Clock()
	switch u {
	case Hour:
		return time.Date(y, m, d, hh, 0, 0, 0, loc)
	case Minute:
		return time.Date(y, m, d, hh, mm, 0, 0, loc)
	case Second:
		return time.Date(y, m, d, hh, mm, ss, 0, loc)
	case Millisecond:
		ms := t.Nanosecond() / int(time.Millisecond)
		return time.Date(y, m, d, hh, mm, ss, ms*int(time.Millisecond), loc)
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
}
