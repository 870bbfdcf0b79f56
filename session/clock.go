package session

import "time"

// Clock provides the instant NOW resolves to. It is read once per
// statement.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the host clock in local time.
type SystemClock struct{}

// Now returns the current local time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return c.T
}
