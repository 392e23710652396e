package shared

import "time"

// Clock abstracts "now" so that time-driven rules (bond expiry, reminder
// classification) can be evaluated deterministically in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock returns the wall-clock time
type SystemClock struct{}

// Now implements Clock
func (SystemClock) Now() time.Time {
	return time.Now()
}

// NewSystemClock creates a system clock
func NewSystemClock() Clock {
	return SystemClock{}
}

// FixedClock always returns the same instant. Test use only.
type FixedClock struct {
	Instant time.Time
}

// Now implements Clock
func (c FixedClock) Now() time.Time {
	return c.Instant
}

// NewFixedClock creates a clock frozen at the given instant
func NewFixedClock(t time.Time) Clock {
	return FixedClock{Instant: t}
}
