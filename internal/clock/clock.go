// Package clock abstracts the time source so that hold deadlines can be
// driven deterministically in tests.  All clocks return UTC instants;
// every deadline comparison in the engine assumes UTC.
package clock

import "time"

// Clock supplies the current time to deadline logic.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystem returns a clock backed by time.Now.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

type fixedClock struct {
	now time.Time
}

// NewFixed returns a clock that always reports the same instant.
// Useful for tests that pin deadlines to known values.
func NewFixed(t time.Time) Clock {
	return fixedClock{now: t.UTC()}
}

func (f fixedClock) Now() time.Time {
	return f.now
}
