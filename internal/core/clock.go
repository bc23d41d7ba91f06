package core

import "time"

var _ Clock = SystemClock{}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

var _ Clock = (*FixedClock)(nil)

// FixedClock always returns the same instant. Used in tests and by
// callers that need to evaluate queries "as of" a point in time.
type FixedClock struct {
	Time time.Time
}

func (c FixedClock) Now() time.Time {
	return c.Time
}
