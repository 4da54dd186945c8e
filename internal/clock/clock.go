// Package clock abstracts "now" so pipelines can be driven with a
// deterministic time in tests.
package clock

import "time"

// Clock supplies the current instant in UTC
type Clock interface {
	Now() time.Time
}

type realClock struct{}

// New returns a Clock backed by the system time
func New() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a Clock pinned to a settable instant, for tests
type Fixed struct {
	now time.Time
}

// NewFixed returns a Clock pinned to t
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t.UTC()}
}

func (f *Fixed) Now() time.Time {
	return f.now
}

// Set moves the fixed clock to t
func (f *Fixed) Set(t time.Time) {
	f.now = t.UTC()
}

// Advance moves the fixed clock forward by d
func (f *Fixed) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}
