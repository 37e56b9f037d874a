package clock

import (
	"sync"
	"time"
)

// Clock is the time source for anything that compares against stored timestamps.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

// New returns the wall clock in UTC, truncated to microseconds so values
// survive a round trip through Postgres timestamps unchanged.
func New() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Fixed is a manually advanced clock for tests and simulations.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t.UTC().Truncate(time.Microsecond)}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.now = t.UTC().Truncate(time.Microsecond)
	f.mu.Unlock()
}
