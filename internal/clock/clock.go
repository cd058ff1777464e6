package clock

import (
	"sync"
	"time"
)

// Clock supplies the current time. Services take a Clock instead of calling
// time.Now so departure checks can be tested at fixed instants.
type Clock interface {
	Now() time.Time
}

type wall struct {
	loc *time.Location
}

// Real returns the wall clock, reporting times in loc. Departure dates and
// times are interpreted in that location.
func Real(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return wall{loc: loc}
}

func (w wall) Now() time.Time {
	return time.Now().In(w.loc)
}

// Fake is a manually advanced clock for tests.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

func NewFake(now time.Time) *Fake {
	return &Fake{now: now}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
