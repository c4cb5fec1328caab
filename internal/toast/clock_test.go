package toast

import (
	"sort"
	"sync"
	"time"
)

// fakeClock is a manual scheduler for deterministic expiry tests.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and fires every due, unstopped timer in deadline order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

// FireAll runs every callback ever scheduled, including stopped ones,
// as if cancellation had lost the race.
func (c *fakeClock) FireAll() {
	c.mu.Lock()
	all := make([]*fakeTimer, len(c.timers))
	copy(all, c.timers)
	c.mu.Unlock()

	for _, t := range all {
		t.f()
	}
}

// Pending returns the number of timers that are neither stopped nor fired.
func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func newTestManager(d time.Duration) (*Manager, *fakeClock) {
	clock := &fakeClock{}
	m := NewManager(d, discardLogger())
	m.SetAfterFunc(clock.AfterFunc)
	return m, clock
}
