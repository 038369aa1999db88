package clock

import (
	"sort"
	"sync"
	"time"
)

// FakeClock is a deterministic Clock. Time moves only on Advance.
// Do not call Advance from inside a callback.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	nextID  int
	entries map[int]*fakeEntry
}

type fakeEntry struct {
	id       int
	next     time.Time
	interval time.Duration
	fn       func(time.Time)
}

// Fake returns a FakeClock starting at initial.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial, entries: make(map[int]*fakeEntry)}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *FakeClock) Every(d time.Duration, fn func(time.Time)) func() {
	if d <= 0 {
		panic("clock: non-positive interval")
	}
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.entries[id] = &fakeEntry{id: id, next: c.current.Add(d), interval: d, fn: fn}
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.entries, id)
		c.mu.Unlock()
	}
}

// Advance moves time forward by d, firing every tick that falls due, in
// deadline order (registration order on ties).
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.current.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var due []*fakeEntry
		for _, e := range c.entries {
			if !e.next.After(target) {
				due = append(due, e)
			}
		}
		if len(due) == 0 {
			c.current = target
			c.mu.Unlock()
			return
		}
		sort.Slice(due, func(i, j int) bool {
			if due[i].next.Equal(due[j].next) {
				return due[i].id < due[j].id
			}
			return due[i].next.Before(due[j].next)
		})
		e := due[0]
		fireAt := e.next
		e.next = e.next.Add(e.interval)
		c.current = fireAt
		fn := e.fn
		c.mu.Unlock()

		fn(fireAt)
	}
}

// Pending is the number of live periodic callbacks.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
