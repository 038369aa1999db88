// Package clock abstracts time so scheduled callbacks (carousels,
// countdowns, key expiry) can be driven by a virtual clock in tests.
//
// Production code takes a Clock and uses Real(); tests use Fake() and call
// Advance. Fake callbacks run synchronously inside Advance, in deadline
// order, so no test has to sleep.
package clock

import (
	"sync"
	"time"
)

// Clock provides the current time and periodic callbacks.
type Clock interface {
	Now() time.Time
	// Every calls fn with the tick time once per interval until the
	// returned stop function is called. Panics if d <= 0.
	Every(d time.Duration, fn func(time.Time)) (stop func())
}

// Real returns the wall clock.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Every(d time.Duration, fn func(time.Time)) func() {
	if d <= 0 {
		panic("clock: non-positive interval")
	}
	t := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case now := <-t.C:
				fn(now)
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			t.Stop()
			close(done)
		})
	}
}
