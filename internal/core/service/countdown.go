package service

import (
	"sync"
	"time"

	"github.com/99minutos/storefront/internal/pkg/clock"
)

// Remaining is the time left until a deadline, split for display.
type Remaining struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// Zero reports whether the deadline has been reached.
func (r Remaining) Zero() bool {
	return r == Remaining{}
}

// RemainingUntil splits the whole seconds between now and deadline.
// A past deadline yields zero.
func RemainingUntil(now, deadline time.Time) Remaining {
	left := deadline.Sub(now)
	if left <= 0 {
		return Remaining{}
	}
	secs := int(left / time.Second)
	return Remaining{
		Days:    secs / 86400,
		Hours:   secs % 86400 / 3600,
		Minutes: secs % 3600 / 60,
		Seconds: secs % 60,
	}
}

// Countdown ticks once per second toward a deadline and stops itself when
// it gets there.
type Countdown struct {
	clk      clock.Clock
	deadline time.Time

	mu        sync.Mutex
	remaining Remaining
	stop      func()
}

func NewCountdown(clk clock.Clock, deadline time.Time) *Countdown {
	return &Countdown{
		clk:       clk,
		deadline:  deadline,
		remaining: RemainingUntil(clk.Now(), deadline),
	}
}

// Deadline is the instant the countdown reaches zero.
func (c *Countdown) Deadline() time.Time { return c.deadline }

// Remaining is the value as of the last tick.
func (c *Countdown) Remaining() Remaining {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Running reports whether the countdown is still ticking.
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop != nil
}

// Start begins ticking; onTick, if set, receives each new value. A
// countdown already at zero does not start.
func (c *Countdown) Start(onTick func(Remaining)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil || c.remaining.Zero() {
		return
	}
	c.stop = c.clk.Every(time.Second, func(now time.Time) {
		r := RemainingUntil(now, c.deadline)
		c.mu.Lock()
		c.remaining = r
		if r.Zero() && c.stop != nil {
			c.stop()
			c.stop = nil
		}
		c.mu.Unlock()
		if onTick != nil {
			onTick(r)
		}
	})
}

// Stop halts the countdown. It is safe to call more than once.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
}
