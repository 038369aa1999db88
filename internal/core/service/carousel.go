package service

import (
	"sync"
	"time"

	"github.com/99minutos/storefront/internal/pkg/clock"
)

// DefaultSlideInterval is how long a banner slide stays up.
const DefaultSlideInterval = 5 * time.Second

// Carousel rotates through banner slides on a timer. On narrow layouts each
// banner is a slide; on wide layouts banners are shown in pairs.
type Carousel struct {
	clk      clock.Clock
	interval time.Duration

	mu       sync.Mutex
	items    int
	wide     bool
	current  int
	stop     func()
	onChange func(int)
}

func NewCarousel(clk clock.Clock, interval time.Duration, items int) *Carousel {
	if interval <= 0 {
		interval = DefaultSlideInterval
	}
	if items < 0 {
		items = 0
	}
	return &Carousel{clk: clk, interval: interval, items: items}
}

// SlideCount is the number of banners, or the number of pairs when wide.
func (c *Carousel) SlideCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slideCount()
}

func (c *Carousel) slideCount() int {
	if c.wide {
		return (c.items + 1) / 2
	}
	return c.items
}

// Current is the index of the visible slide.
func (c *Carousel) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// SetWide switches layout. The current slide is reset when it no longer
// exists.
func (c *Carousel) SetWide(wide bool) {
	c.mu.Lock()
	c.wide = wide
	if c.current >= c.slideCount() {
		c.current = 0
	}
	c.mu.Unlock()
}

// SetItems changes the number of banners.
func (c *Carousel) SetItems(n int) {
	if n < 0 {
		n = 0
	}
	c.mu.Lock()
	c.items = n
	if c.current >= c.slideCount() {
		c.current = 0
	}
	c.mu.Unlock()
}

// GoTo shows slide i. Out-of-range indexes go back to the first slide. A
// running timer restarts so the chosen slide gets a full interval.
func (c *Carousel) GoTo(i int) {
	c.mu.Lock()
	if i < 0 || i >= c.slideCount() {
		i = 0
	}
	c.current = i
	fn := c.onChange
	running := c.stop != nil
	if running {
		c.stop()
		c.stop = c.clk.Every(c.interval, c.tick)
	}
	c.mu.Unlock()

	if fn != nil {
		fn(i)
	}
}

// Start begins rotating. onChange, if set, receives every new index.
// Calling Start on a running carousel only replaces onChange.
func (c *Carousel) Start(onChange func(int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = onChange
	if c.stop == nil {
		c.stop = c.clk.Every(c.interval, c.tick)
	}
}

// Stop halts rotation. It is safe to call more than once.
func (c *Carousel) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
}

func (c *Carousel) tick(time.Time) {
	c.mu.Lock()
	n := c.slideCount()
	if n == 0 {
		c.mu.Unlock()
		return
	}
	c.current = (c.current + 1) % n
	i, fn := c.current, c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(i)
	}
}

// SlidePairs groups banners two by two for the wide layout. The last pair
// holds a single banner when the count is odd.
func SlidePairs[T any](items []T) [][]T {
	pairs := make([][]T, 0, (len(items)+1)/2)
	for i := 0; i < len(items); i += 2 {
		end := min(i+2, len(items))
		pairs = append(pairs, items[i:end:end])
	}
	return pairs
}
