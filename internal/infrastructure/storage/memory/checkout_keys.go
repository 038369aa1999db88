package memory

import (
	"context"
	"sync"
	"time"

	"github.com/99minutos/storefront/internal/pkg/clock"
)

// CheckoutKeys is the in-process counterpart of the Redis checkout key
// store, used when no Redis is configured.
type CheckoutKeys struct {
	mu    sync.Mutex
	clk   clock.Clock
	ttl   time.Duration
	items map[string]checkoutKey
}

type checkoutKey struct {
	key     string
	expires time.Time
}

func NewCheckoutKeys(clk clock.Clock, ttl time.Duration) *CheckoutKeys {
	return &CheckoutKeys{clk: clk, ttl: ttl, items: make(map[string]checkoutKey)}
}

func (c *CheckoutKeys) Claim(_ context.Context, fingerprint, candidate string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clk.Now()
	if existing, ok := c.items[fingerprint]; ok && now.Before(existing.expires) {
		return existing.key, nil
	}
	c.items[fingerprint] = checkoutKey{key: candidate, expires: now.Add(c.ttl)}
	return candidate, nil
}

func (c *CheckoutKeys) Release(_ context.Context, fingerprint string) error {
	c.mu.Lock()
	delete(c.items, fingerprint)
	c.mu.Unlock()
	return nil
}
