package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CheckoutKeys remembers the idempotency key issued for a checkout
// fingerprint, so a repeated buy-now within the TTL replays the same key.
// Key format: <namespace>:checkout:<fingerprint>
type CheckoutKeys struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

func NewCheckoutKeys(client *redis.Client, namespace string, ttl time.Duration) *CheckoutKeys {
	return &CheckoutKeys{client: client, namespace: namespace, ttl: ttl}
}

// Claim stores candidate for fingerprint unless a live key exists, and
// returns whichever key is now current.
func (c *CheckoutKeys) Claim(ctx context.Context, fingerprint, candidate string) (string, error) {
	k := c.key(fingerprint)
	set, err := c.client.SetNX(ctx, k, candidate, c.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("checkout key claim: %w", err)
	}
	if set {
		return candidate, nil
	}
	existing, err := c.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		return candidate, nil
	}
	if err != nil {
		return "", fmt.Errorf("checkout key read: %w", err)
	}
	return existing, nil
}

// Release forgets the fingerprint so the next checkout gets a fresh key.
func (c *CheckoutKeys) Release(ctx context.Context, fingerprint string) error {
	return c.client.Del(ctx, c.key(fingerprint)).Err()
}

func (c *CheckoutKeys) key(fingerprint string) string {
	return namespaced(c.namespace, "checkout:"+fingerprint)
}
