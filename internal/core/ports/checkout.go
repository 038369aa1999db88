package ports

import "context"

// CheckoutKeyStore remembers the idempotency key of a recent checkout so a
// repeated submission of the same cart reuses it.
type CheckoutKeyStore interface {
	// Claim returns the key already held for fingerprint, or stores and
	// returns candidate when none is live.
	Claim(ctx context.Context, fingerprint, candidate string) (string, error)
	// Release forgets fingerprint so the next submission gets a new key.
	Release(ctx context.Context, fingerprint string) error
}
