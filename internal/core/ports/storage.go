package ports

import "context"

// StorageChangedEvent is the single named channel for session change
// broadcasts. Events carry no payload; subscribers re-read storage.
const StorageChangedEvent = "storage"

// KeyValueStore is the persistent string storage backing the session.
// Writes are last-write-wins; there is no locking across instances.
type KeyValueStore interface {
	// Get returns ok=false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// SetMany writes values as one batch. Implementations apply the batch
	// atomically where the backend allows it; a failed batch may still have
	// landed in part, so callers must treat the affected keys as unknown.
	SetMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}

// ChangeBus delivers StorageChangedEvent to every subscriber, including
// subscribers in other processes sharing the same storage.
type ChangeBus interface {
	Publish(ctx context.Context) error
	// Subscribe registers fn and returns a function that removes it.
	// Calling the returned function more than once is a no-op.
	Subscribe(fn func()) (unsubscribe func())
}
