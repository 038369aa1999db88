package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/core/ports"
)

// Bus broadcasts storage changes over Redis pub/sub. Local subscribers are
// notified only through the subscription, so a process sees its own
// publishes exactly once, in the same way it sees other processes' writes.
type Bus struct {
	client  *redis.Client
	channel string
	log     zerolog.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]func()
	pubsub *redis.PubSub
	done   chan struct{}
}

func NewBus(client *redis.Client, namespace string, log zerolog.Logger) *Bus {
	return &Bus{
		client:  client,
		channel: namespaced(namespace, ports.StorageChangedEvent),
		log:     log,
		subs:    make(map[int]func()),
	}
}

// Start opens the subscription. It blocks until Redis confirms it, so a
// Publish issued after Start returns is never missed.
func (b *Bus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pubsub != nil {
		return nil
	}

	ps := b.client.Subscribe(ctx, b.channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return fmt.Errorf("redis subscribe %s: %w", b.channel, err)
	}
	b.pubsub = ps
	b.done = make(chan struct{})
	go b.listen(ps.Channel(), b.done)
	return nil
}

func (b *Bus) listen(ch <-chan *redis.Message, done chan struct{}) {
	defer close(done)
	for range ch {
		b.notify()
	}
}

// notify calls the current subscribers in subscription order, outside the lock.
func (b *Bus) notify() {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.subs))
	for id := 0; id < b.nextID; id++ {
		if fn, ok := b.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (b *Bus) Publish(ctx context.Context) error {
	if err := b.client.Publish(ctx, b.channel, "1").Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", b.channel, err)
	}
	return nil
}

func (b *Bus) Subscribe(fn func()) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Close ends the subscription and waits for the listener to exit.
func (b *Bus) Close() error {
	b.mu.Lock()
	ps, done := b.pubsub, b.done
	b.pubsub = nil
	b.mu.Unlock()
	if ps == nil {
		return nil
	}
	err := ps.Close()
	<-done
	b.log.Debug().Str("channel", b.channel).Msg("change bus closed")
	return err
}
