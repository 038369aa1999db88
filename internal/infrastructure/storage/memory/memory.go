// Package memory provides process-local session storage and change bus.
// Several stores may share one Storage and one Bus, which is how tests
// model separate tabs of the same browser profile.
package memory

import (
	"context"
	"sync"
)

// Storage is a concurrency-safe string map.
type Storage struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewStorage() *Storage {
	return &Storage{data: make(map[string]string)}
}

func (s *Storage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *Storage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
	return nil
}

// SetMany applies every value under one lock, so readers never see half a
// batch.
func (s *Storage) SetMany(_ context.Context, values map[string]string) error {
	s.mu.Lock()
	for k, v := range values {
		s.data[k] = v
	}
	s.mu.Unlock()
	return nil
}

func (s *Storage) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	for _, k := range keys {
		delete(s.data, k)
	}
	s.mu.Unlock()
	return nil
}

// Len is the number of stored keys.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Bus fans a change event out to every subscriber synchronously, after the
// publishing write has completed.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func()
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]func())}
}

func (b *Bus) Publish(_ context.Context) error {
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

// Subscribers is the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
