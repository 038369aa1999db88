package mongo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionSessionEvents = "session_events"
	// eventRetention bounds the events collection through a TTL index.
	eventRetention = time.Hour
)

type eventDoc struct {
	Namespace string    `bson:"namespace"`
	At        time.Time `bson:"at"`
}

// Bus broadcasts storage changes through a change stream on the events
// collection. Each Publish inserts one event; every process watching the
// same namespace is notified, the publisher included.
//
// Change streams need a replica set or sharded cluster.
type Bus struct {
	col       *mongo.Collection
	namespace string
	log       zerolog.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]func()
	cancel context.CancelFunc
	done   chan struct{}
}

func NewBus(db *mongo.Database, namespace string, log zerolog.Logger) *Bus {
	return &Bus{
		col:       db.Collection(collectionSessionEvents),
		namespace: namespace,
		log:       log,
		subs:      make(map[int]func()),
	}
}

// changeFilter matches the inserts published for namespace.
func changeFilter(namespace string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"operationType":          "insert",
			"fullDocument.namespace": namespace,
		}}},
	}
}

// EnsureIndexes expires old events.
func (b *Bus) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := b.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(eventRetention.Seconds())),
	})
	return err
}

// Start opens the change stream. The stream is positioned when Start
// returns, so a Publish issued afterwards is never missed.
func (b *Bus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		return nil
	}

	stream, err := b.col.Watch(ctx, changeFilter(b.namespace))
	if err != nil {
		return fmt.Errorf("mongo watch %s: %w", collectionSessionEvents, err)
	}
	lctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.done = make(chan struct{})
	go b.listen(lctx, stream, b.done)
	return nil
}

func (b *Bus) listen(ctx context.Context, stream *mongo.ChangeStream, done chan struct{}) {
	defer close(done)
	defer func() {
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = stream.Close(cctx)
	}()

	for stream.Next(ctx) {
		b.notify()
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		b.log.Error().Err(err).Str("namespace", b.namespace).Msg("change stream ended")
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
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := b.col.InsertOne(ctx, eventDoc{Namespace: b.namespace, At: time.Now().UTC()}); err != nil {
		return fmt.Errorf("mongo publish %s: %w", b.namespace, err)
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

// Close stops the change stream and waits for the listener to exit.
func (b *Bus) Close() error {
	b.mu.Lock()
	cancel, done := b.cancel, b.done
	b.cancel = nil
	b.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	b.log.Debug().Str("namespace", b.namespace).Msg("change bus closed")
	return nil
}
