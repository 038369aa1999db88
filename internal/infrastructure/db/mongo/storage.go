package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionSessionStorage = "session_storage"

// Storage keeps session keys as one document per (namespace, key).
// It has no change notification of its own; pair it with a ChangeBus.
type Storage struct {
	col       *mongo.Collection
	namespace string
}

func NewStorage(db *mongo.Database, namespace string) *Storage {
	return &Storage{col: db.Collection(collectionSessionStorage), namespace: namespace}
}

type storageDoc struct {
	Namespace string    `bson:"namespace"`
	Key       string    `bson:"key"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc storageDoc
	err := s.col.FindOne(ctx, s.filter(key)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("mongo get %s: %w", key, err)
	}
	return doc.Value, true, nil
}

// Set upserts the key. Concurrent writers race; the last write wins.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := s.filter(key)
	update := bson.M{"$set": bson.M{"value": value, "updated_at": time.Now().UTC()}}
	if _, err := s.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("mongo set %s: %w", key, err)
	}
	return nil
}

// SetMany upserts the batch with one ordered bulk write. Mongo has no
// multi-document atomicity outside transactions, so on error some keys may
// already be written.
func (s *Storage) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(values))
	for k, v := range values {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(s.filter(k)).
			SetUpdate(bson.M{"$set": bson.M{"value": v, "updated_at": now}}).
			SetUpsert(true))
	}
	if _, err := s.col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		return fmt.Errorf("mongo set many: %w", err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"namespace": s.namespace, "key": bson.M{"$in": keys}}
	if _, err := s.col.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	return nil
}

func (s *Storage) filter(key string) bson.M {
	return bson.M{"namespace": s.namespace, "key": key}
}

// EnsureIndexes creates the unique (namespace, key) index.
func (s *Storage) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "namespace", Value: 1}, {Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
