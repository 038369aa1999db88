package mongo

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// offline returns a database handle; the driver does not dial until the
// first operation.
func offline(t *testing.T) *mongo.Database {
	t.Helper()
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://127.0.0.1:1"))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return client.Database("storefront_test")
}

func TestStorage_FilterIsNamespaced(t *testing.T) {
	db := offline(t)

	got := NewStorage(db, "shop").filter("token")
	if diff := cmp.Diff(bson.M{"namespace": "shop", "key": "token"}, got); diff != "" {
		t.Fatalf("filter (-want +got):\n%s", diff)
	}
	other := NewStorage(db, "admin").filter("token")
	if other["namespace"] == got["namespace"] {
		t.Fatalf("namespaces must not share documents")
	}
}

func TestChangeFilter_MatchesNamespaceInserts(t *testing.T) {
	p := changeFilter("shop")
	if len(p) != 1 || p[0][0].Key != "$match" {
		t.Fatalf("unexpected pipeline %v", p)
	}
	want := bson.M{"operationType": "insert", "fullDocument.namespace": "shop"}
	if diff := cmp.Diff(want, p[0][0].Value); diff != "" {
		t.Fatalf("match stage (-want +got):\n%s", diff)
	}
}

func TestBus_SubscribeBookkeeping(t *testing.T) {
	bus := NewBus(offline(t), "shop", zerolog.Nop())
	if bus.col.Name() != collectionSessionEvents {
		t.Fatalf("events collection %q", bus.col.Name())
	}

	var calls []string
	unA := bus.Subscribe(func() { calls = append(calls, "a") })
	unB := bus.Subscribe(func() { calls = append(calls, "b") })
	bus.notify()
	if diff := cmp.Diff([]string{"a", "b"}, calls); diff != "" {
		t.Fatalf("notify order (-want +got):\n%s", diff)
	}

	unA()
	unA()
	calls = nil
	bus.notify()
	if diff := cmp.Diff([]string{"b"}, calls); diff != "" {
		t.Fatalf("after unsubscribe (-want +got):\n%s", diff)
	}
	unB()
	if len(bus.subs) != 0 {
		t.Fatalf("expected no subscribers, got %d", len(bus.subs))
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("close before start: %v", err)
	}
}
