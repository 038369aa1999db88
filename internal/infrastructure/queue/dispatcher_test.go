package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"go.uber.org/goleak"

	"github.com/99minutos/storefront/internal/core/ports"
)

func TestDispatcher_RunReturnsErrorsInTaskOrder(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDispatcher(3, zerolog.Nop())
	d.Start(ctx)

	boom := errors.New("boom")
	tasks := make([]ports.Task, 10)
	for i := range tasks {
		i := i
		tasks[i] = ports.Task{Key: fmt.Sprint(i), Run: func(context.Context) error {
			if i%3 == 0 {
				return boom
			}
			return nil
		}}
	}

	errs := d.Run(ctx, tasks)
	if len(errs) != len(tasks) {
		t.Fatalf("expected %d results, got %d", len(tasks), len(errs))
	}
	for i, err := range errs {
		if (i%3 == 0) != errors.Is(err, boom) {
			t.Fatalf("task %d: unexpected error %v", i, err)
		}
	}
}

func TestDispatcher_SameKeyRunsInSubmissionOrder(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDispatcher(4, zerolog.Nop())
	d.Start(ctx)

	var mu sync.Mutex
	var seen []int
	tasks := make([]ports.Task, 20)
	for i := range tasks {
		i := i
		tasks[i] = ports.Task{Key: "product-42", Run: func(context.Context) error {
			mu.Lock()
			seen = append(seen, i)
			mu.Unlock()
			return nil
		}}
	}

	for _, err := range d.Run(ctx, tasks) {
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
	}
	for i, v := range seen {
		if v != i {
			t.Fatalf("expected submission order, got %v", seen)
		}
	}
}

type requestKey struct{}

func TestDispatcher_TasksRunOnCallerContext(t *testing.T) {
	defer goleak.VerifyNone(t)
	wctx, stop := context.WithCancel(context.Background())
	defer stop()

	d := NewDispatcher(2, zerolog.Nop())
	d.Start(wctx)

	ctx := context.WithValue(context.Background(), requestKey{}, "req-1")
	var got any
	errs := d.Run(ctx, []ports.Task{{Key: "a", Run: func(ctx context.Context) error {
		got = ctx.Value(requestKey{})
		return nil
	}}})
	if errs[0] != nil {
		t.Fatalf("unexpected error %v", errs[0])
	}
	if got != "req-1" {
		t.Fatalf("task did not see the caller's context, got %v", got)
	}
}

func TestDispatcher_CallerCancelStopsWaiting(t *testing.T) {
	defer goleak.VerifyNone(t)
	wctx, stop := context.WithCancel(context.Background())
	defer stop()

	d := NewDispatcher(1, zerolog.Nop())
	d.Start(wctx)

	ctx, cancel := context.WithCancel(context.Background())
	running := make(chan struct{})
	finished := make(chan struct{})
	tasks := []ports.Task{{Key: "a", Run: func(ctx context.Context) error {
		defer close(finished)
		close(running)
		<-ctx.Done()
		return ctx.Err()
	}}}

	done := make(chan []error, 1)
	go func() { done <- d.Run(ctx, tasks) }()
	<-running
	cancel()

	errs := <-done
	if !errors.Is(errs[0], context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", errs[0])
	}
	<-finished
}

func TestDispatcher_NotStarted(t *testing.T) {
	d := NewDispatcher(1, zerolog.Nop())
	errs := d.Run(context.Background(), []ports.Task{{Key: "a", Run: func(context.Context) error { return nil }}})
	if !errors.Is(errs[0], ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", errs[0])
	}
}

func TestDispatcher_ShardIndexDeterministic(t *testing.T) {
	d := NewDispatcher(5, zerolog.Nop())
	for _, key := range []string{"1", "42", "abc", ""} {
		a, b := d.shardIndex(key), d.shardIndex(key)
		if a != b || a < 0 || a >= 5 {
			t.Fatalf("key %q: unstable or out of range shard %d/%d", key, a, b)
		}
	}
}
