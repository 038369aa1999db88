package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/api/metrics"
	"github.com/99minutos/storefront/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// ErrStopped is returned for tasks submitted after the dispatcher stopped.
var ErrStopped = errors.New("dispatcher stopped")

type job struct {
	ctx  context.Context
	task ports.Task
	idx  int
	out  chan<- result
}

type result struct {
	idx int
	err error
}

var _ ports.TaskRunner = (*Dispatcher)(nil)

// Dispatcher routes tasks to a fixed set of workers using consistent hashing
// on the task key, guaranteeing per-key ordering.
type Dispatcher struct {
	workers []chan job
	log     zerolog.Logger

	mu      sync.RWMutex
	ctx     context.Context
	started bool
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan job, numWorkers),
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan job, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true
	d.ctx = ctx
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Run submits tasks and waits for all of them. The returned errors are in
// task order; a nil entry means the task succeeded. Tasks run on ctx, and
// Run gives up waiting once ctx is done, reporting ctx.Err() for every task
// that had not finished.
func (d *Dispatcher) Run(ctx context.Context, tasks []ports.Task) []error {
	errs := make([]error, len(tasks))
	if len(tasks) == 0 {
		return errs
	}

	d.mu.RLock()
	wctx, started := d.ctx, d.started
	d.mu.RUnlock()
	if !started {
		for i := range errs {
			errs[i] = ErrStopped
		}
		return errs
	}

	out := make(chan result, len(tasks))
	reported := make([]bool, len(tasks))
	pending := 0
	for i, t := range tasks {
		shard := d.shardIndex(t.Key)
		select {
		case d.workers[shard] <- job{ctx: ctx, task: t, idx: i, out: out}:
			metrics.BulkQueueDepth.WithLabelValues(strconv.Itoa(shard)).Inc()
			pending++
		case <-ctx.Done():
			errs[i], reported[i] = ctx.Err(), true
		case <-wctx.Done():
			errs[i], reported[i] = ErrStopped, true
		}
	}

	for ; pending > 0; pending-- {
		select {
		case r := <-out:
			errs[r.idx], reported[r.idx] = r.err, true
		case <-ctx.Done():
			fillUnreported(errs, reported, ctx.Err())
			return errs
		case <-wctx.Done():
			fillUnreported(errs, reported, ErrStopped)
			return errs
		}
	}
	return errs
}

func fillUnreported(errs []error, reported []bool, err error) {
	for i := range errs {
		if !reported[i] {
			errs[i] = err
		}
	}
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan job) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-ch:
			if !ok {
				return
			}
			metrics.BulkQueueDepth.WithLabelValues(label).Dec()
			err := d.runTask(ctx, j)
			if err != nil {
				d.log.Error().Err(err).
					Str("key", j.task.Key).
					Int("worker_id", id).
					Msg("task failed")
			}
			j.out <- result{idx: j.idx, err: err}
		}
	}
}

// runTask runs j on its caller's context, cut short if the worker stops.
func (d *Dispatcher) runTask(workerCtx context.Context, j job) error {
	if err := j.ctx.Err(); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(j.ctx)
	defer cancel()
	stop := context.AfterFunc(workerCtx, cancel)
	defer stop()
	return j.task.Run(ctx)
}
