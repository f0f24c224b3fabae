package batch

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Operation is a unit of outbound work, typically one remote LMS call.
type Operation func(ctx context.Context) (interface{}, error)

// Pending is the settlement handle returned by Enqueue. It settles exactly
// once with the operation's own outcome.
type Pending struct {
	done  chan struct{}
	value interface{}
	err   error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func (p *Pending) settle(value interface{}, err error) {
	p.value = value
	p.err = err
	close(p.done)
}

// Wait blocks until the operation settles or the caller's context is done.
// A caller that abandons the wait never observes a late result.
func (p *Pending) Wait(ctx context.Context) (interface{}, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done exposes the settlement signal for select-based callers.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// QueueConfig tunes batching behaviour.
type QueueConfig struct {
	BatchSize   int
	PacingDelay time.Duration
	Logger      *zap.Logger

	// ObserveDepth, when set, receives the queue depth after every
	// enqueue and dequeue.
	ObserveDepth func(depth int)
	// CountBatch, when set, receives the size of every dispatched batch.
	CountBatch func(items int)
}

// Queue throttles and groups pending operations into bounded FIFO batches
// with a fixed pacing delay between batches. Operations within a batch run
// concurrently and are joined all-settled: one failure never cancels its
// siblings or later batches.
type Queue struct {
	batchSize int
	pacing    time.Duration
	logger    *zap.Logger

	observeDepth func(int)
	countBatch   func(int)

	mu       sync.Mutex
	items    []*item
	draining bool
}

type item struct {
	ctx     context.Context
	op      Operation
	pending *Pending
}

// NewQueue builds a queue with the provided tuning.
func NewQueue(cfg QueueConfig) *Queue {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if cfg.PacingDelay < 0 {
		cfg.PacingDelay = 0
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Queue{
		batchSize:    cfg.BatchSize,
		pacing:       cfg.PacingDelay,
		logger:       cfg.Logger,
		observeDepth: cfg.ObserveDepth,
		countBatch:   cfg.CountBatch,
	}
}

// Enqueue appends an operation and returns its settlement handle. The first
// enqueue moves the queue from idle to draining; enqueues during a drain
// simply append, guarded so the drain loop is never started twice. There is
// no depth bound: the pacing delay is the only throttle.
func (q *Queue) Enqueue(ctx context.Context, op Operation) *Pending {
	if ctx == nil {
		ctx = context.Background()
	}
	it := &item{ctx: ctx, op: op, pending: newPending()}

	q.mu.Lock()
	q.items = append(q.items, it)
	depth := len(q.items)
	start := !q.draining
	if start {
		q.draining = true
	}
	q.mu.Unlock()

	if q.observeDepth != nil {
		q.observeDepth(depth)
	}
	if start {
		go q.drain()
	}
	return it.pending
}

// Depth reports the number of operations not yet dispatched.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) drain() {
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.draining = false
			q.mu.Unlock()
			return
		}
		n := q.batchSize
		if n > len(q.items) {
			n = len(q.items)
		}
		current := q.items[:n:n]
		q.items = q.items[n:]
		remaining := len(q.items)
		q.mu.Unlock()

		if q.observeDepth != nil {
			q.observeDepth(remaining)
		}
		if q.countBatch != nil {
			q.countBatch(len(current))
		}
		q.logger.Debug("dispatching batch",
			zap.Int("size", len(current)), zap.Int("remaining", remaining))

		var wg sync.WaitGroup
		for _, it := range current {
			// Abandoned before dispatch: settle with the cancellation
			// and skip the remote call entirely.
			if err := it.ctx.Err(); err != nil {
				it.pending.settle(nil, err)
				continue
			}
			wg.Add(1)
			go func(it *item) {
				defer wg.Done()
				value, err := it.op(it.ctx)
				it.pending.settle(value, err)
			}(it)
		}
		wg.Wait()

		q.mu.Lock()
		more := len(q.items) > 0
		q.mu.Unlock()
		if more && q.pacing > 0 {
			time.Sleep(q.pacing)
		}
	}
}
