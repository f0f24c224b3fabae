package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueSettlesWithOperationOutcome(t *testing.T) {
	q := NewQueue(QueueConfig{BatchSize: 2, PacingDelay: time.Millisecond})
	ctx := context.Background()

	ok := q.Enqueue(ctx, func(context.Context) (interface{}, error) {
		return "payload", nil
	})
	boom := q.Enqueue(ctx, func(context.Context) (interface{}, error) {
		return nil, errors.New("remote down")
	})

	value, err := ok.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "payload", value)

	_, err = boom.Wait(ctx)
	require.EqualError(t, err, "remote down")
}

func TestQueueDispatchesFIFOBatchesOfBoundedSize(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	var mu sync.Mutex
	var batches []int
	q := NewQueue(QueueConfig{
		BatchSize:   5,
		PacingDelay: time.Millisecond,
		CountBatch: func(n int) {
			mu.Lock()
			batches = append(batches, n)
			mu.Unlock()
		},
	})

	ctx := context.Background()
	blocker := q.Enqueue(ctx, func(context.Context) (interface{}, error) {
		close(started)
		<-release
		return nil, nil
	})
	<-started

	// The drain loop is now parked on the blocker; everything below lands
	// behind it in FIFO order.
	var order []int
	var orderMu sync.Mutex
	pendings := make([]*Pending, 0, 10)
	for i := 0; i < 10; i++ {
		i := i
		pendings = append(pendings, q.Enqueue(ctx, func(context.Context) (interface{}, error) {
			orderMu.Lock()
			order = append(order, i)
			orderMu.Unlock()
			return i, nil
		}))
	}
	close(release)

	_, err := blocker.Wait(ctx)
	require.NoError(t, err)
	for i, p := range pendings {
		value, err := p.Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, i, value)
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{1, 5, 5}, batches)

	// Within a batch completion order races, but batch membership is FIFO.
	orderMu.Lock()
	defer orderMu.Unlock()
	require.Len(t, order, 10)
	firstBatch := append([]int(nil), order[:5]...)
	for _, idx := range firstBatch {
		assert.Less(t, idx, 5)
	}
}

func TestQueueBoundsConcurrency(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	q := NewQueue(QueueConfig{BatchSize: 4, PacingDelay: time.Millisecond})
	ctx := context.Background()

	blocker := q.Enqueue(ctx, func(context.Context) (interface{}, error) {
		close(started)
		<-release
		return nil, nil
	})
	<-started

	var current, max int64
	pendings := make([]*Pending, 0, 8)
	for i := 0; i < 8; i++ {
		pendings = append(pendings, q.Enqueue(ctx, func(context.Context) (interface{}, error) {
			now := atomic.AddInt64(&current, 1)
			for {
				seen := atomic.LoadInt64(&max)
				if now <= seen || atomic.CompareAndSwapInt64(&max, seen, now) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&current, -1)
			return nil, nil
		}))
	}
	close(release)

	_, err := blocker.Wait(ctx)
	require.NoError(t, err)
	for _, p := range pendings {
		_, err := p.Wait(ctx)
		require.NoError(t, err)
	}

	assert.LessOrEqual(t, atomic.LoadInt64(&max), int64(4))
}

func TestQueueIsolatesFailuresWithinBatch(t *testing.T) {
	q := NewQueue(QueueConfig{BatchSize: 3, PacingDelay: time.Millisecond})
	ctx := context.Background()

	first := q.Enqueue(ctx, func(context.Context) (interface{}, error) { return 1, nil })
	failing := q.Enqueue(ctx, func(context.Context) (interface{}, error) { return nil, errors.New("boom") })
	second := q.Enqueue(ctx, func(context.Context) (interface{}, error) { return 2, nil })
	later := q.Enqueue(ctx, func(context.Context) (interface{}, error) { return 3, nil })

	v1, err := first.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v1)

	_, err = failing.Wait(ctx)
	require.Error(t, err)

	v2, err := second.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, v2)

	v3, err := later.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, v3)
}

func TestQueueDropsItemsCancelledBeforeDispatch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	q := NewQueue(QueueConfig{BatchSize: 2, PacingDelay: time.Millisecond})
	ctx := context.Background()

	blocker := q.Enqueue(ctx, func(context.Context) (interface{}, error) {
		close(started)
		<-release
		return nil, nil
	})
	<-started

	cancelled, cancel := context.WithCancel(context.Background())
	var ran int64
	doomed := q.Enqueue(cancelled, func(context.Context) (interface{}, error) {
		atomic.AddInt64(&ran, 1)
		return nil, nil
	})
	cancel()
	close(release)

	_, err := blocker.Wait(ctx)
	require.NoError(t, err)

	_, err = doomed.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, atomic.LoadInt64(&ran))
}

func TestQueueWaitReturnsOnAbandonedCaller(t *testing.T) {
	q := NewQueue(QueueConfig{BatchSize: 1, PacingDelay: time.Millisecond})

	slow := q.Enqueue(context.Background(), func(context.Context) (interface{}, error) {
		time.Sleep(100 * time.Millisecond)
		return "late", nil
	})

	waitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, err := slow.Wait(waitCtx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueueReturnsToIdleAndDrainsAgain(t *testing.T) {
	q := NewQueue(QueueConfig{BatchSize: 2, PacingDelay: time.Millisecond})
	ctx := context.Background()

	first := q.Enqueue(ctx, func(context.Context) (interface{}, error) { return "a", nil })
	v, err := first.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	require.Eventually(t, func() bool { return q.Depth() == 0 }, time.Second, time.Millisecond)

	second := q.Enqueue(ctx, func(context.Context) (interface{}, error) { return "b", nil })
	v, err = second.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", v)
}
