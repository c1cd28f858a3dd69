package signal

import (
	"context"
	"sync/atomic"
	"time"
)

// Queue is a bounded FIFO of commands posted from timer or ISR context and
// drained by one task. Posting never blocks; overflow is dropped and counted.
type Queue[T any] struct {
	ch    chan T
	drops atomic.Uint32
}

// NewQueue returns a queue holding at most depth items (minimum 1).
func NewQueue[T any](depth int) *Queue[T] {
	if depth <= 0 {
		depth = 1
	}
	return &Queue[T]{ch: make(chan T, depth)}
}

// Post enqueues v from task context. It reports false if the queue is full.
func (q *Queue[T]) Post(v T) bool {
	select {
	case q.ch <- v:
		return true
	default:
		q.drops.Add(1)
		return false
	}
}

// PostFromISR is the interrupt-safe variant. It returns whether the item was
// queued; a true result may have readied the consumer, so callers running
// as a task (timer callbacks) should yield afterwards.
func (q *Queue[T]) PostFromISR(v T) bool {
	select {
	case q.ch <- v:
		return true
	default:
		// protect ISR path
		q.drops.Add(1)
		return false
	}
}

// ISRPoster returns a callback that posts v. It captures only the queue.
func (q *Queue[T]) ISRPoster(v T) func() {
	return func() { q.PostFromISR(v) }
}

// C exposes the receive side for select loops.
func (q *Queue[T]) C() <-chan T { return q.ch }

// Receive blocks for the next item. A zero timeout waits indefinitely.
// ok is false on timeout or cancellation; err is set only on cancellation.
func (q *Queue[T]) Receive(ctx context.Context, timeout time.Duration) (v T, ok bool, err error) {
	if timeout <= 0 {
		select {
		case v = <-q.ch:
			return v, true, nil
		case <-ctx.Done():
			return v, false, ctx.Err()
		}
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case v = <-q.ch:
		return v, true, nil
	case <-t.C:
		return v, false, nil
	case <-ctx.Done():
		return v, false, ctx.Err()
	}
}

// Len is the number of queued items.
func (q *Queue[T]) Len() int { return len(q.ch) }

// Drops is the number of posts rejected because the queue was full.
func (q *Queue[T]) Drops() uint32 { return q.drops.Load() }
