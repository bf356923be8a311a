// Package queue defines the contract for enqueuing and consuming rounds.
//
// Submitted rounds are accepted immediately and appended to history by the
// worker pool, so HTTP ingestion never waits on the store.
package queue

import (
	"context"
	"sync"

	"github.com/okian/handicap/internal/domain/model"
	"github.com/okian/handicap/pkg/metrics"
)

const (
	defaultQueueCapacity = 100000
	defaultQueueName     = "queue"
)

// Round is the payload type flowing through the queue.
type Round = model.Round

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a round to the queue.
	// Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, r Round) bool

	// Dequeue returns a channel that receives rounds as they become available.
	// The channel is closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Round

	// Len returns the current number of queued rounds.
	Len(ctx context.Context) int

	// Close stops accepting rounds. Rounds already queued are still delivered.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	rounds   chan Round
	capacity int
	name     string
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
		name:     defaultQueueName,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.rounds = make(chan Round, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)

	return q
}

// Enqueue adds a round to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, r Round) bool { //nolint:gocritic // hugeParam: passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent(q.name, "closed")
		return false
	}
	if ctx.Err() != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent(q.name, "context_cancelled")
		return false
	}

	select {
	case q.rounds <- r:
		metrics.RecordQueueEnqueue()
		q.observe()
		return true
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent(q.name, "queue_full")
		return false
	}
}

// Dequeue returns a channel that will receive rounds as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Round {
	out := make(chan Round)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case r, ok := <-q.rounds:
				if !ok {
					return
				}
				select {
				case out <- r:
					metrics.RecordQueueDequeue()
					q.observe()
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Len returns the current number of queued rounds.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	return q.observe()
}

func (q *InMemoryQueue) observe() int {
	size := len(q.rounds)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity) * 100)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.rounds)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
