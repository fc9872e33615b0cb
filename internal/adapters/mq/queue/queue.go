// Package queue holds leaderboard load jobs until a fetch worker picks them up.
package queue

import (
	"context"
	"sync"

	"github.com/okian/bassboard/internal/domain/viewstate"
	"github.com/okian/bassboard/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 64
	defaultBufferSize    = 64
)

// Rejection reasons reported to metrics.
const (
	reasonClosed    = "closed"
	reasonFull      = "full"
	reasonCancelled = "context_cancelled"
)

// Job asks a worker to load one tab of one event. The ticket travels with the
// job so the result can be checked against the selection when it lands.
type Job = viewstate.Ticket

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job to the queue.
	// Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, j Job) bool

	// Dequeue returns a channel that receives jobs as they become available.
	// The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Job

	// Len returns the current number of queued jobs.
	Len(ctx context.Context) int

	// Close stops accepting jobs and closes the dequeue channel once drained.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	jobs       chan Job
	capacity   int
	bufferSize int
	mu         sync.RWMutex
	closed     bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity:   defaultQueueCapacity,
		bufferSize: defaultBufferSize,
	}

	for _, opt := range opts {
		opt(q)
	}
	if q.bufferSize < q.capacity {
		q.bufferSize = q.capacity
	}

	q.jobs = make(chan Job, q.bufferSize)

	metrics.UpdateLoadQueueCapacity(q.capacity)
	metrics.UpdateLoadQueueSize(0)

	return q
}

// Enqueue adds a job to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.reject(reasonClosed)
		return false
	}
	if len(q.jobs) >= q.capacity {
		q.reject(reasonFull)
		return false
	}

	select {
	case q.jobs <- j:
		metrics.UpdateLoadQueueSize(len(q.jobs))
		return true
	case <-ctx.Done():
		q.reject(reasonCancelled)
		return false
	default:
		q.reject(reasonFull)
		return false
	}
}

func (q *InMemoryQueue) reject(reason string) {
	metrics.RecordLoadQueueRejected(reason)
	metrics.RecordErrorByComponent("queue", reason)
}

// Dequeue returns the shared job channel. Every consumer reads the same
// channel, so a consumer busy with one job never holds back the next one.
// Consumers watch ctx themselves; the channel closes only when the queue does.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Job {
	return q.jobs
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.jobs)
	metrics.UpdateLoadQueueSize(size)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
