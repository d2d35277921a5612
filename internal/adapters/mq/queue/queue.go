// Package queue holds the bounded command queue in front of a game runner.
//
// Producers never block: a full queue rejects the command so the caller can
// answer with backpressure instead of stalling a request goroutine.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/pitchperfect/pkg/metrics"
)

const defaultQueueCapacity = 256

// Command is a unit of work for the goroutine that owns a game.
type Command struct {
	Name       string
	Do         func(ctx context.Context)
	EnqueuedAt time.Time
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a command. It returns ErrBackpressure when the queue is
	// full and ErrClosed after Close.
	Enqueue(ctx context.Context, c Command) error

	// Dequeue returns the channel commands are delivered on. It is closed
	// by Close.
	Dequeue() <-chan Command

	// Len returns the number of pending commands.
	Len() int

	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	commands chan Command
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}

	for _, opt := range opts {
		opt(q)
	}

	q.commands = make(chan Command, q.capacity)
	return q
}

// Enqueue adds a command without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, c Command) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordCommandRejected("closed")
		return ErrClosed
	}
	if c.EnqueuedAt.IsZero() {
		c.EnqueuedAt = time.Now()
	}

	select {
	case <-ctx.Done():
		metrics.RecordCommandRejected("context_cancelled")
		return fmt.Errorf("enqueue %s: %w", c.Name, ctx.Err())
	default:
	}

	select {
	case q.commands <- c:
		return nil
	default:
		metrics.RecordCommandRejected("queue_full")
		return fmt.Errorf("%w: %s", ErrBackpressure, c.Name)
	}
}

// Dequeue returns the command channel.
func (q *InMemoryQueue) Dequeue() <-chan Command {
	return q.commands
}

// Len returns the number of pending commands.
func (q *InMemoryQueue) Len() int {
	return len(q.commands)
}

// Close stops accepting commands. Pending ones can still be drained.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.commands)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
