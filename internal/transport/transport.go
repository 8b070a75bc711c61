package transport

import (
	"context"
	"errors"
)

// ErrEmpty is returned by Dequeue when no job id is waiting.
var ErrEmpty = errors.New("queue is empty")

// Transport carries job ids between producers and the dispatcher. It knows
// nothing about job semantics; the durable record lives in the job store and
// only the id travels here. The processing set is advisory bookkeeping for
// monitoring, not a lock.
type Transport interface {
	// Enqueue pushes a job id onto the pending queue. Higher priority ids
	// dequeue first; ids with equal priority dequeue in insertion order.
	Enqueue(ctx context.Context, jobID uint, priority int) error

	// Dequeue atomically removes and returns the next job id, or ErrEmpty.
	// Whichever caller's pop succeeds owns that id for this attempt.
	Dequeue(ctx context.Context) (uint, error)

	MarkProcessing(ctx context.Context, jobID uint) error
	RemoveProcessing(ctx context.Context, jobID uint) error

	QueueSize(ctx context.Context) (int64, error)
	ProcessingCount(ctx context.Context) (int64, error)

	Close() error
}
