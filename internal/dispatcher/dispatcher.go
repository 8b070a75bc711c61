package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lumahq/dispatch/internal/config"
	"github.com/lumahq/dispatch/internal/job"
	"github.com/lumahq/dispatch/internal/transport"
	"gorm.io/datatypes"
)

// Handler executes the work for one job type. It receives the job's raw
// payload and returns a JSON-serializable result or an error. Handlers may
// run more than once for the same job (a crash between a handler's own
// writes and the job row update replays the attempt), so they must be
// idempotent. Handlers never touch the job row itself.
type Handler func(ctx context.Context, payload datatypes.JSON) (any, error)

// Outcome describes what a single dispatch invocation did.
type Outcome struct {
	Processed        bool
	JobID            uint
	JobType          string
	Status           config.JobStatus
	AlreadyProcessed bool
	NoHandler        bool
	WillRetry        bool
	Attempt          int
	MaxAttempts      int
	Result           datatypes.JSON
	ErrMsg           string
	Duration         time.Duration
}

// QueueStats is a snapshot of the transport counters.
type QueueStats struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
}

// Dispatcher claims at most one job per invocation, runs the registered
// handler for its type, and applies the retry policy. Store and transport
// are injected; the dispatcher owns every mutation of the job row.
type Dispatcher struct {
	repo           job.JobRepoInterface
	queue          transport.Transport
	handlers       map[config.JobType]Handler
	handlerTimeout time.Duration
}

func NewDispatcher(
	repo job.JobRepoInterface,
	queue transport.Transport,
	handlers map[config.JobType]Handler,
	handlerTimeout time.Duration,
) *Dispatcher {
	return &Dispatcher{
		repo:           repo,
		queue:          queue,
		handlers:       handlers,
		handlerTimeout: handlerTimeout,
	}
}

// ProcessOne runs a single dispatch cycle:
//
//  1. Pop one id from the transport; empty queue and transport failures
//     both mean "nothing to do this tick".
//  2. Load the job row and short-circuit unless it is still pending.
//  3. Claim it (pending -> processing, guarded) and mark the advisory
//     processing entry.
//  4. Run the handler under a timeout; a timeout counts as a failure.
//  5. On success complete the job with the handler result. On failure
//     bump attempts and either re-enqueue (attempts left) or fail the
//     job permanently.
//
// The processing entry is removed on every branch. Store errors around the
// dispatch logic are returned as-is; handler errors never escape.
func (d *Dispatcher) ProcessOne(ctx context.Context) (*Outcome, error) {
	id, err := d.queue.Dequeue(ctx)
	if err != nil {
		if !errors.Is(err, transport.ErrEmpty) {
			log.Printf("[worker][WARN] dequeue failed, treating as empty: %v", err)
		}
		return &Outcome{Processed: false}, nil
	}

	j, err := d.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load job %d: %w", id, err)
	}

	if j.Status != string(config.JobStatusPending) {
		return &Outcome{
			Processed:        false,
			JobID:            id,
			JobType:          j.Type,
			Status:           config.JobStatus(j.Status),
			AlreadyProcessed: true,
		}, nil
	}

	if err := d.queue.MarkProcessing(ctx, id); err != nil {
		log.Printf("[worker][WARN] mark processing job %d: %v", id, err)
	}

	if err := d.repo.Transition(ctx, id, config.JobStatusPending, config.JobStatusProcessing); err != nil {
		d.removeProcessing(ctx, id)
		if errors.Is(err, job.ErrStatusConflict) {
			// another invocation claimed the row between our read and update
			status := config.JobStatusProcessing
			if fresh, gerr := d.repo.Get(ctx, id); gerr == nil {
				status = config.JobStatus(fresh.Status)
			}
			return &Outcome{
				Processed:        false,
				JobID:            id,
				JobType:          j.Type,
				Status:           status,
				AlreadyProcessed: true,
			}, nil
		}
		return nil, fmt.Errorf("claim job %d: %w", id, err)
	}

	handler, ok := d.handlers[config.JobType(j.Type)]
	if !ok {
		errMsg := fmt.Sprintf("no handler for job type: %s", j.Type)
		if err := d.failJob(ctx, id, errMsg); err != nil {
			return nil, err
		}
		return &Outcome{
			Processed: true,
			JobID:     id,
			JobType:   j.Type,
			Status:    config.JobStatusFailed,
			NoHandler: true,
			ErrMsg:    errMsg,
		}, nil
	}

	start := time.Now()
	result, handlerErr := d.invoke(ctx, handler, j.Payload)
	duration := time.Since(start)

	if handlerErr == nil {
		resultJSON, err := json.Marshal(result)
		if err != nil {
			handlerErr = fmt.Errorf("marshal handler result: %w", err)
		} else {
			if err := d.repo.Transition(ctx, id, config.JobStatusProcessing, config.JobStatusCompleted); err != nil {
				return nil, err
			}
			if err := d.repo.SaveResult(ctx, id, datatypes.JSON(resultJSON), ""); err != nil {
				return nil, err
			}
			d.removeProcessing(ctx, id)
			log.Printf("[worker] job %d (%s) completed in %v", id, j.Type, duration)
			return &Outcome{
				Processed: true,
				JobID:     id,
				JobType:   j.Type,
				Status:    config.JobStatusCompleted,
				Result:    datatypes.JSON(resultJSON),
				Duration:  duration,
			}, nil
		}
	}

	if err := d.repo.IncrementAttempts(ctx, id); err != nil {
		return nil, err
	}
	attempt := j.Attempts + 1

	if attempt < j.MaxAttempts {
		if err := d.repo.Transition(ctx, id, config.JobStatusProcessing, config.JobStatusPending); err != nil {
			return nil, err
		}
		d.removeProcessing(ctx, id)
		if err := d.queue.Enqueue(ctx, id, j.Priority); err != nil {
			// the row is pending but not queued; it needs a manual re-enqueue
			log.Printf("[worker][WARN] job %d not re-enqueued after retryable failure: %v", id, err)
		}
		log.Printf("[worker] job %d (%s) failed (attempt %d/%d), will retry: %v",
			id, j.Type, attempt, j.MaxAttempts, handlerErr)
		return &Outcome{
			Processed:   true,
			JobID:       id,
			JobType:     j.Type,
			Status:      config.JobStatusPending,
			WillRetry:   true,
			Attempt:     attempt,
			MaxAttempts: j.MaxAttempts,
			ErrMsg:      handlerErr.Error(),
		}, nil
	}

	if err := d.failJob(ctx, id, handlerErr.Error()); err != nil {
		return nil, err
	}
	log.Printf("[worker] job %d (%s) failed permanently after %d attempts: %v",
		id, j.Type, attempt, handlerErr)
	return &Outcome{
		Processed:   true,
		JobID:       id,
		JobType:     j.Type,
		Status:      config.JobStatusFailed,
		Attempt:     attempt,
		MaxAttempts: j.MaxAttempts,
		ErrMsg:      handlerErr.Error(),
	}, nil
}

// QueueStats reads the transport counters for the monitoring endpoint.
func (d *Dispatcher) QueueStats(ctx context.Context) (QueueStats, error) {
	pending, err := d.queue.QueueSize(ctx)
	if err != nil {
		return QueueStats{}, fmt.Errorf("queue size: %w", err)
	}
	processing, err := d.queue.ProcessingCount(ctx)
	if err != nil {
		return QueueStats{}, fmt.Errorf("processing count: %w", err)
	}
	return QueueStats{Pending: pending, Processing: processing}, nil
}

// invoke runs the handler in its own goroutine under a timeout. A handler
// that ignores cancellation is abandoned once the timeout fires; its job is
// already counted as a failed attempt by then. Panics are converted to
// errors so a broken handler cannot leave the job stuck in processing.
func (d *Dispatcher) invoke(ctx context.Context, h Handler, payload datatypes.JSON) (any, error) {
	hctx := ctx
	if d.handlerTimeout > 0 {
		var cancel context.CancelFunc
		hctx, cancel = context.WithTimeout(ctx, d.handlerTimeout)
		defer cancel()
	}

	type handlerReturn struct {
		value any
		err   error
	}
	done := make(chan handlerReturn, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- handlerReturn{err: fmt.Errorf("handler panic: %v", r)}
			}
		}()
		value, err := h(hctx, payload)
		done <- handlerReturn{value: value, err: err}
	}()

	select {
	case ret := <-done:
		return ret.value, ret.err
	case <-hctx.Done():
		return nil, fmt.Errorf("handler timed out: %w", hctx.Err())
	}
}

func (d *Dispatcher) failJob(ctx context.Context, id uint, errMsg string) error {
	if err := d.repo.Transition(ctx, id, config.JobStatusProcessing, config.JobStatusFailed); err != nil {
		return err
	}
	if err := d.repo.SaveResult(ctx, id, nil, errMsg); err != nil {
		return err
	}
	d.removeProcessing(ctx, id)
	return nil
}

func (d *Dispatcher) removeProcessing(ctx context.Context, id uint) {
	if err := d.queue.RemoveProcessing(ctx, id); err != nil {
		log.Printf("[worker][WARN] remove processing job %d: %v", id, err)
	}
}
