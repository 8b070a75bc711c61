package dispatcher

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Processor is the surface the worker endpoint needs from the dispatcher.
type Processor interface {
	ProcessOne(ctx context.Context) (*Outcome, error)
	QueueStats(ctx context.Context) (QueueStats, error)
}

var _ Processor = (*Dispatcher)(nil)

// WorkerHandler exposes the dispatcher over HTTP for an external scheduler:
// POST processes at most one job, GET reports queue depth.
type WorkerHandler struct {
	processor Processor
}

func NewWorkerHandler(p Processor) *WorkerHandler {
	return &WorkerHandler{processor: p}
}

// Process handles one scheduler tick. Every handler-level outcome maps to a
// well-formed 200 response; only store-level failures around the dispatch
// logic produce a 500.
func (h *WorkerHandler) Process(c *gin.Context) {
	outcome, err := h.processor.ProcessOne(c.Request.Context())
	if err != nil {
		log.Printf("[worker][ERROR] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Worker processing failed"})
		return
	}

	switch {
	case outcome.NoHandler:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "No handler for job type",
			"jobType": outcome.JobType,
		})
	case outcome.AlreadyProcessed:
		c.JSON(http.StatusOK, gin.H{
			"message": "Job already processed",
			"jobId":   outcome.JobID,
			"status":  outcome.Status,
		})
	case !outcome.Processed:
		c.JSON(http.StatusOK, gin.H{
			"message":   "No jobs to process",
			"processed": false,
		})
	case outcome.WillRetry:
		c.JSON(http.StatusOK, gin.H{
			"message":     "Job failed, will retry",
			"jobId":       outcome.JobID,
			"attempt":     outcome.Attempt,
			"maxAttempts": outcome.MaxAttempts,
			"error":       outcome.ErrMsg,
		})
	case outcome.ErrMsg != "":
		c.JSON(http.StatusOK, gin.H{
			"message": "Job failed permanently",
			"jobId":   outcome.JobID,
			"error":   outcome.ErrMsg,
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"message":  "Job completed",
			"jobId":    outcome.JobID,
			"result":   json.RawMessage(outcome.Result),
			"duration": outcome.Duration.Milliseconds(),
		})
	}
}

// Status reports the transport's pending and processing counters.
func (h *WorkerHandler) Status(c *gin.Context) {
	stats, err := h.processor.QueueStats(c.Request.Context())
	if err != nil {
		log.Printf("[worker][ERROR] queue stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Worker processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"queue": stats})
}
