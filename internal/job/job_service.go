package job

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/lumahq/dispatch/common"
	"github.com/lumahq/dispatch/internal/config"
	"github.com/lumahq/dispatch/internal/dto"
	"github.com/lumahq/dispatch/internal/models"
	"github.com/lumahq/dispatch/internal/transport"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// JobService is the single entry point feature code uses to schedule
// asynchronous work. It writes the durable row first and only then makes
// the id visible on the transport, so a dequeuing worker can always load
// the row it popped.
type JobService struct {
	repo  JobRepoInterface
	queue transport.Transport
}

func NewJobService(repo JobRepoInterface, queue transport.Transport) *JobService {
	return &JobService{repo: repo, queue: queue}
}

var _ JobServiceInterface = (*JobService)(nil)

// CreateJob validates job creation input, persists a pending row with zero
// attempts, and enqueues the new id onto the transport with the requested
// priority. It returns the new job id, a typed API error for validation
// failures, and an internal error for persistence or transport failures.
// If the enqueue fails the row stays pending; it is never rolled back.
func (s *JobService) CreateJob(ctx context.Context, d *dto.JobCreateDTO) (uint, error) {
	if err := ctx.Err(); err != nil {
		return 0, common.Errf(http.StatusRequestTimeout, "request canceled or timed out")
	}

	if !json.Valid(d.Payload) {
		return 0, common.Errf(http.StatusBadRequest, "payload must be valid JSON")
	}

	jobType := config.JobType(d.Type)
	if !config.ValidJobType(jobType) {
		return 0, common.NewAPIError(
			http.StatusBadRequest,
			"invalid job type",
			map[string]any{
				"provided": d.Type,
				"allowed":  config.AllowedJobTypes,
			},
		)
	}

	if err := s.validateTypedPayload(jobType, d.Payload); err != nil {
		return 0, err
	}

	maxAttempts := d.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = config.DefaultMaxAttempts
	}

	j := models.Job{
		UserID:      d.UserID,
		Type:        d.Type,
		Payload:     datatypes.JSON(d.Payload),
		Status:      string(config.JobStatusPending),
		Attempts:    0,
		MaxAttempts: maxAttempts,
		Priority:    d.Priority,
	}

	if err := s.repo.Create(ctx, &j); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			return 0, common.Errf(http.StatusRequestTimeout, "request was canceled")
		case errors.Is(err, context.DeadlineExceeded):
			return 0, common.Errf(http.StatusRequestTimeout, "request timeout")
		default:
			return 0, common.Errf(http.StatusInternalServerError, "failed to add job to database")
		}
	}

	if err := s.queue.Enqueue(ctx, j.ID, j.Priority); err != nil {
		log.Printf("[jobs][WARN] job %d created but not enqueued: %v", j.ID, err)
		return 0, common.Errf(http.StatusInternalServerError, "failed to enqueue job")
	}

	return j.ID, nil
}

// GetJobByID retrieves a job by its ID from the repository.
// It maps repository errors to appropriate API errors
// (e.g., not found, timeout, or internal failure).
func (s *JobService) GetJobByID(ctx context.Context, id uint) (*dto.JobResponseDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
	}

	j, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) ||
			errors.Is(err, context.Canceled) {
			return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
		}

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.Errf(http.StatusNotFound, "job not found")
		}

		return nil, common.Errf(http.StatusInternalServerError, "failed to get job")
	}

	resp := toResponseDTO(j)
	return &resp, nil
}

// ListJobsByUser retrieves all jobs created by a user, newest first, and
// maps repository or context errors to appropriate API errors.
func (s *JobService) ListJobsByUser(ctx context.Context, userID string) ([]dto.JobResponseDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
	}

	jobs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) ||
			errors.Is(err, context.Canceled) {
			return nil, common.Errf(http.StatusRequestTimeout, "request timed out")
		}

		return nil, common.Errf(http.StatusInternalServerError, "failed to list jobs")
	}

	dtos := make([]dto.JobResponseDTO, len(jobs))
	for i := range jobs {
		dtos[i] = toResponseDTO(&jobs[i])
	}

	return dtos, nil
}

func (s *JobService) validateTypedPayload(t config.JobType, raw json.RawMessage) error {
	switch t {
	case config.JobTypeDocumentEmbedding:
		return validatePayload[dto.EmbedDocumentPayload](raw)
	case config.JobTypeStudioGenerate:
		return validatePayload[dto.StudioGeneratePayload](raw)
	case config.JobTypeWizardImage:
		return validatePayload[dto.WizardImagePayload](raw)
	case config.JobTypeCarouselRender:
		return validatePayload[dto.CarouselRenderPayload](raw)
	case config.JobTypeInstagramPublish, config.JobTypeFacebookPublish:
		return validatePayload[dto.SocialPublishPayload](raw)
	case config.JobTypeScheduledPublish:
		return validatePayload[dto.ScheduledPublishPayload](raw)
	case config.JobTypeContentScrape:
		return validatePayload[dto.ContentScrapePayload](raw)
	}
	return nil
}

func toResponseDTO(j *models.Job) dto.JobResponseDTO {
	return dto.JobResponseDTO{
		ID:          j.ID,
		UserID:      j.UserID,
		Type:        j.Type,
		Payload:     json.RawMessage(j.Payload),
		Status:      j.Status,
		Attempts:    j.Attempts,
		MaxAttempts: j.MaxAttempts,
		Priority:    j.Priority,
		Result:      json.RawMessage(j.Result),
		Error:       j.Error,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}
