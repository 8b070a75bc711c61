package job

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/lumahq/dispatch/internal/config"
	"github.com/lumahq/dispatch/internal/dto"
	"github.com/lumahq/dispatch/internal/models"
	"gorm.io/datatypes"
)

// ErrInvalidTransition is returned for a status move that is not part of
// the job status machine. It indicates a programming error, not a race.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrStatusConflict is returned when a guarded transition finds the row no
// longer in the expected status, usually because another dispatcher
// invocation advanced it first.
var ErrStatusConflict = errors.New("job status conflict")

// JobRepoInterface defines the contract for job persistence operations.
type JobRepoInterface interface {
	Create(ctx context.Context, j *models.Job) error
	Get(ctx context.Context, id uint) (*models.Job, error)
	Transition(ctx context.Context, id uint, from, to config.JobStatus) error
	IncrementAttempts(ctx context.Context, id uint) error
	SaveResult(ctx context.Context, id uint, result datatypes.JSON, errMsg string) error
	ListByUser(ctx context.Context, userID string) ([]models.Job, error)
}

// JobServiceInterface defines the contract for job business logic operations.
type JobServiceInterface interface {
	CreateJob(ctx context.Context, dto *dto.JobCreateDTO) (uint, error)
	GetJobByID(ctx context.Context, id uint) (*dto.JobResponseDTO, error)
	ListJobsByUser(ctx context.Context, userID string) ([]dto.JobResponseDTO, error)
}

// JobHandlerInterface defines the contract for HTTP request handlers.
type JobHandlerInterface interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	List(c *gin.Context)
}
