package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/lumahq/dispatch/internal/config"
	"github.com/lumahq/dispatch/internal/job"
	"github.com/lumahq/dispatch/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

var _ job.JobRepoInterface = (*JobRepository)(nil)

// Create inserts a new job record into the database. It uses the provided
// context for cancellation and timeout propagation. Returns an error if the
// database operation fails.
func (r *JobRepository) Create(ctx context.Context, j *models.Job) error {
	if err := r.db.WithContext(ctx).Create(j).Error; err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// Get retrieves a single job record by its ID. Returns the job if found,
// or an error if the job doesn't exist or the database query fails.
func (r *JobRepository) Get(ctx context.Context, id uint) (*models.Job, error) {
	var j models.Job
	if err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job not found: %w", err)
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}

// Transition moves a job from one status to another. It rejects moves that
// are not part of the status machine, and the UPDATE is guarded on the
// current status so a row another invocation already advanced is left
// untouched and job.ErrStatusConflict is returned. Retries go through here
// exactly like terminal transitions; there is no separate code path.
func (r *JobRepository) Transition(ctx context.Context, id uint, from, to config.JobStatus) error {
	if !config.CanTransition(from, to) {
		return fmt.Errorf("transition job %d: %s -> %s: %w", id, from, to, job.ErrInvalidTransition)
	}

	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND status = ?", id, string(from)).
		Update("status", string(to))
	if res.Error != nil {
		return fmt.Errorf("transition job %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("transition job %d: not in status %s: %w", id, from, job.ErrStatusConflict)
	}
	return nil
}

// IncrementAttempts increments the attempts counter for a job by one.
// Uses gorm.Expr to increment atomically at the database level, preventing
// lost updates when dispatcher invocations overlap. Returns an error if the
// database operation fails.
func (r *JobRepository) IncrementAttempts(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", id).
		Update("attempts", gorm.Expr("attempts + ?", 1)).Error; err != nil {
		return fmt.Errorf("increment attempts: %w", err)
	}
	return nil
}

// SaveResult persists the terminal payload for a job: the handler result on
// completion, or the failure detail on permanent failure. Both fields are
// updated in a single operation. Returns an error if the database operation
// fails.
func (r *JobRepository) SaveResult(ctx context.Context, id uint, result datatypes.JSON, errMsg string) error {
	if err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"result": result,
			"error":  errMsg,
		}).Error; err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

// ListByUser retrieves all jobs created by a user, newest first. Returns a
// slice of jobs or an error if the database query fails.
func (r *JobRepository) ListByUser(ctx context.Context, userID string) ([]models.Job, error) {
	var jobs []models.Job
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}
