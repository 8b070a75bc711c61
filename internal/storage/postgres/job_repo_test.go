package postgres

import (
	"context"
	"testing"

	"github.com/lumahq/dispatch/internal/config"
	"github.com/lumahq/dispatch/internal/job"
	"github.com/lumahq/dispatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newPendingJob(t *testing.T, repo *JobRepository) *models.Job {
	t.Helper()

	j := &models.Job{
		UserID:      "user1",
		Type:        string(config.JobTypeDocumentEmbedding),
		Payload:     datatypes.JSON([]byte(`{"document_id":42,"text":"hello"}`)),
		Status:      string(config.JobStatusPending),
		MaxAttempts: 3,
	}
	require.NoError(t, repo.Create(context.Background(), j))
	return j
}

func TestJobRepository_CreateAndGet(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	created := newPendingJob(t, repo)
	require.NotZero(t, created.ID)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, "user1", got.UserID)
	assert.Equal(t, string(config.JobStatusPending), got.Status)
	assert.Equal(t, 0, got.Attempts)
	assert.Equal(t, 3, got.MaxAttempts)
	assert.JSONEq(t, `{"document_id":42,"text":"hello"}`, string(got.Payload))
}

func TestJobRepository_GetNotFound(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewJobRepository(db)

	_, err := repo.Get(context.Background(), 999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job not found")
}

func TestJobRepository_Transition(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	j := newPendingJob(t, repo)

	err := repo.Transition(ctx, j.ID, config.JobStatusPending, config.JobStatusProcessing)
	require.NoError(t, err)

	got, err := repo.Get(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, string(config.JobStatusProcessing), got.Status)
}

func TestJobRepository_TransitionConflict(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	j := newPendingJob(t, repo)

	require.NoError(t, repo.Transition(ctx, j.ID, config.JobStatusPending, config.JobStatusProcessing))

	// a second claim of the same row must lose
	err := repo.Transition(ctx, j.ID, config.JobStatusPending, config.JobStatusProcessing)
	assert.ErrorIs(t, err, job.ErrStatusConflict)
}

func TestJobRepository_TransitionRejectsIllegalMoves(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	j := newPendingJob(t, repo)

	err := repo.Transition(ctx, j.ID, config.JobStatusPending, config.JobStatusCompleted)
	assert.ErrorIs(t, err, job.ErrInvalidTransition)

	err = repo.Transition(ctx, j.ID, config.JobStatusCompleted, config.JobStatusPending)
	assert.ErrorIs(t, err, job.ErrInvalidTransition)

	// row untouched
	got, err := repo.Get(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, string(config.JobStatusPending), got.Status)
}

func TestJobRepository_TerminalRowStaysPut(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	j := newPendingJob(t, repo)
	require.NoError(t, repo.Transition(ctx, j.ID, config.JobStatusPending, config.JobStatusProcessing))
	require.NoError(t, repo.Transition(ctx, j.ID, config.JobStatusProcessing, config.JobStatusCompleted))

	err := repo.Transition(ctx, j.ID, config.JobStatusCompleted, config.JobStatusProcessing)
	assert.ErrorIs(t, err, job.ErrInvalidTransition)
}

func TestJobRepository_IncrementAttempts(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	j := newPendingJob(t, repo)

	require.NoError(t, repo.IncrementAttempts(ctx, j.ID))
	require.NoError(t, repo.IncrementAttempts(ctx, j.ID))

	got, err := repo.Get(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Attempts)
}

func TestJobRepository_SaveResult(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	j := newPendingJob(t, repo)

	err := repo.SaveResult(ctx, j.ID, datatypes.JSON([]byte(`{"chunks":10}`)), "")
	require.NoError(t, err)

	got, err := repo.Get(ctx, j.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"chunks":10}`, string(got.Result))
	assert.Empty(t, got.Error)

	err = repo.SaveResult(ctx, j.ID, nil, "boom")
	require.NoError(t, err)

	got, err = repo.Get(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, "boom", got.Error)
}

func TestJobRepository_ListByUser(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	newPendingJob(t, repo)
	newPendingJob(t, repo)

	other := &models.Job{
		UserID: "user2",
		Type:   string(config.JobTypeContentScrape),
		Status: string(config.JobStatusPending),
	}
	require.NoError(t, repo.Create(ctx, other))

	jobs, err := repo.ListByUser(ctx, "user1")
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	jobs, err = repo.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, jobs)
}
