package mocks

import (
	"context"

	"github.com/lumahq/dispatch/internal/config"
	"github.com/lumahq/dispatch/internal/models"
	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"
)

type JobRepoMock struct {
	mock.Mock
}

func (m *JobRepoMock) Create(ctx context.Context, j *models.Job) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *JobRepoMock) Get(ctx context.Context, id uint) (*models.Job, error) {
	args := m.Called(ctx, id)

	j, _ := args.Get(0).(*models.Job)
	return j, args.Error(1)
}

func (m *JobRepoMock) Transition(ctx context.Context, id uint, from, to config.JobStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *JobRepoMock) IncrementAttempts(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *JobRepoMock) SaveResult(
	ctx context.Context,
	id uint,
	result datatypes.JSON,
	errMsg string,
) error {
	args := m.Called(ctx, id, result, errMsg)
	return args.Error(0)
}

func (m *JobRepoMock) ListByUser(ctx context.Context, userID string) ([]models.Job, error) {
	args := m.Called(ctx, userID)

	jobs, _ := args.Get(0).([]models.Job)
	return jobs, args.Error(1)
}
