package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type TransportMock struct {
	mock.Mock
}

func (m *TransportMock) Enqueue(ctx context.Context, jobID uint, priority int) error {
	args := m.Called(ctx, jobID, priority)
	return args.Error(0)
}

func (m *TransportMock) Dequeue(ctx context.Context) (uint, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint), args.Error(1)
}

func (m *TransportMock) MarkProcessing(ctx context.Context, jobID uint) error {
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

func (m *TransportMock) RemoveProcessing(ctx context.Context, jobID uint) error {
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

func (m *TransportMock) QueueSize(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TransportMock) ProcessingCount(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TransportMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
