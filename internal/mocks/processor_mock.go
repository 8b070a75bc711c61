package mocks

import (
	"context"

	"github.com/lumahq/dispatch/internal/dispatcher"
	"github.com/stretchr/testify/mock"
)

type ProcessorMock struct {
	mock.Mock
}

func (m *ProcessorMock) ProcessOne(ctx context.Context) (*dispatcher.Outcome, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dispatcher.Outcome), args.Error(1)
}

func (m *ProcessorMock) QueueStats(ctx context.Context) (dispatcher.QueueStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(dispatcher.QueueStats), args.Error(1)
}
