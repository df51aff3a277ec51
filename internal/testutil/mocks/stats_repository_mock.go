package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/lexiflash/internal/models"
)

// MockStatsRepository is a mock implementation of repository.StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) Get(ctx context.Context, userID models.UserID) (*models.Stats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Stats), args.Error(1)
}

func (m *MockStatsRepository) GetOrCreate(ctx context.Context, userID models.UserID) (models.Stats, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.Stats), args.Error(1)
}

func (m *MockStatsRepository) Update(ctx context.Context, s models.Stats) (models.Stats, error) {
	args := m.Called(ctx, s)
	return args.Get(0).(models.Stats), args.Error(1)
}

func (m *MockStatsRepository) Put(ctx context.Context, s models.Stats) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStatsRepository) ListUserIDs(ctx context.Context) ([]models.UserID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserID), args.Error(1)
}

func (m *MockStatsRepository) Delete(ctx context.Context, userID models.UserID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
