package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/lexiflash/internal/models"
)

// MockPerformanceRepository is a mock implementation of repository.PerformanceRepository
type MockPerformanceRepository struct {
	mock.Mock
}

func (m *MockPerformanceRepository) Get(ctx context.Context, userID models.UserID, wordID models.WordID) (*models.WordPerformance, error) {
	args := m.Called(ctx, userID, wordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WordPerformance), args.Error(1)
}

func (m *MockPerformanceRepository) ListByUser(ctx context.Context, userID models.UserID) ([]models.WordPerformance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WordPerformance), args.Error(1)
}

func (m *MockPerformanceRepository) Upsert(ctx context.Context, perf models.WordPerformance) error {
	args := m.Called(ctx, perf)
	return args.Error(0)
}

func (m *MockPerformanceRepository) DeleteAllForUser(ctx context.Context, userID models.UserID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
