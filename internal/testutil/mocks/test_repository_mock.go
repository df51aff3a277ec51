package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/lexiflash/internal/models"
)

// MockTestRepository is a mock implementation of repository.TestRepository
type MockTestRepository struct {
	mock.Mock
}

func (m *MockTestRepository) Create(ctx context.Context, test models.Test) error {
	args := m.Called(ctx, test)
	return args.Error(0)
}

func (m *MockTestRepository) Get(ctx context.Context, userID models.UserID, id models.TestID) (*models.Test, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Test), args.Error(1)
}

func (m *MockTestRepository) ListByUser(ctx context.Context, userID models.UserID, limit int) ([]models.Test, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Test), args.Error(1)
}

func (m *MockTestRepository) ListInRange(ctx context.Context, userID models.UserID, from, to time.Time) ([]models.Test, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Test), args.Error(1)
}

func (m *MockTestRepository) DeleteAllForUser(ctx context.Context, userID models.UserID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
