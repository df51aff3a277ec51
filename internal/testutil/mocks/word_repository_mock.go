package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/lexiflash/internal/models"
)

// MockWordRepository is a mock implementation of repository.WordRepository
type MockWordRepository struct {
	mock.Mock
}

func (m *MockWordRepository) Get(ctx context.Context, userID models.UserID, id models.WordID) (*models.Word, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Word), args.Error(1)
}

func (m *MockWordRepository) ListByUser(ctx context.Context, userID models.UserID) ([]models.Word, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Word), args.Error(1)
}

func (m *MockWordRepository) List(ctx context.Context, filter models.WordFilter) ([]models.Word, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Word), args.Error(1)
}

func (m *MockWordRepository) Create(ctx context.Context, word models.Word) error {
	args := m.Called(ctx, word)
	return args.Error(0)
}

func (m *MockWordRepository) CreateBatch(ctx context.Context, words []models.Word) error {
	args := m.Called(ctx, words)
	return args.Error(0)
}

func (m *MockWordRepository) Update(ctx context.Context, word models.Word) error {
	args := m.Called(ctx, word)
	return args.Error(0)
}

func (m *MockWordRepository) Delete(ctx context.Context, userID models.UserID, id models.WordID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockWordRepository) IncrementPerformance(ctx context.Context, userID models.UserID, id models.WordID, isCorrect bool, responseTimeMs int64, at time.Time) error {
	args := m.Called(ctx, userID, id, isCorrect, responseTimeMs, at)
	return args.Error(0)
}

func (m *MockWordRepository) Chapters(ctx context.Context, userID models.UserID) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockWordRepository) DeleteAllForUser(ctx context.Context, userID models.UserID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
