package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vytor/lexiflash/internal/models"
)

// ErrNotFound is returned by updates and deletes that matched no row.
var ErrNotFound = errors.New("record not found")

// Transactor runs fn inside one store transaction. Repositories called with
// the ctx handed to fn take part in it; nested calls reuse the outer one.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// WordRepository handles word data access
type WordRepository interface {
	Get(ctx context.Context, userID models.UserID, id models.WordID) (*models.Word, error)
	ListByUser(ctx context.Context, userID models.UserID) ([]models.Word, error)
	List(ctx context.Context, filter models.WordFilter) ([]models.Word, error)
	Create(ctx context.Context, word models.Word) error
	CreateBatch(ctx context.Context, words []models.Word) error
	Update(ctx context.Context, word models.Word) error
	Delete(ctx context.Context, userID models.UserID, id models.WordID) error
	IncrementPerformance(ctx context.Context, userID models.UserID, id models.WordID, isCorrect bool, responseTimeMs int64, at time.Time) error
	Chapters(ctx context.Context, userID models.UserID) ([]string, error)
	DeleteAllForUser(ctx context.Context, userID models.UserID) error
}

// TestRepository is append-only: completed tests are never updated.
type TestRepository interface {
	Create(ctx context.Context, test models.Test) error
	Get(ctx context.Context, userID models.UserID, id models.TestID) (*models.Test, error)
	// ListByUser returns newest first; limit <= 0 means no limit.
	ListByUser(ctx context.Context, userID models.UserID, limit int) ([]models.Test, error)
	ListInRange(ctx context.Context, userID models.UserID, from, to time.Time) ([]models.Test, error)
	DeleteAllForUser(ctx context.Context, userID models.UserID) error
}

// StatsRepository stores the single Stats record of each user.
type StatsRepository interface {
	Get(ctx context.Context, userID models.UserID) (*models.Stats, error)
	GetOrCreate(ctx context.Context, userID models.UserID) (models.Stats, error)
	// Update succeeds only when the stored version still equals s.Version,
	// otherwise it returns errors.ErrVersionConflict. The returned record
	// carries the new version.
	Update(ctx context.Context, s models.Stats) (models.Stats, error)
	// Put replaces the record unconditionally.
	Put(ctx context.Context, s models.Stats) error
	ListUserIDs(ctx context.Context) ([]models.UserID, error)
	Delete(ctx context.Context, userID models.UserID) error
}

// PerformanceRepository handles per-word performance records
type PerformanceRepository interface {
	Get(ctx context.Context, userID models.UserID, wordID models.WordID) (*models.WordPerformance, error)
	ListByUser(ctx context.Context, userID models.UserID) ([]models.WordPerformance, error)
	Upsert(ctx context.Context, perf models.WordPerformance) error
	DeleteAllForUser(ctx context.Context, userID models.UserID) error
}
