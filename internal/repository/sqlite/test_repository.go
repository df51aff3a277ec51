package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/lexiflash/internal/logger"
	"github.com/vytor/lexiflash/internal/models"
	"github.com/vytor/lexiflash/internal/repository"
)

type testRepository struct {
	db *sql.DB
}

// NewTestRepository creates a new TestRepository implementation
func NewTestRepository(db *sql.DB) repository.TestRepository {
	return &testRepository{db: db}
}

func normalizeTest(t models.Test) models.Test {
	t.Timestamp = utc(t.Timestamp)
	t.CreatedAt = utc(t.CreatedAt)
	if t.WrongWords == nil {
		t.WrongWords = []models.TestWordResult{}
	}
	if t.RightWords == nil {
		t.RightWords = []models.TestWordResult{}
	}
	return t
}

func (r *testRepository) Create(ctx context.Context, t models.Test) error {
	log := logger.FromContext(ctx).WithPrefix("test_repo")
	log.Debug("inserting test: id=%s, user_id=%s, total=%d", t.ID, t.UserID, t.TotalWords)

	t = normalizeTest(t)
	data, err := encode(t)
	if err != nil {
		return err
	}
	_, err = conn(ctx, r.db).ExecContext(ctx, `
INSERT INTO tests (id, user_id, timestamp, type, total_words, correct_words, incorrect_words, percentage, difficulty, hints_used, data, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, t.ID, t.UserID, t.Timestamp, t.Type, t.TotalWords, t.CorrectWords, t.IncorrectWords, t.Percentage, t.Difficulty, t.HintsUsed, data, t.CreatedAt)
	if err != nil {
		log.Error("failed to insert test: %v", err)
	}
	return err
}

func (r *testRepository) Get(ctx context.Context, userID models.UserID, id models.TestID) (*models.Test, error) {
	log := logger.FromContext(ctx).WithPrefix("test_repo")
	log.Debug("getting test: user_id=%s, id=%s", userID, id)

	var data string
	err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT data FROM tests WHERE user_id = ? AND id = ?`, userID, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("test not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get test: %v", err)
		return nil, err
	}
	var t models.Test
	if err := decode(data, &t); err != nil {
		log.Error("failed to decode test: %v", err)
		return nil, err
	}
	return &t, nil
}

func (r *testRepository) ListByUser(ctx context.Context, userID models.UserID, limit int) ([]models.Test, error) {
	log := logger.FromContext(ctx).WithPrefix("test_repo")
	log.Debug("listing tests: user_id=%s, limit=%d", userID, limit)

	query := sqlBuilder.Select("data").From("tests").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("timestamp DESC", "id DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	return r.query(ctx, query)
}

func (r *testRepository) ListInRange(ctx context.Context, userID models.UserID, from, to time.Time) ([]models.Test, error) {
	log := logger.FromContext(ctx).WithPrefix("test_repo")
	log.Debug("listing tests in range: user_id=%s, from=%s, to=%s", userID, from.Format(time.RFC3339), to.Format(time.RFC3339))

	query := sqlBuilder.Select("data").From("tests").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.GtOrEq{"timestamp": from.UTC()}).
		Where(squirrel.Lt{"timestamp": to.UTC()}).
		OrderBy("timestamp ASC", "id ASC")
	return r.query(ctx, query)
}

func (r *testRepository) query(ctx context.Context, query squirrel.SelectBuilder) ([]models.Test, error) {
	log := logger.FromContext(ctx).WithPrefix("test_repo")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	rows, err := conn(ctx, r.db).QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list tests: %v", err)
		return nil, err
	}
	defer rows.Close()

	tests := []models.Test{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			log.Error("failed to scan test row: %v", err)
			return nil, err
		}
		var t models.Test
		if err := decode(data, &t); err != nil {
			log.Error("failed to decode test: %v", err)
			return nil, err
		}
		tests = append(tests, t)
	}
	log.Debug("found %d tests", len(tests))
	return tests, rows.Err()
}

func (r *testRepository) DeleteAllForUser(ctx context.Context, userID models.UserID) error {
	log := logger.FromContext(ctx).WithPrefix("test_repo")
	log.Debug("deleting all tests: user_id=%s", userID)

	_, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM tests WHERE user_id = ?`, userID)
	if err != nil {
		log.Error("failed to delete tests: %v", err)
	}
	return err
}
