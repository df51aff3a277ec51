package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperrors "github.com/vytor/lexiflash/internal/errors"
	"github.com/vytor/lexiflash/internal/logger"
	"github.com/vytor/lexiflash/internal/models"
	"github.com/vytor/lexiflash/internal/repository"
)

type statsRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewStatsRepository creates a new StatsRepository implementation
func NewStatsRepository(db *sql.DB) repository.StatsRepository {
	return &statsRepository{db: db, now: time.Now}
}

func normalizeStats(s models.Stats) models.Stats {
	s.FirstTestDate = utcPtr(s.FirstTestDate)
	s.LastTestDate = utcPtr(s.LastTestDate)
	s.LastActive = utcPtr(s.LastActive)
	s.CreatedAt = utc(s.CreatedAt)
	s.UpdatedAt = utc(s.UpdatedAt)
	if s.DailyProgress == nil {
		s.DailyProgress = map[string]models.DailyProgress{}
	}
	if s.WeeklyStats == nil {
		s.WeeklyStats = []models.WeeklyStats{}
	}
	if s.MonthlyStats == nil {
		s.MonthlyStats = []models.MonthlyStats{}
	}
	if s.AppliedTests == nil {
		s.AppliedTests = []models.TestID{}
	}
	return s
}

func (r *statsRepository) Get(ctx context.Context, userID models.UserID) (*models.Stats, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("getting stats: user_id=%s", userID)

	var data string
	var version int64
	err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT version, data FROM stats WHERE user_id = ?`, userID).Scan(&version, &data)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("stats not found: user_id=%s", userID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get stats: %v", err)
		return nil, err
	}
	var s models.Stats
	if err := decode(data, &s); err != nil {
		log.Error("failed to decode stats: %v", err)
		return nil, err
	}
	s.Version = version
	s = normalizeStats(s)
	return &s, nil
}

func (r *statsRepository) GetOrCreate(ctx context.Context, userID models.UserID) (models.Stats, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")

	existing, err := r.Get(ctx, userID)
	if err != nil {
		return models.Stats{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	log.Info("creating stats: user_id=%s", userID)
	s := models.NewStats(userID)
	s.CreatedAt = r.now().UTC()
	s.UpdatedAt = s.CreatedAt
	data, err := encode(s)
	if err != nil {
		return models.Stats{}, err
	}
	if _, err := conn(ctx, r.db).ExecContext(ctx, `
INSERT INTO stats (user_id, id, version, data, created_at, updated_at)
VALUES (?, ?, 0, ?, ?, ?)
ON CONFLICT(user_id) DO NOTHING
`, s.UserID, s.ID, data, s.CreatedAt, s.UpdatedAt); err != nil {
		log.Error("failed to create stats: %v", err)
		return models.Stats{}, err
	}

	// Another writer may have won the insert.
	created, err := r.Get(ctx, userID)
	if err != nil {
		return models.Stats{}, err
	}
	if created == nil {
		return models.Stats{}, repository.ErrNotFound
	}
	return *created, nil
}

func (r *statsRepository) Update(ctx context.Context, s models.Stats) (models.Stats, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("updating stats: user_id=%s, version=%d", s.UserID, s.Version)

	expected := s.Version
	s.Version++
	s.UpdatedAt = r.now().UTC()
	s = normalizeStats(s)
	data, err := encode(s)
	if err != nil {
		return models.Stats{}, err
	}
	res, err := conn(ctx, r.db).ExecContext(ctx, `
UPDATE stats SET version = ?, data = ?, updated_at = ?
WHERE user_id = ? AND version = ?
`, s.Version, data, s.UpdatedAt, s.UserID, expected)
	if err != nil {
		log.Error("failed to update stats: %v", err)
		return models.Stats{}, err
	}
	if err := affected(res); err != nil {
		log.Warn("stats version conflict: user_id=%s, expected_version=%d", s.UserID, expected)
		return models.Stats{}, apperrors.Wrap(apperrors.ErrVersionConflict, "stats of %s changed since version %d", s.UserID, expected)
	}
	return s, nil
}

func (r *statsRepository) Put(ctx context.Context, s models.Stats) error {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("replacing stats: user_id=%s", s.UserID)

	s = normalizeStats(s)
	if s.CreatedAt.IsZero() {
		s.CreatedAt = r.now().UTC()
	}
	s.UpdatedAt = r.now().UTC()
	data, err := encode(s)
	if err != nil {
		return err
	}
	_, err = conn(ctx, r.db).ExecContext(ctx, `
INSERT INTO stats (user_id, id, version, data, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
    id = excluded.id,
    version = stats.version + 1,
    data = excluded.data,
    updated_at = excluded.updated_at
`, s.UserID, s.ID, s.Version, data, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		log.Error("failed to replace stats: %v", err)
	}
	return err
}

func (r *statsRepository) ListUserIDs(ctx context.Context) ([]models.UserID, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")

	rows, err := conn(ctx, r.db).QueryContext(ctx, `SELECT user_id FROM stats ORDER BY user_id`)
	if err != nil {
		log.Error("failed to list users: %v", err)
		return nil, err
	}
	defer rows.Close()
	ids := []models.UserID{}
	for rows.Next() {
		var id models.UserID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	log.Debug("found %d users with stats", len(ids))
	return ids, rows.Err()
}

func (r *statsRepository) Delete(ctx context.Context, userID models.UserID) error {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("deleting stats: user_id=%s", userID)

	_, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM stats WHERE user_id = ?`, userID)
	if err != nil {
		log.Error("failed to delete stats: %v", err)
	}
	return err
}
