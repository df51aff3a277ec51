package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/lexiflash/internal/logger"
	"github.com/vytor/lexiflash/internal/models"
	"github.com/vytor/lexiflash/internal/repository"
)

type performanceRepository struct {
	db *sql.DB
}

// NewPerformanceRepository creates a new PerformanceRepository implementation
func NewPerformanceRepository(db *sql.DB) repository.PerformanceRepository {
	return &performanceRepository{db: db}
}

func decodePerformance(data string) (models.WordPerformance, error) {
	var p models.WordPerformance
	if err := decode(data, &p); err != nil {
		return p, err
	}
	if p.PerformanceByContext == nil {
		p.PerformanceByContext = map[string]models.ContextPerformance{}
	}
	return p, nil
}

func (r *performanceRepository) Get(ctx context.Context, userID models.UserID, wordID models.WordID) (*models.WordPerformance, error) {
	log := logger.FromContext(ctx).WithPrefix("performance_repo")
	log.Debug("getting word performance: user_id=%s, word_id=%s", userID, wordID)

	var data string
	err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT data FROM word_performance WHERE user_id = ? AND word_id = ?`, userID, wordID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get word performance: %v", err)
		return nil, err
	}
	p, err := decodePerformance(data)
	if err != nil {
		log.Error("failed to decode word performance: %v", err)
		return nil, err
	}
	return &p, nil
}

func (r *performanceRepository) ListByUser(ctx context.Context, userID models.UserID) ([]models.WordPerformance, error) {
	log := logger.FromContext(ctx).WithPrefix("performance_repo")
	log.Debug("listing word performance: user_id=%s", userID)

	rows, err := conn(ctx, r.db).QueryContext(ctx, `SELECT data FROM word_performance WHERE user_id = ? ORDER BY word_id`, userID)
	if err != nil {
		log.Error("failed to list word performance: %v", err)
		return nil, err
	}
	defer rows.Close()
	out := []models.WordPerformance{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		p, err := decodePerformance(data)
		if err != nil {
			log.Error("failed to decode word performance: %v", err)
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *performanceRepository) Upsert(ctx context.Context, p models.WordPerformance) error {
	log := logger.FromContext(ctx).WithPrefix("performance_repo")
	log.Debug("upserting word performance: word_id=%s, mastery=%d", p.WordID, p.MasteryLevel)

	p.FirstShown = utc(p.FirstShown)
	p.LastShown = utc(p.LastShown)
	p.LastCorrect = utcPtr(p.LastCorrect)
	p.LastIncorrect = utcPtr(p.LastIncorrect)
	contexts := make(map[string]models.ContextPerformance, len(p.PerformanceByContext))
	for k, c := range p.PerformanceByContext {
		c.LastShown = utc(c.LastShown)
		contexts[k] = c
	}
	p.PerformanceByContext = contexts
	data, err := encode(p)
	if err != nil {
		return err
	}
	_, err = conn(ctx, r.db).ExecContext(ctx, `
INSERT INTO word_performance (user_id, word_id, mastery_level, difficulty, last_shown, data)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, word_id) DO UPDATE SET
    mastery_level = excluded.mastery_level,
    difficulty = excluded.difficulty,
    last_shown = excluded.last_shown,
    data = excluded.data
`, p.UserID, p.WordID, p.MasteryLevel, p.Difficulty, p.LastShown, data)
	if err != nil {
		log.Error("failed to upsert word performance: %v", err)
	}
	return err
}

func (r *performanceRepository) DeleteAllForUser(ctx context.Context, userID models.UserID) error {
	log := logger.FromContext(ctx).WithPrefix("performance_repo")
	log.Debug("deleting word performance: user_id=%s", userID)

	_, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM word_performance WHERE user_id = ?`, userID)
	if err != nil {
		log.Error("failed to delete word performance: %v", err)
	}
	return err
}
