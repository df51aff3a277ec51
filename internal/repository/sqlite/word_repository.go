package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/lexiflash/internal/logger"
	"github.com/vytor/lexiflash/internal/models"
	"github.com/vytor/lexiflash/internal/repository"
)

var wordColumns = []string{
	"id", "user_id", "english", "italian", "category", "chapter",
	"sentences", "synonyms", "antonyms", "notes", "learned", "difficult",
	"times_shown", "times_correct", "times_incorrect", "average_response_time_ms",
	"last_shown", "created_at", "updated_at",
}

var wordOrderColumns = map[string]bool{
	"english": true, "italian": true, "created_at": true, "updated_at": true, "chapter": true,
	"category": true, "times_shown": true, "average_response_time_ms": true,
}

type wordRepository struct {
	db *sql.DB
}

// NewWordRepository creates a new WordRepository implementation
func NewWordRepository(db *sql.DB) repository.WordRepository {
	return &wordRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWord(row rowScanner) (models.Word, error) {
	var w models.Word
	var sentences, synonyms, antonyms string
	var lastShown sql.NullTime
	err := row.Scan(&w.ID, &w.UserID, &w.English, &w.Italian, &w.Category, &w.Chapter,
		&sentences, &synonyms, &antonyms, &w.Notes, &w.Learned, &w.Difficult,
		&w.TimesShown, &w.TimesCorrect, &w.TimesIncorrect, &w.AverageResponseTimeMs,
		&lastShown, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return w, err
	}
	for _, f := range []struct {
		data string
		dest *[]string
	}{{sentences, &w.Sentences}, {synonyms, &w.Synonyms}, {antonyms, &w.Antonyms}} {
		if err := decode(f.data, f.dest); err != nil {
			return w, err
		}
	}
	if lastShown.Valid {
		t := lastShown.Time.UTC()
		w.LastShown = &t
	}
	w.CreatedAt = utc(w.CreatedAt)
	w.UpdatedAt = utc(w.UpdatedAt)
	return w, nil
}

func wordArgs(w models.Word) ([]any, error) {
	lists := make([]string, 3)
	for i, l := range [][]string{w.Sentences, w.Synonyms, w.Antonyms} {
		if l == nil {
			l = []string{}
		}
		data, err := encode(l)
		if err != nil {
			return nil, err
		}
		lists[i] = data
	}
	return []any{
		w.ID, w.UserID, w.English, w.Italian, w.Category, w.Chapter,
		lists[0], lists[1], lists[2], w.Notes, w.Learned, w.Difficult,
		w.TimesShown, w.TimesCorrect, w.TimesIncorrect, w.AverageResponseTimeMs,
		nullTime(w.LastShown), utc(w.CreatedAt), utc(w.UpdatedAt),
	}, nil
}

func (r *wordRepository) Get(ctx context.Context, userID models.UserID, id models.WordID) (*models.Word, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("getting word: user_id=%s, id=%s", userID, id)

	query, args, err := sqlBuilder.Select(wordColumns...).From("words").
		Where(squirrel.Eq{"user_id": userID, "id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	w, err := scanWord(conn(ctx, r.db).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("word not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get word: %v", err)
		return nil, err
	}
	return &w, nil
}

func (r *wordRepository) ListByUser(ctx context.Context, userID models.UserID) ([]models.Word, error) {
	return r.List(ctx, models.WordFilter{UserID: userID})
}

func (r *wordRepository) List(ctx context.Context, filter models.WordFilter) ([]models.Word, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("listing words: user_id=%s, chapters=%v, categories=%v, search=%q",
		filter.UserID, filter.Chapters, filter.Categories, filter.Search)

	query := sqlBuilder.Select(wordColumns...).From("words").
		Where(squirrel.Eq{"user_id": filter.UserID})

	if len(filter.Chapters) > 0 {
		query = query.Where(squirrel.Eq{"chapter": filter.Chapters})
	}
	if len(filter.Categories) > 0 {
		query = query.Where(squirrel.Eq{"category": filter.Categories})
	}
	if filter.Learned != nil {
		query = query.Where(squirrel.Eq{"learned": *filter.Learned})
	}
	if filter.Difficult != nil {
		query = query.Where(squirrel.Eq{"difficult": *filter.Difficult})
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + s + "%"
		query = query.Where(squirrel.Or{
			squirrel.Like{"english": pattern},
			squirrel.Like{"italian": pattern},
		})
	}

	// Safe ORDER BY with validation
	orderBy := "created_at"
	if wordOrderColumns[filter.OrderBy] {
		orderBy = filter.OrderBy
	}
	orderDir := "ASC"
	if strings.EqualFold(filter.OrderDir, "DESC") {
		orderDir = "DESC"
	}
	query = query.OrderBy(orderBy+" "+orderDir, "id ASC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	rows, err := conn(ctx, r.db).QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list words: %v", err)
		return nil, err
	}
	defer rows.Close()

	words := []models.Word{}
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			log.Error("failed to scan word row: %v", err)
			return nil, err
		}
		words = append(words, w)
	}
	log.Debug("found %d words", len(words))
	return words, rows.Err()
}

func (r *wordRepository) Create(ctx context.Context, w models.Word) error {
	return r.CreateBatch(ctx, []models.Word{w})
}

// insertBatchSize keeps a multi-row insert well under SQLite's bound
// parameter limit.
const insertBatchSize = 200

func (r *wordRepository) CreateBatch(ctx context.Context, words []models.Word) error {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	if len(words) == 0 {
		return nil
	}
	log.Debug("inserting %d words: user_id=%s", len(words), words[0].UserID)

	for start := 0; start < len(words); start += insertBatchSize {
		end := min(start+insertBatchSize, len(words))
		query := sqlBuilder.Insert("words").Columns(wordColumns...)
		for _, w := range words[start:end] {
			args, err := wordArgs(w)
			if err != nil {
				return err
			}
			query = query.Values(args...)
		}
		sqlStr, args, err := query.ToSql()
		if err != nil {
			log.Error("failed to build insert: %v", err)
			return err
		}
		if _, err := conn(ctx, r.db).ExecContext(ctx, sqlStr, args...); err != nil {
			log.Error("failed to insert words: %v", err)
			return err
		}
	}
	return nil
}

func (r *wordRepository) Update(ctx context.Context, w models.Word) error {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("updating word: id=%s", w.ID)

	args, err := wordArgs(w)
	if err != nil {
		return err
	}
	set := map[string]any{}
	for i, col := range wordColumns {
		if col == "id" || col == "user_id" || col == "created_at" {
			continue
		}
		set[col] = args[i]
	}
	sqlStr, sqlArgs, err := sqlBuilder.Update("words").SetMap(set).
		Where(squirrel.Eq{"id": w.ID, "user_id": w.UserID}).ToSql()
	if err != nil {
		return err
	}
	res, err := conn(ctx, r.db).ExecContext(ctx, sqlStr, sqlArgs...)
	if err != nil {
		log.Error("failed to update word: %v", err)
		return err
	}
	return affected(res)
}

func (r *wordRepository) Delete(ctx context.Context, userID models.UserID, id models.WordID) error {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("deleting word: user_id=%s, id=%s", userID, id)

	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM words WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		log.Error("failed to delete word: %v", err)
		return err
	}
	return affected(res)
}

// IncrementPerformance bumps the word's counters in place; the running
// average is updated as an incremental mean.
func (r *wordRepository) IncrementPerformance(ctx context.Context, userID models.UserID, id models.WordID, isCorrect bool, responseTimeMs int64, at time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("incrementing word performance: id=%s, correct=%t, time_ms=%d", id, isCorrect, responseTimeMs)

	correct, incorrect := 0, 1
	if isCorrect {
		correct, incorrect = 1, 0
	}
	res, err := conn(ctx, r.db).ExecContext(ctx, `
UPDATE words
SET times_shown = times_shown + 1,
    times_correct = times_correct + ?,
    times_incorrect = times_incorrect + ?,
    average_response_time_ms = average_response_time_ms + (? - average_response_time_ms) / (times_shown + 1),
    last_shown = ?,
    updated_at = ?
WHERE user_id = ? AND id = ?
`, correct, incorrect, float64(responseTimeMs), at.UTC(), at.UTC(), userID, id)
	if err != nil {
		log.Error("failed to increment word performance: %v", err)
		return err
	}
	return affected(res)
}

func (r *wordRepository) Chapters(ctx context.Context, userID models.UserID) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("listing chapters: user_id=%s", userID)

	rows, err := conn(ctx, r.db).QueryContext(ctx, `
SELECT DISTINCT chapter FROM words
WHERE user_id = ? AND chapter != ''
ORDER BY chapter
`, userID)
	if err != nil {
		log.Error("failed to list chapters: %v", err)
		return nil, err
	}
	defer rows.Close()
	chapters := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		chapters = append(chapters, c)
	}
	return chapters, rows.Err()
}

func (r *wordRepository) DeleteAllForUser(ctx context.Context, userID models.UserID) error {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("deleting all words: user_id=%s", userID)

	_, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM words WHERE user_id = ?`, userID)
	if err != nil {
		log.Error("failed to delete words: %v", err)
	}
	return err
}
