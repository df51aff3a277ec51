package services

import (
	"context"
	stderrors "errors"
	"slices"
	"time"

	"github.com/vytor/lexiflash/internal/analytics"
	"github.com/vytor/lexiflash/internal/errors"
	"github.com/vytor/lexiflash/internal/logger"
	"github.com/vytor/lexiflash/internal/models"
	"github.com/vytor/lexiflash/internal/repository"
	"github.com/vytor/lexiflash/internal/stats"
)

// maxUpdateAttempts bounds the compare-and-retry loop on the stats record.
const maxUpdateAttempts = 3

// velocityWeeks is the window learning velocity is averaged over.
const velocityWeeks = 4

// Analysis is the analytics view of a user's progress.
type Analysis struct {
	models.CalculatedStats
	LearningVelocity  float64 `json:"learning_velocity"`
	OptimalTestLength int     `json:"optimal_test_length"`
}

// WordPerformanceView is a word's performance with its predicted next tier.
type WordPerformanceView struct {
	models.WordPerformance
	PredictedDifficulty models.Difficulty `json:"predicted_difficulty"`
}

// StatsService handles statistics-related business logic
type StatsService interface {
	HandleTestComplete(ctx context.Context, test models.Test) (*models.Stats, error)
	RecordWordPerformance(ctx context.Context, userID models.UserID, update models.WordPerformanceUpdate) (*models.WordPerformance, error)
	GetStats(ctx context.Context, userID models.UserID) (*models.Stats, error)
	GetWeeklyStats(ctx context.Context, userID models.UserID, weekOf time.Time) (*models.WeeklyStats, error)
	GetMonthlyStats(ctx context.Context, userID models.UserID, year int, month time.Month) (*models.MonthlyStats, error)
	CorrectDay(ctx context.Context, userID models.UserID, day models.DailyProgress) (*models.Stats, error)
	GetAnalysis(ctx context.Context, userID models.UserID) (*Analysis, error)
	GetWeakAreas(ctx context.Context, userID models.UserID, groupBy analytics.GroupBy) ([]analytics.WeakArea, error)
	GetRecommendations(ctx context.Context, userID models.UserID) ([]analytics.Recommendation, error)
	GetWordPerformance(ctx context.Context, userID models.UserID, wordID models.WordID) (*WordPerformanceView, error)
	ResetStats(ctx context.Context, userID models.UserID) error
	ClearHistory(ctx context.Context, userID models.UserID) error
	RefreshStats(ctx context.Context, userID models.UserID) error
	ListUserIDs(ctx context.Context) ([]models.UserID, error)
}

type statsService struct {
	tx         repository.Transactor
	statsRepo  repository.StatsRepository
	testRepo   repository.TestRepository
	wordRepo   repository.WordRepository
	perfRepo   repository.PerformanceRepository
	aggregator stats.Aggregator
	analyzer   analytics.Analyzer
	now        func() time.Time
}

// StatsDeps groups the collaborators of the stats service.
type StatsDeps struct {
	Tx         repository.Transactor
	Stats      repository.StatsRepository
	Tests      repository.TestRepository
	Words      repository.WordRepository
	Perf       repository.PerformanceRepository
	Aggregator stats.Aggregator
	Analyzer   analytics.Analyzer
	Now        func() time.Time
}

// NewStatsService creates a new StatsService
func NewStatsService(deps StatsDeps) StatsService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &statsService{
		tx:         deps.Tx,
		statsRepo:  deps.Stats,
		testRepo:   deps.Tests,
		wordRepo:   deps.Words,
		perfRepo:   deps.Perf,
		aggregator: deps.Aggregator,
		analyzer:   deps.Analyzer,
		now:        now,
	}
}

// updateStats runs fn against the current stats record inside a transaction
// and retries when another writer bumped the version in between.
func (s *statsService) updateStats(ctx context.Context, userID models.UserID, fn func(ctx context.Context, st models.Stats) (models.Stats, bool, error)) (models.Stats, error) {
	log := logger.FromContext(ctx)

	var result models.Stats
	for attempt := 1; ; attempt++ {
		err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
			st, err := s.statsRepo.GetOrCreate(ctx, userID)
			if err != nil {
				return err
			}
			updated, changed, err := fn(ctx, st)
			if err != nil {
				return err
			}
			if !changed {
				result = st
				return nil
			}
			result, err = s.statsRepo.Update(ctx, updated)
			return err
		})
		if err == nil {
			return result, nil
		}
		if stderrors.Is(err, errors.ErrVersionConflict) && attempt < maxUpdateAttempts {
			log.Warn("stats changed concurrently, retrying: user_id=%s, attempt=%d", userID, attempt)
			continue
		}
		return models.Stats{}, err
	}
}

func (s *statsService) recordWord(ctx context.Context, userID models.UserID, u models.WordPerformanceUpdate, at time.Time) (models.WordPerformance, error) {
	log := logger.FromContext(ctx)

	current, err := s.perfRepo.Get(ctx, userID, u.WordID)
	if err != nil {
		return models.WordPerformance{}, err
	}
	p := models.WordPerformance{UserID: userID}
	if current != nil {
		p = *current
	}
	p = stats.RecordWordPerformance(p, u, at)
	p.UserID = userID
	if err := s.perfRepo.Upsert(ctx, p); err != nil {
		return models.WordPerformance{}, err
	}

	err = s.wordRepo.IncrementPerformance(ctx, userID, u.WordID, u.IsCorrect, u.TimeSpent.Milliseconds(), at)
	if stderrors.Is(err, repository.ErrNotFound) {
		log.Warn("word no longer exists, only its performance was recorded: word_id=%s", u.WordID)
		err = nil
	}
	return p, err
}

// HandleTestComplete persists a completed test and folds it into the user's
// stats and word performance in one transaction. Completing the same test
// twice changes nothing.
func (s *statsService) HandleTestComplete(ctx context.Context, test models.Test) (*models.Stats, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{"user_id": test.UserID, "test_id": test.ID})
	log.Debug("handling test completion: total=%d, correct=%d", test.TotalWords, test.CorrectWords)

	if err := requireUser(test.UserID); err != nil {
		return nil, err
	}
	if test.CorrectWords+test.IncorrectWords != test.TotalWords || test.Percentage < 0 || test.Percentage > 100 {
		return nil, errors.NewValidationError("test", "inconsistent totals")
	}

	st, err := s.updateStats(ctx, test.UserID, func(ctx context.Context, st models.Stats) (models.Stats, bool, error) {
		updated, applied := s.aggregator.ApplyTest(st, test)
		if !applied {
			log.Info("test already applied, skipping")
			return st, false, nil
		}
		stored, err := s.testRepo.Get(ctx, test.UserID, test.ID)
		if err != nil {
			return st, false, err
		}
		if stored == nil {
			if err := s.testRepo.Create(ctx, test); err != nil {
				return st, false, err
			}
		}
		for _, u := range stats.UpdatesFromTest(test) {
			if _, err := s.recordWord(ctx, test.UserID, u, test.Timestamp); err != nil {
				return st, false, err
			}
		}
		return updated, true, nil
	})
	if err != nil {
		log.Error("failed to apply test: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("test applied: total_tests=%d, streak=%d", st.TotalTests, st.CurrentStreak)
	return &st, nil
}

func (s *statsService) RecordWordPerformance(ctx context.Context, userID models.UserID, update models.WordPerformanceUpdate) (*models.WordPerformance, error) {
	log := logger.FromContext(ctx)
	log.Debug("recording word performance: user_id=%s, word_id=%s, correct=%t", userID, update.WordID, update.IsCorrect)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if update.WordID == "" {
		return nil, errors.NewValidationError("word_id", "must not be empty")
	}
	var p models.WordPerformance
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.recordWord(ctx, userID, update, s.now().UTC())
		return err
	})
	if err != nil {
		log.Error("failed to record word performance: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return &p, nil
}

func (s *statsService) GetStats(ctx context.Context, userID models.UserID) (*models.Stats, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting stats: user_id=%s", userID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	st, err := s.statsRepo.GetOrCreate(ctx, userID)
	if err != nil {
		log.Error("failed to get stats: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return &st, nil
}

func (s *statsService) GetWeeklyStats(ctx context.Context, userID models.UserID, weekOf time.Time) (*models.WeeklyStats, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting weekly stats: user_id=%s, week_of=%s", userID, weekOf.Format(models.DateLayout))

	st, err := s.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	weekly := s.aggregator.CalculateWeeklyStats(st.DailyProgress, weekOf)
	return &weekly, nil
}

func (s *statsService) GetMonthlyStats(ctx context.Context, userID models.UserID, year int, month time.Month) (*models.MonthlyStats, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting monthly stats: user_id=%s, month=%04d-%02d", userID, year, month)

	if month < time.January || month > time.December {
		return nil, errors.NewValidationError("month", "must be between 1 and 12")
	}
	st, err := s.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	monthly := s.aggregator.CalculateMonthlyStats(st.DailyProgress, year, month)
	return &monthly, nil
}

// CorrectDay overwrites one day of progress, e.g. after a manual fix.
func (s *statsService) CorrectDay(ctx context.Context, userID models.UserID, day models.DailyProgress) (*models.Stats, error) {
	log := logger.FromContext(ctx)
	log.Debug("correcting day: user_id=%s, date=%s", userID, day.Date)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if _, err := time.Parse(models.DateLayout, day.Date); err != nil {
		return nil, errors.NewValidationError("date", "must be YYYY-MM-DD")
	}
	if day.Tests < 0 || day.WordsStudied < 0 || day.CorrectAnswers < 0 || day.IncorrectAnswers < 0 || day.HintsUsed < 0 || day.TimeSpentMs < 0 {
		return nil, errors.NewValidationError("day", "counters must not be negative")
	}
	st, err := s.updateStats(ctx, userID, func(_ context.Context, st models.Stats) (models.Stats, bool, error) {
		return s.aggregator.CorrectDay(st, day), true, nil
	})
	if err != nil {
		log.Error("failed to correct day: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return &st, nil
}

func (s *statsService) GetAnalysis(ctx context.Context, userID models.UserID) (*Analysis, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting analysis: user_id=%s", userID)

	st, err := s.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	perf, err := s.perfRepo.ListByUser(ctx, userID)
	if err != nil {
		log.Error("failed to list word performance: %v", err)
		return nil, errors.NewInternalError(err)
	}
	now := s.now()
	return &Analysis{
		CalculatedStats:   s.analyzer.Calculate(*st, now),
		LearningVelocity:  s.analyzer.LearningVelocity(perf, now, velocityWeeks),
		OptimalTestLength: s.analyzer.RecommendOptimalTestLength(*st),
	}, nil
}

func (s *statsService) weakAreas(ctx context.Context, userID models.UserID, groupBy analytics.GroupBy) ([]analytics.WeakArea, []models.WordPerformance, error) {
	words, err := s.wordRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	perf, err := s.perfRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return analytics.AnalyzeWeakAreas(words, repository.PerformanceIndex(perf), groupBy), perf, nil
}

func (s *statsService) GetWeakAreas(ctx context.Context, userID models.UserID, groupBy analytics.GroupBy) ([]analytics.WeakArea, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting weak areas: user_id=%s, group_by=%s", userID, groupBy)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if groupBy == "" {
		groupBy = analytics.GroupByChapter
	}
	if !groupBy.Valid() {
		return nil, errors.NewValidationError("group_by", "must be chapter or category")
	}
	areas, _, err := s.weakAreas(ctx, userID, groupBy)
	if err != nil {
		log.Error("failed to analyze weak areas: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return areas, nil
}

func (s *statsService) GetRecommendations(ctx context.Context, userID models.UserID) ([]analytics.Recommendation, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting recommendations: user_id=%s", userID)

	st, err := s.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	areas, perf, err := s.weakAreas(ctx, userID, analytics.GroupByChapter)
	if err != nil {
		log.Error("failed to analyze weak areas: %v", err)
		return nil, errors.NewInternalError(err)
	}
	recs := s.analyzer.StudyRecommendations(*st, areas, perf, s.now())
	if recs == nil {
		recs = []analytics.Recommendation{}
	}
	return recs, nil
}

func (s *statsService) GetWordPerformance(ctx context.Context, userID models.UserID, wordID models.WordID) (*WordPerformanceView, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting word performance: user_id=%s, word_id=%s", userID, wordID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	p, err := s.perfRepo.Get(ctx, userID, wordID)
	if err != nil {
		log.Error("failed to get word performance: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if p == nil {
		return nil, errors.NewNotFoundError("word performance", wordID)
	}
	return &WordPerformanceView{WordPerformance: *p, PredictedDifficulty: analytics.PredictNextDifficulty(*p)}, nil
}

// ResetStats empties the aggregate but keeps tests and word data.
func (s *statsService) ResetStats(ctx context.Context, userID models.UserID) error {
	log := logger.FromContext(ctx)
	log.Info("resetting stats: user_id=%s", userID)

	if err := requireUser(userID); err != nil {
		return err
	}
	_, err := s.updateStats(ctx, userID, func(_ context.Context, st models.Stats) (models.Stats, bool, error) {
		return stats.Reset(st), true, nil
	})
	if err != nil {
		log.Error("failed to reset stats: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

// ClearHistory deletes every test and word performance record and resets
// the aggregate. Words are kept.
func (s *statsService) ClearHistory(ctx context.Context, userID models.UserID) error {
	log := logger.FromContext(ctx)
	log.Info("clearing history: user_id=%s", userID)

	if err := requireUser(userID); err != nil {
		return err
	}
	_, err := s.updateStats(ctx, userID, func(ctx context.Context, st models.Stats) (models.Stats, bool, error) {
		if err := s.testRepo.DeleteAllForUser(ctx, userID); err != nil {
			return st, false, err
		}
		if err := s.perfRepo.DeleteAllForUser(ctx, userID); err != nil {
			return st, false, err
		}
		return stats.Reset(st), true, nil
	})
	if err != nil {
		log.Error("failed to clear history: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

// RefreshStats expires a lapsed streak and rebuilds the rollups. It is the
// nightly maintenance step for one user.
func (s *statsService) RefreshStats(ctx context.Context, userID models.UserID) error {
	log := logger.FromContext(ctx)
	log.Debug("refreshing stats: user_id=%s", userID)

	now := s.now()
	_, err := s.updateStats(ctx, userID, func(_ context.Context, st models.Stats) (models.Stats, bool, error) {
		expired, changed := s.aggregator.ExpireStreak(st, now)
		if changed {
			log.Info("streak expired: user_id=%s", userID)
		}
		rebuilt := s.aggregator.RebuildRollups(expired)
		if !slices.Equal(rebuilt.WeeklyStats, st.WeeklyStats) || !slices.Equal(rebuilt.MonthlyStats, st.MonthlyStats) {
			changed = true
		}
		return rebuilt, changed, nil
	})
	if err != nil {
		log.Error("failed to refresh stats: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *statsService) ListUserIDs(ctx context.Context) ([]models.UserID, error) {
	ids, err := s.statsRepo.ListUserIDs(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list users: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return ids, nil
}
