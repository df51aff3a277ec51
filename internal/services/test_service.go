package services

import (
	"context"
	"sync"
	"time"

	"github.com/vytor/lexiflash/internal/engine"
	"github.com/vytor/lexiflash/internal/errors"
	"github.com/vytor/lexiflash/internal/logger"
	"github.com/vytor/lexiflash/internal/models"
	"github.com/vytor/lexiflash/internal/repository"
)

// QuizWord is what a user sees of a word while the test runs. The
// translation stays hidden until the word is answered.
type QuizWord struct {
	ID        models.WordID   `json:"id"`
	English   string          `json:"english"`
	Category  models.Category `json:"category"`
	Chapter   string          `json:"chapter"`
	Sentences []string        `json:"sentences"`
}

// TestView is the state of an active test session.
type TestView struct {
	ID               models.TestID             `json:"id"`
	State            string                    `json:"state"`
	Config           models.TestConfig         `json:"config"`
	Words            []QuizWord                `json:"words"`
	Answered         int                       `json:"answered"`
	Analysis         models.DifficultyAnalysis `json:"difficulty_analysis"`
	AutoAdvanceDelay int64                     `json:"auto_advance_delay_ms"`
	CreatedAt        time.Time                 `json:"created_at"`
}

type AnswerResult struct {
	models.TestWordResult
	CorrectAnswer string               `json:"correct_answer"`
	ResponseClass engine.ResponseClass `json:"response_class"`
}

type HintResult struct {
	WordID    models.WordID `json:"word_id"`
	Hint      string        `json:"hint"`
	HintsUsed int           `json:"hints_used"`
	Remaining int           `json:"remaining"`
}

// TestService drives test sessions from generation to completion
type TestService interface {
	Generate(ctx context.Context, userID models.UserID, cfg models.TestConfig) (*TestView, error)
	Start(ctx context.Context, userID models.UserID, testID models.TestID) (*TestView, error)
	Answer(ctx context.Context, userID models.UserID, testID models.TestID, wordID models.WordID, answer string, responseTime time.Duration) (*AnswerResult, error)
	Hint(ctx context.Context, userID models.UserID, testID models.TestID, wordID models.WordID) (*HintResult, error)
	Complete(ctx context.Context, userID models.UserID, testID models.TestID) (*models.Test, error)
	GetTest(ctx context.Context, userID models.UserID, testID models.TestID) (*models.Test, error)
	ListTests(ctx context.Context, userID models.UserID, limit int) ([]models.Test, error)
}

// activeSession serialises every operation on one user's session.
type activeSession struct {
	mu        sync.Mutex
	session   *engine.Session
	persisted bool
}

type testService struct {
	engine   *engine.Engine
	wordRepo repository.WordRepository
	testRepo repository.TestRepository
	perfRepo repository.PerformanceRepository
	stats    StatsService

	mu       sync.Mutex
	sessions map[models.UserID]*activeSession
}

// NewTestService creates a new TestService
func NewTestService(eng *engine.Engine, wordRepo repository.WordRepository, testRepo repository.TestRepository, perfRepo repository.PerformanceRepository, statsService StatsService) TestService {
	return &testService{
		engine:   eng,
		wordRepo: wordRepo,
		testRepo: testRepo,
		perfRepo: perfRepo,
		stats:    statsService,
		sessions: make(map[models.UserID]*activeSession),
	}
}

func (s *testService) view(sess *engine.Session) *TestView {
	words := sess.Words()
	quiz := make([]QuizWord, len(words))
	for i, w := range words {
		quiz[i] = QuizWord{ID: w.ID, English: w.English, Category: w.Category, Chapter: w.Chapter, Sentences: w.Sentences}
	}
	return &TestView{
		ID:               sess.ID(),
		State:            sess.State().String(),
		Config:           sess.Config(),
		Words:            quiz,
		Answered:         sess.Answered(),
		Analysis:         sess.Analysis(),
		AutoAdvanceDelay: s.engine.Settings().AutoAdvanceDelay.Milliseconds(),
		CreatedAt:        sess.CreatedAt(),
	}
}

// withSession runs fn with the user's session locked. Unknown ids that were
// already stored report TestAlreadyCompleted, others TestNotFound.
func (s *testService) withSession(ctx context.Context, userID models.UserID, testID models.TestID, fn func(*activeSession) error) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	s.mu.Lock()
	active, ok := s.sessions[userID]
	s.mu.Unlock()

	if ok {
		active.mu.Lock()
		defer active.mu.Unlock()
		if active.session.ID() == testID {
			return fn(active)
		}
	}

	stored, err := s.testRepo.Get(ctx, userID, testID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to look up test: %v", err)
		return errors.NewInternalError(err)
	}
	if stored != nil {
		return errors.Wrap(errors.ErrTestAlreadyCompleted, "test %s already completed", testID)
	}
	return errors.Wrap(errors.ErrTestNotFound, "no active test %s", testID)
}

// Generate selects words for a new test and makes it the user's active
// session, replacing any unfinished one.
func (s *testService) Generate(ctx context.Context, userID models.UserID, cfg models.TestConfig) (*TestView, error) {
	log := logger.FromContext(ctx)
	log.Debug("generating test: user_id=%s, type=%s, chapters=%v, max_words=%d", userID, cfg.Type, cfg.SelectedChapters, cfg.MaxWords)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	words, err := s.wordRepo.ListByUser(ctx, userID)
	if err != nil {
		log.Error("failed to list words: %v", err)
		return nil, errors.NewInternalError(err)
	}
	now := s.engine.Now()
	history, err := s.testRepo.ListInRange(ctx, userID, now.Add(-s.engine.Settings().RecencyWindow), now.Add(time.Minute))
	if err != nil {
		log.Error("failed to list recent tests: %v", err)
		return nil, errors.NewInternalError(err)
	}
	perf, err := s.perfRepo.ListByUser(ctx, userID)
	if err != nil {
		log.Error("failed to list word performance: %v", err)
		return nil, errors.NewInternalError(err)
	}

	sess, err := s.engine.NewSession(userID, words, cfg, history, repository.PerformanceIndex(perf))
	if err != nil {
		log.Debug("test generation rejected: %v", err)
		return nil, err
	}

	active := &activeSession{session: sess}
	s.mu.Lock()
	if prev, ok := s.sessions[userID]; ok {
		log.Debug("replacing active test: test_id=%s", prev.session.ID())
	}
	s.sessions[userID] = active
	s.mu.Unlock()

	log.Info("generated test: test_id=%s, words=%d, difficulty=%s", sess.ID(), len(sess.Words()), sess.Analysis().Level)
	return s.view(sess), nil
}

func (s *testService) Start(ctx context.Context, userID models.UserID, testID models.TestID) (*TestView, error) {
	logger.FromContext(ctx).Debug("starting test: user_id=%s, test_id=%s", userID, testID)

	var v *TestView
	err := s.withSession(ctx, userID, testID, func(a *activeSession) error {
		if err := a.session.Start(); err != nil {
			return err
		}
		v = s.view(a.session)
		return nil
	})
	return v, err
}

func (s *testService) Answer(ctx context.Context, userID models.UserID, testID models.TestID, wordID models.WordID, answer string, responseTime time.Duration) (*AnswerResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("answering: user_id=%s, test_id=%s, word_id=%s", userID, testID, wordID)

	var res *AnswerResult
	err := s.withSession(ctx, userID, testID, func(a *activeSession) error {
		r, err := a.session.SubmitAnswer(wordID, answer, responseTime)
		if err != nil {
			return err
		}
		res = &AnswerResult{
			TestWordResult: r,
			CorrectAnswer:  r.TranslationText,
			ResponseClass:  s.engine.ClassifyResponseTime(responseTime),
		}
		return nil
	})
	if err == nil {
		log.Debug("answer recorded: correct=%t, class=%s", res.IsCorrect, res.ResponseClass)
	}
	return res, err
}

func (s *testService) Hint(ctx context.Context, userID models.UserID, testID models.TestID, wordID models.WordID) (*HintResult, error) {
	logger.FromContext(ctx).Debug("hint requested: user_id=%s, test_id=%s, word_id=%s", userID, testID, wordID)

	var res *HintResult
	err := s.withSession(ctx, userID, testID, func(a *activeSession) error {
		hint, err := a.session.UseHint(wordID)
		if err != nil {
			return err
		}
		used := a.session.HintsUsed(wordID)
		res = &HintResult{
			WordID:    wordID,
			Hint:      hint,
			HintsUsed: used,
			Remaining: max(s.engine.Settings().MaxHintsPerWord-used, 0),
		}
		return nil
	})
	return res, err
}

// Complete freezes the session and hands the test to the stats service.
// When persisting fails the frozen test is kept, so completing again
// retries the write instead of reporting TestAlreadyCompleted.
func (s *testService) Complete(ctx context.Context, userID models.UserID, testID models.TestID) (*models.Test, error) {
	log := logger.FromContext(ctx)
	log.Debug("completing test: user_id=%s, test_id=%s", userID, testID)

	var out *models.Test
	err := s.withSession(ctx, userID, testID, func(a *activeSession) error {
		test, frozen := a.session.Test()
		switch {
		case frozen && a.persisted:
			return errors.Wrap(errors.ErrTestAlreadyCompleted, "test %s already completed", testID)
		case !frozen:
			var err error
			if test, err = a.session.Complete(); err != nil {
				return err
			}
		default:
			log.Warn("retrying persistence of completed test: test_id=%s", testID)
		}

		if _, err := s.stats.HandleTestComplete(ctx, test); err != nil {
			return err
		}
		a.persisted = true
		out = &test
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("test completed: test_id=%s, percentage=%d, victory=%t", out.ID, out.Percentage, s.engine.IsVictory(out.Percentage))
	return out, nil
}

func (s *testService) GetTest(ctx context.Context, userID models.UserID, testID models.TestID) (*models.Test, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting test: user_id=%s, test_id=%s", userID, testID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	t, err := s.testRepo.Get(ctx, userID, testID)
	if err != nil {
		log.Error("failed to get test: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if t == nil {
		return nil, errors.Wrap(errors.ErrTestNotFound, "test %s not found", testID)
	}
	return t, nil
}

func (s *testService) ListTests(ctx context.Context, userID models.UserID, limit int) ([]models.Test, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing tests: user_id=%s, limit=%d", userID, limit)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, errors.NewValidationError("limit", "must not be negative")
	}
	tests, err := s.testRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		log.Error("failed to list tests: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return tests, nil
}
