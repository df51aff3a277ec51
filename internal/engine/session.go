package engine

import (
	"sort"
	"time"

	"github.com/vytor/lexiflash/internal/errors"
	"github.com/vytor/lexiflash/internal/models"
)

// State of a test session. Sessions only move forward.
type State int

const (
	StateConfigured State = iota
	StateInProgress
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateConfigured:
		return "configured"
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Session is one quiz from generation to completion. It is not safe for
// concurrent use; callers serialise access per user.
type Session struct {
	id     models.TestID
	userID models.UserID
	config models.TestConfig
	engine *Engine

	words    []models.Word
	index    map[models.WordID]int
	perf     map[models.WordID]models.WordPerformance
	analysis models.DifficultyAnalysis

	state       State
	createdAt   time.Time
	startedAt   time.Time
	completedAt time.Time

	results  map[models.WordID]models.TestWordResult
	hints    map[models.WordID]int
	lastHint time.Time
	test     *models.Test
}

// NewSession selects the words for cfg out of the user's words and freezes
// their difficulty analysis. The session starts in StateConfigured.
func (e *Engine) NewSession(userID models.UserID, words []models.Word, cfg models.TestConfig, history []models.Test, perf map[models.WordID]models.WordPerformance) (*Session, error) {
	if !cfg.Type.Valid() {
		return nil, errors.NewValidationError("type", "must be complete, selective, review or difficult")
	}
	if cfg.MaxWords < 0 {
		return nil, errors.NewValidationError("max_words", "must not be negative")
	}
	if cfg.Type == models.TestTypeReview {
		// a review draws only learned words, so the stored config says so
		cfg.IncludeLearnedWords = true
	}
	ids, err := e.SelectWords(words, cfg, history, perf)
	if err != nil {
		return nil, err
	}

	byID := make(map[models.WordID]models.Word, len(words))
	for _, w := range words {
		if _, ok := byID[w.ID]; !ok {
			byID[w.ID] = w
		}
	}
	selected := make([]models.Word, 0, len(ids))
	index := make(map[models.WordID]int, len(ids))
	for i, id := range ids {
		selected = append(selected, byID[id])
		index[id] = i
	}
	if perf == nil {
		perf = map[models.WordID]models.WordPerformance{}
	}

	return &Session{
		id:        models.NewTestID(),
		userID:    userID,
		config:    cfg,
		engine:    e,
		words:     selected,
		index:     index,
		perf:      perf,
		analysis:  e.CalculateDifficulty(selected, perf),
		state:     StateConfigured,
		createdAt: e.now(),
		results:   make(map[models.WordID]models.TestWordResult, len(ids)),
		hints:     make(map[models.WordID]int),
	}, nil
}

func (s *Session) ID() models.TestID                   { return s.id }
func (s *Session) UserID() models.UserID               { return s.userID }
func (s *Session) State() State                        { return s.state }
func (s *Session) Config() models.TestConfig           { return s.config }
func (s *Session) Analysis() models.DifficultyAnalysis { return s.analysis }
func (s *Session) CreatedAt() time.Time                { return s.createdAt }
func (s *Session) Answered() int                       { return len(s.results) }
func (s *Session) HintsUsed(wordID models.WordID) int  { return s.hints[wordID] }
func (s *Session) Result(id models.WordID) (models.TestWordResult, bool) {
	r, ok := s.results[id]
	return r, ok
}

func (s *Session) Contains(wordID models.WordID) bool {
	_, ok := s.index[wordID]
	return ok
}

// Words returns the selected words in test order.
func (s *Session) Words() []models.Word {
	out := make([]models.Word, len(s.words))
	copy(out, s.words)
	return out
}

// Start moves a configured session into progress.
func (s *Session) Start() error {
	switch s.state {
	case StateInProgress:
		return errors.Wrap(errors.ErrTestAlreadyStarted, "test %s already started", s.id)
	case StateCompleted:
		return errors.Wrap(errors.ErrTestAlreadyCompleted, "test %s already completed", s.id)
	}
	s.state = StateInProgress
	s.startedAt = s.engine.now()
	return nil
}

func (s *Session) word(wordID models.WordID) (models.Word, error) {
	i, ok := s.index[wordID]
	if !ok {
		return models.Word{}, errors.NewValidationError("word_id", "word is not part of this test")
	}
	return s.words[i], nil
}

func (s *Session) requireInProgress() error {
	switch s.state {
	case StateConfigured:
		return errors.Wrap(errors.ErrTestNotInProgress, "test %s has not been started", s.id)
	case StateCompleted:
		return errors.Wrap(errors.ErrTestNotInProgress, "test %s is already completed", s.id)
	}
	return nil
}

// SubmitAnswer evaluates one answer against the word's Italian translation
// and records it. Each word may be answered once.
func (s *Session) SubmitAnswer(wordID models.WordID, answer string, responseTime time.Duration) (models.TestWordResult, error) {
	if err := s.requireInProgress(); err != nil {
		return models.TestWordResult{}, err
	}
	w, err := s.word(wordID)
	if err != nil {
		return models.TestWordResult{}, err
	}
	if _, done := s.results[wordID]; done {
		return models.TestWordResult{}, errors.Wrap(errors.ErrAlreadyAnswered, "word %s already answered", wordID)
	}
	if responseTime < 0 {
		responseTime = 0
	}

	hints := s.hints[wordID]
	result := s.resultFor(w, EvaluateAnswer(answer, w.Italian, hints), responseTime, hints)
	result.UserAnswer = answer
	s.results[wordID] = result
	return result, nil
}

// UseHint returns a partial reveal of the answer. The per-word limit is
// checked before the cooldown, which spans every word of the session.
func (s *Session) UseHint(wordID models.WordID) (string, error) {
	if err := s.requireInProgress(); err != nil {
		return "", err
	}
	w, err := s.word(wordID)
	if err != nil {
		return "", err
	}
	if _, done := s.results[wordID]; done {
		return "", errors.Wrap(errors.ErrAlreadyAnswered, "word %s already answered", wordID)
	}
	if s.hints[wordID] >= s.engine.settings.MaxHintsPerWord {
		return "", errors.Wrap(errors.ErrHintLimitExceeded, "word %s already used %d of %d hints", wordID, s.hints[wordID], s.engine.settings.MaxHintsPerWord)
	}
	now := s.engine.now()
	if !s.lastHint.IsZero() {
		if wait := s.engine.settings.HintCooldown - now.Sub(s.lastHint); wait > 0 {
			return "", errors.Wrap(errors.ErrHintCooldownActive, "next hint available in %s", wait.Round(time.Millisecond))
		}
	}

	s.hints[wordID]++
	s.lastHint = now
	return Reveal(w.Italian, s.hints[wordID]), nil
}

// Complete freezes the session into a Test. Words never answered count as
// incorrect with zero response time.
func (s *Session) Complete() (models.Test, error) {
	switch s.state {
	case StateCompleted:
		return models.Test{}, errors.Wrap(errors.ErrTestAlreadyCompleted, "test %s already completed", s.id)
	case StateConfigured:
		return models.Test{}, errors.Wrap(errors.ErrTestNotInProgress, "test %s has not been started", s.id)
	}

	test := models.Test{
		ID:                    s.id,
		UserID:                s.userID,
		Type:                  s.config.Type,
		SelectedChapters:      append([]string{}, s.config.SelectedChapters...),
		IncludeLearnedWords:   s.config.IncludeLearnedWords,
		IncludeDifficultWords: s.config.IncludeDifficultWords,
		MaxWords:              s.config.MaxWords,
		WrongWords:            []models.TestWordResult{},
		RightWords:            []models.TestWordResult{},
		ChapterStats:          map[string]models.ChapterTestStats{},
	}
	chapterTime := map[string]int64{}

	for _, w := range s.words {
		r, ok := s.results[w.ID]
		if !ok {
			r = s.resultFor(w, false, 0, s.hints[w.ID])
		}
		test.TotalWords++
		test.TotalTimeMs += r.ResponseTimeMs
		test.HintsUsed += r.HintsUsed
		if r.IsCorrect {
			test.CorrectWords++
			test.RightWords = append(test.RightWords, r)
		} else {
			test.IncorrectWords++
			test.WrongWords = append(test.WrongWords, r)
		}

		cs := test.ChapterStats[w.Chapter]
		cs.TotalWords++
		cs.HintsUsed += r.HintsUsed
		chapterTime[w.Chapter] += r.ResponseTimeMs
		if r.IsCorrect {
			cs.CorrectWords++
		} else {
			cs.IncorrectWords++
		}
		test.ChapterStats[w.Chapter] = cs
	}

	for chapter, cs := range test.ChapterStats {
		spent := chapterTime[chapter]
		cs.AvgTimePerWordMs = spent / int64(cs.TotalWords)
		cs.Percentage = s.engine.CalculateScore(cs.CorrectWords, cs.TotalWords, cs.HintsUsed, time.Duration(spent)*time.Millisecond)
		test.ChapterStats[chapter] = cs
	}
	if test.TotalWords > 0 {
		test.AvgTimePerWordMs = test.TotalTimeMs / int64(test.TotalWords)
	}
	test.Percentage = s.engine.CalculateScore(test.CorrectWords, test.TotalWords, test.HintsUsed, time.Duration(test.TotalTimeMs)*time.Millisecond)

	analysis := s.analysis
	test.DifficultyAnalysis = &analysis
	test.Difficulty = analysis.Level

	s.completedAt = s.engine.now()
	test.Timestamp = s.completedAt
	test.CreatedAt = s.completedAt
	s.state = StateCompleted
	s.test = &test
	return test, nil
}

// Test returns the frozen result once the session is completed.
func (s *Session) Test() (models.Test, bool) {
	if s.test == nil {
		return models.Test{}, false
	}
	return *s.test, true
}

func (s *Session) resultFor(w models.Word, correct bool, responseTime time.Duration, hints int) models.TestWordResult {
	var p *models.WordPerformance
	if perf, ok := s.perf[w.ID]; ok {
		p = &perf
	}
	return models.TestWordResult{
		WordID:          w.ID,
		IsCorrect:       correct,
		ResponseTimeMs:  responseTime.Milliseconds(),
		HintsUsed:       hints,
		Difficulty:      PredictWordDifficulty(w, p),
		WordText:        w.English,
		TranslationText: w.Italian,
		Chapter:         w.Chapter,
	}
}

// Chapters lists the distinct chapters of the session's words.
func (s *Session) Chapters() []string {
	seen := map[string]bool{}
	for _, w := range s.words {
		seen[w.Chapter] = true
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
