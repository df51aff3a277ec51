package models

import "time"

type TestType string

const (
	TestTypeComplete  TestType = "complete"
	TestTypeSelective TestType = "selective"
	TestTypeReview    TestType = "review"
	TestTypeDifficult TestType = "difficult"
)

// Valid reports whether t is a known test type.
func (t TestType) Valid() bool {
	switch t {
	case TestTypeComplete, TestTypeSelective, TestTypeReview, TestTypeDifficult:
		return true
	}
	return false
}

// Difficulty is used both for whole tests (easy..expert) and for single
// words (easy..hard).
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

// TestConfig describes which words a test draws from and how they are ordered.
type TestConfig struct {
	Type                  TestType `json:"type"`
	SelectedChapters      []string `json:"selected_chapters"`
	IncludeLearnedWords   bool     `json:"include_learned_words"`
	IncludeDifficultWords bool     `json:"include_difficult_words"`
	MaxWords              int      `json:"max_words,omitempty"`

	RandomizeOrder       bool   `json:"randomize_order"`
	ExcludeRecentlyShown bool   `json:"exclude_recently_shown"`
	PrioritizeDifficult  bool   `json:"prioritize_difficult"`
	Seed                 *int64 `json:"seed,omitempty"`
}

// DefaultTestConfig mirrors the defaults of the quiz setup screen.
func DefaultTestConfig() TestConfig {
	return TestConfig{
		Type:                  TestTypeComplete,
		IncludeDifficultWords: true,
		RandomizeOrder:        true,
	}
}

type TestWordResult struct {
	WordID         WordID     `json:"word_id"`
	IsCorrect      bool       `json:"is_correct"`
	ResponseTimeMs int64      `json:"response_time_ms"`
	HintsUsed      int        `json:"hints_used"`
	Difficulty     Difficulty `json:"difficulty"`

	WordText        string `json:"word_text,omitempty"`
	TranslationText string `json:"translation_text,omitempty"`
	Chapter         string `json:"chapter,omitempty"`
	UserAnswer      string `json:"user_answer,omitempty"`
}

type ChapterTestStats struct {
	TotalWords       int   `json:"total_words"`
	CorrectWords     int   `json:"correct_words"`
	IncorrectWords   int   `json:"incorrect_words"`
	HintsUsed        int   `json:"hints_used"`
	Percentage       int   `json:"percentage"`
	AvgTimePerWordMs int64 `json:"avg_time_per_word_ms"`
}

type DifficultyFactors struct {
	WordLength         float64 `json:"word_length"`
	SentenceComplexity float64 `json:"sentence_complexity"`
	UserPerformance    float64 `json:"user_performance"`
	TimesPracticed     float64 `json:"times_practiced"`
}

type DifficultyAnalysis struct {
	BaseComplexity        float64           `json:"base_complexity"`
	PerformanceAdjustment float64           `json:"performance_adjustment"`
	FinalDifficulty       float64           `json:"final_difficulty"`
	Level                 Difficulty        `json:"level"`
	Factors               DifficultyFactors `json:"factors"`
}

// Test is the immutable record of one completed quiz.
type Test struct {
	ID        TestID    `json:"id"`
	UserID    UserID    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`

	Type                  TestType `json:"type"`
	SelectedChapters      []string `json:"selected_chapters"`
	IncludeLearnedWords   bool     `json:"include_learned_words"`
	IncludeDifficultWords bool     `json:"include_difficult_words"`
	MaxWords              int      `json:"max_words,omitempty"`

	TotalWords       int        `json:"total_words"`
	CorrectWords     int        `json:"correct_words"`
	IncorrectWords   int        `json:"incorrect_words"`
	TotalTimeMs      int64      `json:"total_time_ms"`
	AvgTimePerWordMs int64      `json:"avg_time_per_word_ms"`
	Percentage       int        `json:"percentage"`
	Difficulty       Difficulty `json:"difficulty"`
	HintsUsed        int        `json:"hints_used"`

	WrongWords []TestWordResult `json:"wrong_words"`
	RightWords []TestWordResult `json:"right_words"`

	ChapterStats       map[string]ChapterTestStats `json:"chapter_stats,omitempty"`
	DifficultyAnalysis *DifficultyAnalysis         `json:"difficulty_analysis,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Results returns right and wrong results in one slice.
func (t Test) Results() []TestWordResult {
	out := make([]TestWordResult, 0, len(t.RightWords)+len(t.WrongWords))
	out = append(out, t.RightWords...)
	return append(out, t.WrongWords...)
}
