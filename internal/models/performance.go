package models

import "time"

type ContextPerformance struct {
	Context       string    `json:"context"`
	TimesShown    int       `json:"times_shown"`
	TimesCorrect  int       `json:"times_correct"`
	AverageTimeMs float64   `json:"average_time_ms"`
	LastShown     time.Time `json:"last_shown"`
}

// WordPerformance is the running aggregate of every answer given for one word.
type WordPerformance struct {
	WordID WordID `json:"word_id"`
	UserID UserID `json:"user_id"`

	TimesShown     int `json:"times_shown"`
	TimesCorrect   int `json:"times_correct"`
	TimesIncorrect int `json:"times_incorrect"`
	HintsUsed      int `json:"hints_used"`

	AverageResponseTimeMs float64 `json:"average_response_time_ms"`
	FastestResponseTimeMs int64   `json:"fastest_response_time_ms"`
	SlowestResponseTimeMs int64   `json:"slowest_response_time_ms"`
	TotalTimeSpentMs      int64   `json:"total_time_spent_ms"`

	FirstShown    time.Time  `json:"first_shown"`
	LastShown     time.Time  `json:"last_shown"`
	LastCorrect   *time.Time `json:"last_correct,omitempty"`
	LastIncorrect *time.Time `json:"last_incorrect,omitempty"`

	CurrentStreak int        `json:"current_streak"`
	BestStreak    int        `json:"best_streak"`
	MasteryLevel  int        `json:"mastery_level"`
	Difficulty    Difficulty `json:"difficulty"`

	PerformanceByContext map[string]ContextPerformance `json:"performance_by_context"`
}

// Accuracy returns the share of correct answers in [0,1], 0 when never shown.
func (p WordPerformance) Accuracy() float64 {
	if p.TimesShown == 0 {
		return 0
	}
	return float64(p.TimesCorrect) / float64(p.TimesShown)
}
