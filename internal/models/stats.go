package models

import "time"

// DateLayout is the key format of daily buckets.
const DateLayout = "2006-01-02"

// MonthLayout is the key format of monthly buckets.
const MonthLayout = "2006-01"

type DailyProgress struct {
	Date             string `json:"date"`
	Tests            int    `json:"tests"`
	WordsStudied     int    `json:"words_studied"`
	CorrectAnswers   int    `json:"correct_answers"`
	IncorrectAnswers int    `json:"incorrect_answers"`
	HintsUsed        int    `json:"hints_used"`
	TimeSpentMs      int64  `json:"time_spent_ms"`
	AccuracyRate     int    `json:"accuracy_rate"`
	AvgTimePerWordMs int64  `json:"avg_time_per_word_ms"`
	Streak           int    `json:"streak"`
}

type WeeklyStats struct {
	WeekStart        string `json:"week_start"`
	WeekEnd          string `json:"week_end"`
	Tests            int    `json:"tests"`
	WordsStudied     int    `json:"words_studied"`
	CorrectAnswers   int    `json:"correct_answers"`
	IncorrectAnswers int    `json:"incorrect_answers"`
	HintsUsed        int    `json:"hints_used"`
	TimeSpentMs      int64  `json:"time_spent_ms"`
	AccuracyRate     int    `json:"accuracy_rate"`
	AvgTimePerWordMs int64  `json:"avg_time_per_word_ms"`
	AvgTimePerTestMs int64  `json:"avg_time_per_test_ms"`
	Streak           int    `json:"streak"`
	ActiveDays       int    `json:"active_days"`
	ImprovementRate  int    `json:"improvement_rate"`
}

type Rank string

const (
	RankExcellent Rank = "excellent"
	RankGood      Rank = "good"
	RankAverage   Rank = "average"
	RankPoor      Rank = "poor"
)

type MonthlyStats struct {
	Month            string `json:"month"`
	Tests            int    `json:"tests"`
	WordsStudied     int    `json:"words_studied"`
	CorrectAnswers   int    `json:"correct_answers"`
	IncorrectAnswers int    `json:"incorrect_answers"`
	HintsUsed        int    `json:"hints_used"`
	TimeSpentMs      int64  `json:"time_spent_ms"`
	AccuracyRate     int    `json:"accuracy_rate"`
	AvgTimePerWordMs int64  `json:"avg_time_per_word_ms"`
	AvgTimePerTestMs int64  `json:"avg_time_per_test_ms"`
	BestStreak       int    `json:"best_streak"`
	ActiveDays       int    `json:"active_days"`
	ImprovementRate  int    `json:"improvement_rate"`
	RankPerformance  Rank   `json:"rank_performance"`
}

// Stats is the single aggregate record per user.
type Stats struct {
	ID     StatsID `json:"id"`
	UserID UserID  `json:"user_id"`

	TotalTests       int   `json:"total_tests"`
	CorrectAnswers   int   `json:"correct_answers"`
	IncorrectAnswers int   `json:"incorrect_answers"`
	HintsUsed        int   `json:"hints_used"`
	TotalTimeSpentMs int64 `json:"total_time_spent_ms"`

	AccuracyRate     int   `json:"accuracy_rate"`
	HintsRate        int   `json:"hints_rate"`
	AvgTimePerTestMs int64 `json:"avg_time_per_test_ms"`
	AvgTimePerWordMs int64 `json:"avg_time_per_word_ms"`

	CurrentStreak int `json:"current_streak"`
	BestStreak    int `json:"best_streak"`

	DailyProgress map[string]DailyProgress `json:"daily_progress"`
	WeeklyStats   []WeeklyStats            `json:"weekly_stats"`
	MonthlyStats  []MonthlyStats           `json:"monthly_stats"`

	FirstTestDate *time.Time `json:"first_test_date,omitempty"`
	LastTestDate  *time.Time `json:"last_test_date,omitempty"`
	LastActive    *time.Time `json:"last_active,omitempty"`

	// AppliedTests lists every test already folded in, so re-applying a
	// completion is a no-op.
	AppliedTests []TestID `json:"applied_tests"`
	Version      int64    `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewStats returns an empty aggregate for userID.
func NewStats(userID UserID) Stats {
	return Stats{
		ID:            NewStatsID(),
		UserID:        userID,
		DailyProgress: map[string]DailyProgress{},
		WeeklyStats:   []WeeklyStats{},
		MonthlyStats:  []MonthlyStats{},
		AppliedTests:  []TestID{},
	}
}

// HasApplied reports whether the test was already folded into s.
func (s Stats) HasApplied(id TestID) bool {
	for _, applied := range s.AppliedTests {
		if applied == id {
			return true
		}
	}
	return false
}

// TotalAnswers is correct plus incorrect answers.
func (s Stats) TotalAnswers() int {
	return s.CorrectAnswers + s.IncorrectAnswers
}

type ComparisonStats struct {
	AccuracyChange int `json:"accuracy_change"`
	TimeChange     int `json:"time_change"`
	HintsChange    int `json:"hints_change"`
	TestsChange    int `json:"tests_change"`
}

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// CalculatedStats is the advisory progress summary shown on the dashboard.
type CalculatedStats struct {
	TotalTests           int             `json:"total_tests"`
	TotalAnswers         int             `json:"total_answers"`
	TotalHints           int             `json:"total_hints"`
	AccuracyRate         int             `json:"accuracy_rate"`
	HintsRate            int             `json:"hints_rate"`
	IsActiveToday        bool            `json:"is_active_today"`
	AvgTimePerTestMs     int64           `json:"avg_time_per_test_ms"`
	Last7DaysAccuracy    []int           `json:"last_7_days_accuracy"`
	Last30DaysActivity   []int           `json:"last_30_days_activity"`
	ImprovementTrend     Trend           `json:"improvement_trend"`
	TodayVsYesterday     ComparisonStats `json:"today_vs_yesterday"`
	ThisWeekVsLastWeek   ComparisonStats `json:"this_week_vs_last_week"`
	ThisMonthVsLastMonth ComparisonStats `json:"this_month_vs_last_month"`
}
