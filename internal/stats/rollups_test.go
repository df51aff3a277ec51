package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/lexiflash/internal/models"
	"github.com/vytor/lexiflash/internal/stats"
)

func daily() map[string]models.DailyProgress {
	return map[string]models.DailyProgress{
		// previous week
		"2024-02-28": {Date: "2024-02-28", Tests: 1, WordsStudied: 10, CorrectAnswers: 5, IncorrectAnswers: 5, TimeSpentMs: 10000, Streak: 1},
		// Monday 4 .. Sunday 10 March
		"2024-03-04": {Date: "2024-03-04", Tests: 1, WordsStudied: 10, CorrectAnswers: 7, IncorrectAnswers: 3, HintsUsed: 2, TimeSpentMs: 20000, Streak: 1},
		"2024-03-05": {Date: "2024-03-05", Tests: 2, WordsStudied: 10, CorrectAnswers: 9, IncorrectAnswers: 1, TimeSpentMs: 10000, Streak: 2},
		"2024-03-10": {Date: "2024-03-10", Tests: 1, WordsStudied: 5, CorrectAnswers: 4, IncorrectAnswers: 1, TimeSpentMs: 5000, Streak: 1},
		// next week
		"2024-03-11": {Date: "2024-03-11", Tests: 1, WordsStudied: 5, CorrectAnswers: 5, TimeSpentMs: 5000, Streak: 2},
	}
}

func TestCalculateWeeklyStats(t *testing.T) {
	w := agg.CalculateWeeklyStats(daily(), time.Date(2024, 3, 7, 15, 0, 0, 0, time.UTC))

	assert.Equal(t, "2024-03-04", w.WeekStart)
	assert.Equal(t, "2024-03-10", w.WeekEnd)
	assert.Equal(t, 4, w.Tests)
	assert.Equal(t, 25, w.WordsStudied)
	assert.Equal(t, 20, w.CorrectAnswers)
	assert.Equal(t, 80, w.AccuracyRate)
	assert.Equal(t, 2, w.HintsUsed)
	assert.Equal(t, int64(35000), w.TimeSpentMs)
	assert.Equal(t, int64(1400), w.AvgTimePerWordMs)
	assert.Equal(t, int64(8750), w.AvgTimePerTestMs)
	assert.Equal(t, 3, w.ActiveDays)
	assert.Equal(t, 2, w.Streak)
	assert.Equal(t, 30, w.ImprovementRate)
}

func TestCalculateWeeklyStats_IsPure(t *testing.T) {
	in := daily()
	at := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	first := agg.CalculateWeeklyStats(in, at)
	second := agg.CalculateWeeklyStats(in, at)

	assert.Equal(t, first, second)
	assert.Equal(t, daily(), in)
}

func TestCalculateWeeklyStats_NoPreviousWeek(t *testing.T) {
	w := agg.CalculateWeeklyStats(daily(), time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "2024-02-26", w.WeekStart)
	assert.Equal(t, 0, w.ImprovementRate)
	assert.Equal(t, 50, w.AccuracyRate)
}

func TestCalculateMonthlyStats(t *testing.T) {
	m := agg.CalculateMonthlyStats(daily(), 2024, time.March)

	assert.Equal(t, "2024-03", m.Month)
	assert.Equal(t, 5, m.Tests)
	assert.Equal(t, 25, m.CorrectAnswers)
	assert.Equal(t, 83, m.AccuracyRate)
	assert.Equal(t, 4, m.ActiveDays)
	assert.Equal(t, 2, m.BestStreak)
	assert.Equal(t, 33, m.ImprovementRate)
	assert.Equal(t, models.RankExcellent, m.RankPerformance)

	feb := agg.CalculateMonthlyStats(daily(), 2024, time.February)
	assert.Equal(t, 0, feb.ImprovementRate)
	assert.Equal(t, models.RankAverage, feb.RankPerformance)

	empty := agg.CalculateMonthlyStats(daily(), 2023, time.December)
	assert.Equal(t, models.RankPoor, empty.RankPerformance)
}

func TestWeekStart(t *testing.T) {
	sunday := time.Date(2024, 3, 10, 22, 0, 0, 0, time.UTC)
	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, monday, stats.WeekStart(sunday))
	assert.Equal(t, monday, stats.WeekStart(monday))
}

func TestRank(t *testing.T) {
	assert.Equal(t, models.RankExcellent, agg.Rank(80, 1))
	assert.Equal(t, models.RankGood, agg.Rank(60, 1))
	assert.Equal(t, models.RankAverage, agg.Rank(40, 1))
	assert.Equal(t, models.RankPoor, agg.Rank(39, 1))
	assert.Equal(t, models.RankPoor, agg.Rank(100, 0))
}
