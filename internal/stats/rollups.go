package stats

import (
	"time"

	"github.com/vytor/lexiflash/internal/models"
)

type bucket struct {
	tests, words, correct, incorrect, hints int
	timeMs                                  int64
	activeDays, maxStreak                   int
}

func sumDays(daily map[string]models.DailyProgress, from time.Time, days int) bucket {
	var b bucket
	for i := 0; i < days; i++ {
		d, ok := daily[from.AddDate(0, 0, i).Format(models.DateLayout)]
		if !ok {
			continue
		}
		b.tests += d.Tests
		b.words += d.WordsStudied
		b.correct += d.CorrectAnswers
		b.incorrect += d.IncorrectAnswers
		b.hints += d.HintsUsed
		b.timeMs += d.TimeSpentMs
		if d.Tests > 0 {
			b.activeDays++
		}
		if d.Streak > b.maxStreak {
			b.maxStreak = d.Streak
		}
	}
	return b
}

func (b bucket) accuracy() int {
	return percent(b.correct, b.correct+b.incorrect)
}

func improvement(cur, prev bucket) int {
	if prev.tests == 0 || cur.tests == 0 {
		return 0
	}
	return cur.accuracy() - prev.accuracy()
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CalculateWeeklyStats reduces the Monday-Sunday week containing weekOf.
func (a Aggregator) CalculateWeeklyStats(daily map[string]models.DailyProgress, weekOf time.Time) models.WeeklyStats {
	start := WeekStart(dateOnly(weekOf))
	cur := sumDays(daily, start, 7)
	prev := sumDays(daily, start.AddDate(0, 0, -7), 7)

	return models.WeeklyStats{
		WeekStart:        start.Format(models.DateLayout),
		WeekEnd:          start.AddDate(0, 0, 6).Format(models.DateLayout),
		Tests:            cur.tests,
		WordsStudied:     cur.words,
		CorrectAnswers:   cur.correct,
		IncorrectAnswers: cur.incorrect,
		HintsUsed:        cur.hints,
		TimeSpentMs:      cur.timeMs,
		AccuracyRate:     cur.accuracy(),
		AvgTimePerWordMs: perUnit(cur.timeMs, cur.words),
		AvgTimePerTestMs: perUnit(cur.timeMs, cur.tests),
		Streak:           cur.maxStreak,
		ActiveDays:       cur.activeDays,
		ImprovementRate:  improvement(cur, prev),
	}
}

// CalculateMonthlyStats reduces one calendar month.
func (a Aggregator) CalculateMonthlyStats(daily map[string]models.DailyProgress, year int, month time.Month) models.MonthlyStats {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	prevStart := start.AddDate(0, -1, 0)
	cur := sumDays(daily, start, daysIn(start))
	prev := sumDays(daily, prevStart, daysIn(prevStart))

	return models.MonthlyStats{
		Month:            start.Format(models.MonthLayout),
		Tests:            cur.tests,
		WordsStudied:     cur.words,
		CorrectAnswers:   cur.correct,
		IncorrectAnswers: cur.incorrect,
		HintsUsed:        cur.hints,
		TimeSpentMs:      cur.timeMs,
		AccuracyRate:     cur.accuracy(),
		AvgTimePerWordMs: perUnit(cur.timeMs, cur.words),
		AvgTimePerTestMs: perUnit(cur.timeMs, cur.tests),
		BestStreak:       cur.maxStreak,
		ActiveDays:       cur.activeDays,
		ImprovementRate:  improvement(cur, prev),
		RankPerformance:  a.Rank(cur.accuracy(), cur.tests),
	}
}

// Rank buckets an accuracy; months without tests are poor.
func (a Aggregator) Rank(accuracy, tests int) models.Rank {
	switch {
	case tests == 0:
		return models.RankPoor
	case accuracy >= a.excellentScore:
		return models.RankExcellent
	case accuracy >= a.goodScore:
		return models.RankGood
	case accuracy >= RankAverageThreshold:
		return models.RankAverage
	default:
		return models.RankPoor
	}
}

func daysIn(monthStart time.Time) int {
	return monthStart.AddDate(0, 1, -1).Day()
}
