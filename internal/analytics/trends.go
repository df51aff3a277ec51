package analytics

import (
	"iter"
	"math"
	"time"

	"github.com/vytor/lexiflash/internal/models"
)

// AccuracyTrend yields exactly days accuracy values, oldest first, ending on
// end's calendar date. Days without answers yield 0.
func AccuracyTrend(daily map[string]models.DailyProgress, days int, end time.Time) iter.Seq[int] {
	return trend(daily, days, end, func(d models.DailyProgress) int {
		return percent(d.CorrectAnswers, d.CorrectAnswers+d.IncorrectAnswers)
	})
}

// ActivityTrend yields the number of tests per day, oldest first.
func ActivityTrend(daily map[string]models.DailyProgress, days int, end time.Time) iter.Seq[int] {
	return trend(daily, days, end, func(d models.DailyProgress) int {
		return d.Tests
	})
}

func trend(daily map[string]models.DailyProgress, days int, end time.Time, value func(models.DailyProgress) int) iter.Seq[int] {
	return func(yield func(int) bool) {
		if days <= 0 {
			return
		}
		start := end.AddDate(0, 0, -(days - 1))
		for i := 0; i < days; i++ {
			v := 0
			if d, ok := daily[start.AddDate(0, 0, i).Format(models.DateLayout)]; ok {
				v = value(d)
			}
			if !yield(v) {
				return
			}
		}
	}
}

// window holds the totals of a run of consecutive days.
type window struct {
	tests, correct, incorrect, hints int
	timeMs                           int64
}

func sumWindow(daily map[string]models.DailyProgress, end time.Time, days int) window {
	var w window
	for i := 0; i < days; i++ {
		d, ok := daily[end.AddDate(0, 0, -i).Format(models.DateLayout)]
		if !ok {
			continue
		}
		w.tests += d.Tests
		w.correct += d.CorrectAnswers
		w.incorrect += d.IncorrectAnswers
		w.hints += d.HintsUsed
		w.timeMs += d.TimeSpentMs
	}
	return w
}

func (w window) accuracy() int {
	return percent(w.correct, w.correct+w.incorrect)
}

// TrendDelta is the accuracy swing, in points, that counts as a change.
const TrendDelta = 5

// ImprovementTrend compares the accuracy of the last seven days with the
// seven before. Without activity in both windows the trend is stable.
func ImprovementTrend(daily map[string]models.DailyProgress, end time.Time) models.Trend {
	recent := sumWindow(daily, end, 7)
	before := sumWindow(daily, end.AddDate(0, 0, -7), 7)
	if recent.tests == 0 || before.tests == 0 {
		return models.TrendStable
	}
	switch delta := recent.accuracy() - before.accuracy(); {
	case delta >= TrendDelta:
		return models.TrendImproving
	case delta <= -TrendDelta:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}

func compare(cur, prev window) models.ComparisonStats {
	return models.ComparisonStats{
		AccuracyChange: cur.accuracy() - prev.accuracy(),
		TimeChange:     int(cur.timeMs - prev.timeMs),
		HintsChange:    cur.hints - prev.hints,
		TestsChange:    cur.tests - prev.tests,
	}
}

func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
