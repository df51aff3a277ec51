package analytics

import (
	"slices"
	"time"

	"github.com/vytor/lexiflash/internal/engine"
	"github.com/vytor/lexiflash/internal/models"
)

// Analyzer derives advisory signals. It never mutates what it is given.
type Analyzer struct {
	loc      *time.Location
	settings engine.Settings
}

func New(loc *time.Location, settings engine.Settings) Analyzer {
	if loc == nil {
		loc = time.UTC
	}
	return Analyzer{loc: loc, settings: settings}
}

// Calculate builds the dashboard summary as of now.
func (a Analyzer) Calculate(s models.Stats, now time.Time) models.CalculatedStats {
	today := now.In(a.loc)
	daily := s.DailyProgress

	out := models.CalculatedStats{
		TotalTests:         s.TotalTests,
		TotalAnswers:       s.TotalAnswers(),
		TotalHints:         s.HintsUsed,
		AccuracyRate:       s.AccuracyRate,
		HintsRate:          s.HintsRate,
		AvgTimePerTestMs:   s.AvgTimePerTestMs,
		Last7DaysAccuracy:  slices.Collect(AccuracyTrend(daily, 7, today)),
		Last30DaysActivity: slices.Collect(ActivityTrend(daily, 30, today)),
		ImprovementTrend:   ImprovementTrend(daily, today),
	}
	if d, ok := daily[today.Format(models.DateLayout)]; ok && d.Tests > 0 {
		out.IsActiveToday = true
	}

	out.TodayVsYesterday = compare(sumWindow(daily, today, 1), sumWindow(daily, today.AddDate(0, 0, -1), 1))

	weekday := (int(today.Weekday()) + 6) % 7
	thisWeek := sumWindow(daily, today, weekday+1)
	lastWeek := sumWindow(daily, today.AddDate(0, 0, -weekday-1), 7)
	out.ThisWeekVsLastWeek = compare(thisWeek, lastWeek)

	thisMonth := sumWindow(daily, today, today.Day())
	prevMonthEnd := today.AddDate(0, 0, -today.Day())
	out.ThisMonthVsLastMonth = compare(thisMonth, sumWindow(daily, prevMonthEnd, prevMonthEnd.Day()))
	return out
}

// LearningVelocity is the number of words reaching easy mastery per week
// over the last weeks, counted by when they were first shown.
func (a Analyzer) LearningVelocity(perf []models.WordPerformance, now time.Time, weeks int) float64 {
	if weeks <= 0 {
		return 0
	}
	since := now.AddDate(0, 0, -7*weeks)
	mastered := 0
	for _, p := range perf {
		if p.MasteryLevel >= engine.WordEasyMastery && !p.FirstShown.Before(since) {
			mastered++
		}
	}
	return float64(mastered) / float64(weeks)
}

// Test length bounds for recommendations.
const (
	MinTestLength     = 5
	DefaultTestLength = 10
	MaxTestLength     = 30
)

// RecommendOptimalTestLength sizes the next test so it fits in roughly ten
// minutes at the user's pace, shorter while accuracy is below good.
func (a Analyzer) RecommendOptimalTestLength(s models.Stats) int {
	if s.TotalTests == 0 || s.AvgTimePerWordMs <= 0 {
		return DefaultTestLength
	}
	n := int((10 * time.Minute).Milliseconds() / s.AvgTimePerWordMs)
	if s.AccuracyRate < a.settings.GoodScore {
		n /= 2
	}
	return min(max(n, MinTestLength), MaxTestLength)
}

type Recommendation struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Target  string `json:"target,omitempty"`
}

const (
	RecFirstTest      = "take_first_test"
	RecKeepStreak     = "keep_streak"
	RecReviewWeakArea = "review_weak_area"
	RecPracticeHard   = "practice_difficult_words"
	RecFewerHints     = "use_fewer_hints"
	RecAnswerFaster   = "answer_faster"
	RecReviewLearned  = "review_learned_words"
)

// WeakAreaAccuracy is the accuracy below which a weak area is recommended.
const WeakAreaAccuracy = 60.0

// HintsRateWarning is the hints rate (percent) above which hints are flagged.
const HintsRateWarning = 30

// StudyRecommendations lists advisory next steps, most pressing first.
func (a Analyzer) StudyRecommendations(s models.Stats, weak []WeakArea, perf []models.WordPerformance, now time.Time) []Recommendation {
	if s.TotalTests == 0 {
		return []Recommendation{{Code: RecFirstTest, Message: "Take your first test to start tracking progress"}}
	}

	var out []Recommendation
	today := now.In(a.loc).Format(models.DateLayout)
	if d := s.DailyProgress[today]; d.Tests == 0 && s.CurrentStreak > 0 {
		out = append(out, Recommendation{Code: RecKeepStreak, Message: "Take a test today to keep your streak going"})
	}
	if len(weak) > 0 && weak[0].Accuracy < WeakAreaAccuracy {
		out = append(out, Recommendation{Code: RecReviewWeakArea, Message: "Review your weakest area", Target: weak[0].ID})
	}

	hard := 0
	for _, p := range perf {
		if p.TimesShown > 0 && PredictNextDifficulty(p) == models.DifficultyHard {
			hard++
		}
	}
	if hard > 0 {
		out = append(out, Recommendation{Code: RecPracticeHard, Message: "Run a difficult-words test"})
	}
	if s.HintsRate > HintsRateWarning {
		out = append(out, Recommendation{Code: RecFewerHints, Message: "Try answering without hints first"})
	}
	if time.Duration(s.AvgTimePerWordMs)*time.Millisecond >= a.settings.SlowThreshold {
		out = append(out, Recommendation{Code: RecAnswerFaster, Message: "Aim to answer each word faster"})
	}
	if len(out) == 0 && s.AccuracyRate >= a.settings.ExcellentScore {
		out = append(out, Recommendation{Code: RecReviewLearned, Message: "Refresh learned words with a review test"})
	}
	return out
}
