package analytics_test

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/lexiflash/internal/analytics"
	"github.com/vytor/lexiflash/internal/engine"
	"github.com/vytor/lexiflash/internal/models"
)

func progress(date string, tests, correct, incorrect int) models.DailyProgress {
	return models.DailyProgress{Date: date, Tests: tests, CorrectAnswers: correct, IncorrectAnswers: incorrect, WordsStudied: correct + incorrect}
}

func TestAccuracyTrend_ZeroFilledOldestFirst(t *testing.T) {
	daily := map[string]models.DailyProgress{
		"2024-03-01": progress("2024-03-01", 1, 1, 1),
		"2024-03-04": progress("2024-03-04", 1, 3, 1),
		"2024-02-01": progress("2024-02-01", 1, 1, 0),
	}
	end := time.Date(2024, 3, 4, 20, 0, 0, 0, time.UTC)

	got := slices.Collect(analytics.AccuracyTrend(daily, 5, end))

	assert.Equal(t, []int{0, 50, 0, 0, 75}, got)
	assert.Empty(t, slices.Collect(analytics.AccuracyTrend(daily, 0, end)))
}

func TestActivityTrend_StopsEarly(t *testing.T) {
	daily := map[string]models.DailyProgress{"2024-03-04": progress("2024-03-04", 3, 1, 0)}
	end := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	var seen []int
	for v := range analytics.ActivityTrend(daily, 30, end) {
		seen = append(seen, v)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []int{0, 0}, seen)
	assert.Len(t, slices.Collect(analytics.ActivityTrend(daily, 30, end)), 30)
	assert.Equal(t, 3, slices.Collect(analytics.ActivityTrend(daily, 30, end))[29])
}

func TestAnalyzeWeakAreas(t *testing.T) {
	words := []models.Word{
		{ID: "a1", Chapter: "A", Category: models.CategoryVerbs, TimesShown: 10, TimesCorrect: 5},
		{ID: "b1", Chapter: "B", Category: models.CategoryNouns, TimesShown: 4, TimesCorrect: 2},
		{ID: "c1", Chapter: "C", Category: models.CategoryNouns},
		{ID: "c2", Chapter: "C", Category: models.CategoryNouns},
		{ID: "d1", Chapter: "D", Category: models.CategoryVerbs, TimesShown: 1, TimesCorrect: 1},
	}
	perf := map[models.WordID]models.WordPerformance{
		"c1": {WordID: "c1", TimesShown: 5, TimesCorrect: 1},
	}

	byChapter := analytics.AnalyzeWeakAreas(words, perf, analytics.GroupByChapter)

	assert.Equal(t, []string{"C", "A", "B", "D"}, analytics.IDs(byChapter))
	assert.InDelta(t, 20, byChapter[0].Accuracy, 1e-9)
	assert.Equal(t, 2, byChapter[0].Words)

	byCategory := analytics.AnalyzeWeakAreas(words, perf, analytics.GroupByCategory)
	assert.Equal(t, []string{string(models.CategoryNouns), string(models.CategoryVerbs)}, analytics.IDs(byCategory))
}

func TestAnalyzeWeakAreas_TiesByIDWhenEverythingEqual(t *testing.T) {
	words := []models.Word{
		{ID: "z", Chapter: "Z", TimesShown: 2, TimesCorrect: 1},
		{ID: "y", Chapter: "Y", TimesShown: 2, TimesCorrect: 1},
	}

	assert.Equal(t, []string{"Y", "Z"}, analytics.IDs(analytics.AnalyzeWeakAreas(words, nil, analytics.GroupByChapter)))
}

func TestPredictNextDifficulty(t *testing.T) {
	assert.Equal(t, models.DifficultyHard, analytics.PredictNextDifficulty(models.WordPerformance{MasteryLevel: 20}))
	assert.Equal(t, models.DifficultyMedium, analytics.PredictNextDifficulty(models.WordPerformance{MasteryLevel: 20, CurrentStreak: 3}))
	assert.Equal(t, models.DifficultyEasy, analytics.PredictNextDifficulty(models.WordPerformance{MasteryLevel: 90}))
}

func TestImprovementTrend(t *testing.T) {
	end := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	daily := map[string]models.DailyProgress{
		"2024-03-03": progress("2024-03-03", 1, 5, 5),
		"2024-03-12": progress("2024-03-12", 1, 8, 2),
	}
	assert.Equal(t, models.TrendImproving, analytics.ImprovementTrend(daily, end))

	daily["2024-03-12"] = progress("2024-03-12", 1, 2, 8)
	assert.Equal(t, models.TrendDeclining, analytics.ImprovementTrend(daily, end))

	daily["2024-03-12"] = progress("2024-03-12", 1, 5, 5)
	assert.Equal(t, models.TrendStable, analytics.ImprovementTrend(daily, end))

	assert.Equal(t, models.TrendStable, analytics.ImprovementTrend(map[string]models.DailyProgress{}, end))
}

func TestCalculate(t *testing.T) {
	a := analytics.New(time.UTC, engine.DefaultSettings())
	now := time.Date(2024, 3, 13, 18, 0, 0, 0, time.UTC) // Wednesday
	s := models.NewStats("u1")
	s.TotalTests = 3
	s.CorrectAnswers = 15
	s.IncorrectAnswers = 5
	s.AccuracyRate = 75
	s.DailyProgress = map[string]models.DailyProgress{
		"2024-03-13": progress("2024-03-13", 1, 9, 1),
		"2024-03-12": progress("2024-03-12", 1, 5, 5),
		"2024-03-05": progress("2024-03-05", 1, 1, 0),
	}

	c := a.Calculate(s, now)

	assert.True(t, c.IsActiveToday)
	assert.Equal(t, 20, c.TotalAnswers)
	assert.Len(t, c.Last7DaysAccuracy, 7)
	assert.Equal(t, 90, c.Last7DaysAccuracy[6])
	assert.Len(t, c.Last30DaysActivity, 30)
	assert.Equal(t, 40, c.TodayVsYesterday.AccuracyChange)
	assert.Equal(t, 0, c.TodayVsYesterday.TestsChange)
	assert.Equal(t, 1, c.ThisWeekVsLastWeek.TestsChange)
	assert.Equal(t, 3, c.ThisMonthVsLastMonth.TestsChange)
}

func TestRecommendOptimalTestLength(t *testing.T) {
	a := analytics.New(time.UTC, engine.DefaultSettings())

	assert.Equal(t, analytics.DefaultTestLength, a.RecommendOptimalTestLength(models.Stats{}))
	assert.Equal(t, 30, a.RecommendOptimalTestLength(models.Stats{TotalTests: 1, AvgTimePerWordMs: 5000, AccuracyRate: 90}))
	assert.Equal(t, 20, a.RecommendOptimalTestLength(models.Stats{TotalTests: 1, AvgTimePerWordMs: 15000, AccuracyRate: 50}))
	assert.Equal(t, analytics.MinTestLength, a.RecommendOptimalTestLength(models.Stats{TotalTests: 1, AvgTimePerWordMs: 300000, AccuracyRate: 90}))
}

func TestStudyRecommendations(t *testing.T) {
	a := analytics.New(time.UTC, engine.DefaultSettings())
	now := time.Date(2024, 3, 13, 18, 0, 0, 0, time.UTC)

	first := a.StudyRecommendations(models.NewStats("u1"), nil, nil, now)
	assert.Equal(t, analytics.RecFirstTest, first[0].Code)

	s := models.NewStats("u1")
	s.TotalTests = 4
	s.CurrentStreak = 2
	s.HintsRate = 50
	s.AvgTimePerWordMs = 30000
	weak := []analytics.WeakArea{{ID: "ch3", Accuracy: 40, TimesShown: 10}}
	perf := []models.WordPerformance{{TimesShown: 3, MasteryLevel: 10}}

	recs := a.StudyRecommendations(s, weak, perf, now)

	var codes []string
	for _, r := range recs {
		codes = append(codes, r.Code)
	}
	assert.Equal(t, []string{analytics.RecKeepStreak, analytics.RecReviewWeakArea, analytics.RecPracticeHard, analytics.RecFewerHints, analytics.RecAnswerFaster}, codes)
	assert.Equal(t, "ch3", recs[1].Target)

	s = models.NewStats("u1")
	s.TotalTests = 10
	s.AccuracyRate = 95
	assert.Equal(t, analytics.RecReviewLearned, a.StudyRecommendations(s, nil, nil, now)[0].Code)
}

func TestLearningVelocity(t *testing.T) {
	a := analytics.New(time.UTC, engine.DefaultSettings())
	now := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)
	perf := []models.WordPerformance{
		{MasteryLevel: 90, FirstShown: now.AddDate(0, 0, -3)},
		{MasteryLevel: 80, FirstShown: now.AddDate(0, 0, -10)},
		{MasteryLevel: 20, FirstShown: now.AddDate(0, 0, -1)},
		{MasteryLevel: 95, FirstShown: now.AddDate(0, 0, -40)},
	}

	assert.InDelta(t, 1.0, a.LearningVelocity(perf, now, 2), 1e-9)
	assert.Equal(t, 0.0, a.LearningVelocity(perf, now, 0))
}
