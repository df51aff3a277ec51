package stats

import (
	"sort"
	"time"

	"github.com/vytor/lexiflash/internal/models"
)

// RankAverageThreshold is the lowest accuracy ranked "average"; the upper
// ranks follow the configured excellent and good scores.
const RankAverageThreshold = 40

// Aggregator folds completed tests into a user's Stats. Its methods are pure:
// they never mutate their inputs.
type Aggregator struct {
	loc            *time.Location
	excellentScore int
	goodScore      int
}

// New returns an aggregator bucketing days in loc (UTC when nil).
func New(loc *time.Location, excellentScore, goodScore int) Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return Aggregator{loc: loc, excellentScore: excellentScore, goodScore: goodScore}
}

func (a Aggregator) Location() *time.Location { return a.loc }

// ApplyTest folds test into s. The second result is false when the test was
// already applied, in which case s is returned unchanged.
func (a Aggregator) ApplyTest(s models.Stats, test models.Test) (models.Stats, bool) {
	if s.HasApplied(test.ID) {
		return s, false
	}
	s = clone(s)

	s.TotalTests++
	s.CorrectAnswers += test.CorrectWords
	s.IncorrectAnswers += test.IncorrectWords
	s.HintsUsed += test.HintsUsed
	s.TotalTimeSpentMs += test.TotalTimeMs
	recomputeRates(&s)

	ts := test.Timestamp
	newest := s.LastActive == nil || !ts.Before(*s.LastActive)
	if s.LastActive == nil {
		s.CurrentStreak = 1
	} else {
		switch gap := dayNumber(ts, a.loc) - dayNumber(*s.LastActive, a.loc); {
		case gap == 0:
			if s.CurrentStreak == 0 {
				s.CurrentStreak = 1
			}
		case gap == 1:
			s.CurrentStreak++
		case gap > 1:
			s.CurrentStreak = 1
		}
	}
	if s.CurrentStreak > s.BestStreak {
		s.BestStreak = s.CurrentStreak
	}

	if newest {
		s.LastActive = timePtr(ts)
		s.LastTestDate = timePtr(ts)
	}
	if s.FirstTestDate == nil || ts.Before(*s.FirstTestDate) {
		s.FirstTestDate = timePtr(ts)
	}

	key := DateKey(ts, a.loc)
	day := s.DailyProgress[key]
	day.Date = key
	day.Tests++
	day.WordsStudied += test.TotalWords
	day.CorrectAnswers += test.CorrectWords
	day.IncorrectAnswers += test.IncorrectWords
	day.HintsUsed += test.HintsUsed
	day.TimeSpentMs += test.TotalTimeMs
	if newest {
		day.Streak = s.CurrentStreak
	}
	s.DailyProgress[key] = recomputeDay(day)

	s.AppliedTests = append(s.AppliedTests, test.ID)
	return a.RebuildRollups(s), true
}

// CorrectDay overwrites one daily bucket. Unlike ApplyTest it replaces
// rather than accumulates, and leaves lifetime counters alone.
func (a Aggregator) CorrectDay(s models.Stats, day models.DailyProgress) models.Stats {
	s = clone(s)
	s.DailyProgress[day.Date] = recomputeDay(day)
	return a.RebuildRollups(s)
}

// ExpireStreak drops the current streak once a full day has passed without
// activity. It reports whether anything changed.
func (a Aggregator) ExpireStreak(s models.Stats, now time.Time) (models.Stats, bool) {
	if s.LastActive == nil || s.CurrentStreak == 0 {
		return s, false
	}
	if dayNumber(now, a.loc)-dayNumber(*s.LastActive, a.loc) <= 1 {
		return s, false
	}
	s = clone(s)
	s.CurrentStreak = 0
	return s, true
}

// RebuildRollups recomputes every weekly and monthly bucket touched by the
// daily progress, oldest first.
func (a Aggregator) RebuildRollups(s models.Stats) models.Stats {
	weeks := map[string]time.Time{}
	months := map[string]time.Time{}
	for key := range s.DailyProgress {
		d, ok := parseDay(key)
		if !ok {
			continue
		}
		ws := WeekStart(d)
		weeks[ws.Format(models.DateLayout)] = ws
		months[d.Format(models.MonthLayout)] = time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	}

	s.WeeklyStats = make([]models.WeeklyStats, 0, len(weeks))
	for _, ws := range weeks {
		s.WeeklyStats = append(s.WeeklyStats, a.CalculateWeeklyStats(s.DailyProgress, ws))
	}
	sort.Slice(s.WeeklyStats, func(i, j int) bool { return s.WeeklyStats[i].WeekStart < s.WeeklyStats[j].WeekStart })

	s.MonthlyStats = make([]models.MonthlyStats, 0, len(months))
	for _, m := range months {
		s.MonthlyStats = append(s.MonthlyStats, a.CalculateMonthlyStats(s.DailyProgress, m.Year(), m.Month()))
	}
	sort.Slice(s.MonthlyStats, func(i, j int) bool { return s.MonthlyStats[i].Month < s.MonthlyStats[j].Month })
	return s
}

func recomputeRates(s *models.Stats) {
	answers := s.TotalAnswers()
	s.AccuracyRate = percent(s.CorrectAnswers, answers)
	s.HintsRate = percent(s.HintsUsed, answers)
	if s.HintsRate > 100 {
		s.HintsRate = 100
	}
	s.AvgTimePerTestMs = perUnit(s.TotalTimeSpentMs, s.TotalTests)
	s.AvgTimePerWordMs = perUnit(s.TotalTimeSpentMs, answers)
}

func recomputeDay(d models.DailyProgress) models.DailyProgress {
	d.AccuracyRate = percent(d.CorrectAnswers, d.CorrectAnswers+d.IncorrectAnswers)
	d.AvgTimePerWordMs = perUnit(d.TimeSpentMs, d.WordsStudied)
	return d
}

// Reset returns empty stats keeping the record's identity.
func Reset(s models.Stats) models.Stats {
	fresh := models.NewStats(s.UserID)
	fresh.ID = s.ID
	fresh.Version = s.Version
	fresh.CreatedAt = s.CreatedAt
	return fresh
}

func clone(s models.Stats) models.Stats {
	daily := make(map[string]models.DailyProgress, len(s.DailyProgress)+1)
	for k, v := range s.DailyProgress {
		daily[k] = v
	}
	s.DailyProgress = daily
	s.WeeklyStats = append([]models.WeeklyStats(nil), s.WeeklyStats...)
	s.MonthlyStats = append([]models.MonthlyStats(nil), s.MonthlyStats...)
	s.AppliedTests = append([]models.TestID(nil), s.AppliedTests...)
	return s
}

func timePtr(t time.Time) *time.Time {
	return &t
}
