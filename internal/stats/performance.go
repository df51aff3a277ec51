package stats

import (
	"time"

	"github.com/vytor/lexiflash/internal/engine"
	"github.com/vytor/lexiflash/internal/models"
)

// RecordWordPerformance folds one answer into a word's running performance.
// The average response time is an incremental mean over every answer.
func RecordWordPerformance(p models.WordPerformance, u models.WordPerformanceUpdate, now time.Time) models.WordPerformance {
	ms := u.TimeSpent.Milliseconds()
	if ms < 0 {
		ms = 0
	}

	if p.TimesShown == 0 {
		p.FirstShown = now
		p.FastestResponseTimeMs = ms
		p.SlowestResponseTimeMs = ms
	}
	p.WordID = u.WordID
	p.TimesShown++
	if u.IsCorrect {
		p.TimesCorrect++
		p.CurrentStreak++
		p.LastCorrect = timePtr(now)
	} else {
		p.TimesIncorrect++
		p.CurrentStreak = 0
		p.LastIncorrect = timePtr(now)
	}
	if p.CurrentStreak > p.BestStreak {
		p.BestStreak = p.CurrentStreak
	}
	if u.UsedHint {
		p.HintsUsed++
	}

	p.AverageResponseTimeMs += (float64(ms) - p.AverageResponseTimeMs) / float64(p.TimesShown)
	p.TotalTimeSpentMs += ms
	if ms < p.FastestResponseTimeMs {
		p.FastestResponseTimeMs = ms
	}
	if ms > p.SlowestResponseTimeMs {
		p.SlowestResponseTimeMs = ms
	}
	p.LastShown = now

	p.MasteryLevel = engine.MasteryLevel(p.TimesCorrect, p.TimesShown, p.CurrentStreak)
	p.Difficulty = engine.WordDifficulty(p.MasteryLevel, p.CurrentStreak)

	contexts := make(map[string]models.ContextPerformance, len(p.PerformanceByContext)+1)
	for k, v := range p.PerformanceByContext {
		contexts[k] = v
	}
	if u.Context != "" {
		c := contexts[u.Context]
		c.Context = u.Context
		c.TimesShown++
		if u.IsCorrect {
			c.TimesCorrect++
		}
		c.AverageTimeMs += (float64(ms) - c.AverageTimeMs) / float64(c.TimesShown)
		c.LastShown = now
		contexts[u.Context] = c
	}
	p.PerformanceByContext = contexts
	return p
}

// UpdatesFromTest turns every result of a completed test into a performance
// update, keyed by chapter.
func UpdatesFromTest(test models.Test) []models.WordPerformanceUpdate {
	results := test.Results()
	out := make([]models.WordPerformanceUpdate, 0, len(results))
	for _, r := range results {
		out = append(out, models.WordPerformanceUpdate{
			WordID:    r.WordID,
			IsCorrect: r.IsCorrect,
			UsedHint:  r.HintsUsed > 0,
			TimeSpent: time.Duration(r.ResponseTimeMs) * time.Millisecond,
			Context:   r.Chapter,
		})
	}
	return out
}
