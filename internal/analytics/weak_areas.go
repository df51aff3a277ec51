package analytics

import (
	"sort"

	"github.com/vytor/lexiflash/internal/engine"
	"github.com/vytor/lexiflash/internal/models"
)

type GroupBy string

const (
	GroupByChapter  GroupBy = "chapter"
	GroupByCategory GroupBy = "category"
)

func (g GroupBy) Valid() bool {
	return g == GroupByChapter || g == GroupByCategory
}

type WeakArea struct {
	ID           string  `json:"id"`
	Accuracy     float64 `json:"accuracy"`
	TimesShown   int     `json:"times_shown"`
	TimesCorrect int     `json:"times_correct"`
	Words        int     `json:"words"`
}

// AnalyzeWeakAreas groups answers by chapter or category and orders the
// groups by ascending accuracy, ties by descending times shown and then id.
// Groups never practised are left out. Per-word performance wins over the
// word's own counters when both exist.
func AnalyzeWeakAreas(words []models.Word, perf map[models.WordID]models.WordPerformance, groupBy GroupBy) []WeakArea {
	groups := map[string]*WeakArea{}
	for _, w := range words {
		key := w.Chapter
		if groupBy == GroupByCategory {
			key = string(w.Category)
		}
		shown, correct := w.TimesShown, w.TimesCorrect
		if p, ok := perf[w.ID]; ok && p.TimesShown > 0 {
			shown, correct = p.TimesShown, p.TimesCorrect
		}
		g, ok := groups[key]
		if !ok {
			g = &WeakArea{ID: key}
			groups[key] = g
		}
		g.Words++
		g.TimesShown += shown
		g.TimesCorrect += correct
	}

	out := make([]WeakArea, 0, len(groups))
	for _, g := range groups {
		if g.TimesShown == 0 {
			continue
		}
		g.Accuracy = float64(g.TimesCorrect) / float64(g.TimesShown) * 100
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Accuracy != b.Accuracy {
			return a.Accuracy < b.Accuracy
		}
		if a.TimesShown != b.TimesShown {
			return a.TimesShown > b.TimesShown
		}
		return a.ID < b.ID
	})
	return out
}

// IDs returns the identifiers of areas in order.
func IDs(areas []WeakArea) []string {
	out := make([]string, len(areas))
	for i, a := range areas {
		out[i] = a.ID
	}
	return out
}

// PredictNextDifficulty maps mastery and streak to a word tier using the
// same thresholds the test engine labels results with.
func PredictNextDifficulty(p models.WordPerformance) models.Difficulty {
	return engine.WordDifficulty(p.MasteryLevel, p.CurrentStreak)
}
