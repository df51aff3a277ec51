package engine

import (
	"math/rand"
	"sort"

	"github.com/vytor/lexiflash/internal/errors"
	"github.com/vytor/lexiflash/internal/models"
)

// SelectWords returns the ordered ids of the words a test should ask.
// perf is optional and only consulted for low-mastery prioritisation.
func (e *Engine) SelectWords(words []models.Word, cfg models.TestConfig, history []models.Test, perf map[models.WordID]models.WordPerformance) ([]models.WordID, error) {
	eligible := filterEligible(words, cfg)
	if len(eligible) == 0 {
		return nil, errors.Wrap(errors.ErrInsufficientWords, "no eligible words for a %s test", cfg.Type)
	}

	if cfg.RandomizeOrder {
		var rng *rand.Rand
		if cfg.Seed != nil {
			rng = rand.New(rand.NewSource(*cfg.Seed))
		} else {
			rng = rand.New(rand.NewSource(e.now().UnixNano()))
		}
		rng.Shuffle(len(eligible), func(i, j int) {
			eligible[i], eligible[j] = eligible[j], eligible[i]
		})
	}

	recent := map[models.WordID]bool{}
	if cfg.ExcludeRecentlyShown {
		recent = e.recentlyShown(eligible, history)
	}
	priority := func(w models.Word) bool {
		if !cfg.PrioritizeDifficult {
			return false
		}
		if w.Difficult {
			return true
		}
		p, ok := perf[w.ID]
		return ok && p.TimesShown > 0 && p.MasteryLevel < LowMastery
	}

	// Stable, so the shuffled (or input) order survives inside each group.
	sort.SliceStable(eligible, func(i, j int) bool {
		ri, rj := recent[eligible[i].ID], recent[eligible[j].ID]
		if ri != rj {
			return !ri
		}
		return priority(eligible[i]) && !priority(eligible[j])
	})

	limit := len(eligible)
	if cfg.MaxWords > 0 && cfg.MaxWords < limit {
		limit = cfg.MaxWords
	} else if cfg.MaxWords <= 0 && cfg.ExcludeRecentlyShown {
		fresh := 0
		for _, w := range eligible {
			if !recent[w.ID] {
				fresh++
			}
		}
		if fresh > 0 {
			limit = fresh
		}
	}

	ids := make([]models.WordID, 0, limit)
	for _, w := range eligible[:limit] {
		ids = append(ids, w.ID)
	}
	return ids, nil
}

func filterEligible(words []models.Word, cfg models.TestConfig) []models.Word {
	chapters := make(map[string]bool, len(cfg.SelectedChapters))
	for _, c := range cfg.SelectedChapters {
		chapters[c] = true
	}

	seen := make(map[models.WordID]bool, len(words))
	out := make([]models.Word, 0, len(words))
	for _, w := range words {
		if seen[w.ID] {
			continue
		}
		switch cfg.Type {
		case models.TestTypeReview:
			if !w.Learned || !cfg.IncludeLearnedWords {
				continue
			}
		case models.TestTypeDifficult:
			if !w.Difficult {
				continue
			}
			if w.Learned && !cfg.IncludeLearnedWords {
				continue
			}
		default:
			if w.Learned && !cfg.IncludeLearnedWords {
				continue
			}
			if w.Difficult && !cfg.IncludeDifficultWords {
				continue
			}
		}
		if len(chapters) > 0 && !chapters[w.Chapter] {
			continue
		}
		seen[w.ID] = true
		out = append(out, w)
	}
	return out
}

func (e *Engine) recentlyShown(words []models.Word, history []models.Test) map[models.WordID]bool {
	cutoff := e.now().Add(-e.settings.RecencyWindow)
	recent := make(map[models.WordID]bool)
	for _, w := range words {
		if w.LastShown != nil && w.LastShown.After(cutoff) {
			recent[w.ID] = true
		}
	}
	for _, t := range history {
		if !t.Timestamp.After(cutoff) {
			continue
		}
		for _, r := range t.Results() {
			recent[r.WordID] = true
		}
	}
	return recent
}
