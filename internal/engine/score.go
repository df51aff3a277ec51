package engine

import (
	"math"
	"time"
)

// CalculateScore returns the 0-100 percentage for a test. Hints cost up to
// HintPenalty of the score; time only counts when TimeAffectsScore is set.
func (e *Engine) CalculateScore(correct, total, hints int, timeSpent time.Duration) int {
	if total <= 0 {
		return 0
	}
	base := float64(correct) / float64(total) * 100

	hintShare := math.Min(float64(hints)/float64(total), 1)
	if hintShare < 0 {
		hintShare = 0
	}
	score := base - e.settings.HintPenalty*100*hintShare

	if e.settings.TimeAffectsScore {
		switch e.ClassifyResponseTime(timeSpent / time.Duration(total)) {
		case ResponseVerySlow:
			score -= 10
		case ResponseSlow:
			score -= 5
		}
	}
	return int(math.Round(clamp(score, 0, 100)))
}

// IsVictory reports whether a percentage clears the victory threshold.
func (e *Engine) IsVictory(percentage int) bool {
	return percentage >= e.settings.VictoryScore
}
