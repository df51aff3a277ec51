package engine

import (
	"math"

	"github.com/vytor/lexiflash/internal/models"
)

// Difficulty model. Every test-level and word-level tier in the application
// is derived from these values; analytics reuses them for its predictions.
const (
	// WordLengthCeiling is the average rune count that maps to full length complexity.
	WordLengthCeiling = 12.0
	// SentenceTokenCeiling is the average example-sentence token count that
	// maps to full sentence complexity.
	SentenceTokenCeiling = 15.0

	LengthWeight   = 0.6
	SentenceWeight = 0.4

	// NeutralAccuracy is assumed for words without history, so they neither
	// raise nor lower difficulty.
	NeutralAccuracy = 50.0
	// AdjustmentWeight scales (NeutralAccuracy - accuracy) into ±25 points.
	AdjustmentWeight = 0.5

	// Test level ceilings over finalDifficulty (0-100).
	EasyCeiling   = 25.0
	MediumCeiling = 50.0
	HardCeiling   = 75.0
)

// Mastery curve: mastery = round(min(100, 80*accuracy + 4*min(streak, 5))).
const (
	MasteryAccuracyWeight = 80.0
	MasteryStreakStep     = 4.0
	MasteryStreakCap      = 5

	// LowMastery marks words that prioritizeDifficult pulls forward.
	LowMastery = 40

	// Word tiers: mastery >= WordEasyMastery is easy, >= WordMediumMastery
	// medium, anything below hard. A streak of StreakBump or more moves the
	// word one tier easier.
	WordEasyMastery   = 75
	WordMediumMastery = 40
	StreakBump        = 3
)

// LevelFor maps a 0-100 difficulty onto a test level.
func LevelFor(final float64) models.Difficulty {
	switch {
	case final < EasyCeiling:
		return models.DifficultyEasy
	case final < MediumCeiling:
		return models.DifficultyMedium
	case final < HardCeiling:
		return models.DifficultyHard
	default:
		return models.DifficultyExpert
	}
}

// MasteryLevel is non-decreasing in both accuracy and streak and bounded to 0-100.
func MasteryLevel(timesCorrect, timesShown, streak int) int {
	if timesShown <= 0 {
		return 0
	}
	accuracy := float64(timesCorrect) / float64(timesShown)
	if streak > MasteryStreakCap {
		streak = MasteryStreakCap
	}
	if streak < 0 {
		streak = 0
	}
	m := MasteryAccuracyWeight*accuracy + MasteryStreakStep*float64(streak)
	return int(math.Round(clamp(m, 0, 100)))
}

// WordDifficulty predicts the tier of a single word from mastery and streak.
func WordDifficulty(mastery, streak int) models.Difficulty {
	tier := 2
	switch {
	case mastery >= WordEasyMastery:
		tier = 0
	case mastery >= WordMediumMastery:
		tier = 1
	}
	if streak >= StreakBump && tier > 0 {
		tier--
	}
	return [...]models.Difficulty{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard}[tier]
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
