package engine

import (
	"strings"
	"unicode/utf8"

	"github.com/vytor/lexiflash/internal/models"
)

// CalculateDifficulty scores a set of words for one user. Words without any
// performance history count at NeutralAccuracy.
func (e *Engine) CalculateDifficulty(words []models.Word, perf map[models.WordID]models.WordPerformance) models.DifficultyAnalysis {
	if len(words) == 0 {
		return models.DifficultyAnalysis{
			Level:   LevelFor(0),
			Factors: models.DifficultyFactors{UserPerformance: NeutralAccuracy},
		}
	}

	var runes, tokens float64
	var sentences int
	var shown, correct int
	for _, w := range words {
		runes += float64(utf8.RuneCountInString(w.English)+utf8.RuneCountInString(w.Italian)) / 2
		for _, s := range w.Sentences {
			tokens += float64(len(strings.Fields(s)))
			sentences++
		}
		if p, ok := perf[w.ID]; ok {
			shown += p.TimesShown
			correct += p.TimesCorrect
		}
	}

	avgLength := runes / float64(len(words))
	lengthFactor := clamp(avgLength/WordLengthCeiling, 0, 1) * 100

	var sentenceFactor float64
	if sentences > 0 {
		sentenceFactor = clamp(tokens/float64(sentences)/SentenceTokenCeiling, 0, 1) * 100
	}

	accuracy := NeutralAccuracy
	if shown > 0 {
		accuracy = float64(correct) / float64(shown) * 100
	}

	base := LengthWeight*lengthFactor + SentenceWeight*sentenceFactor
	adjustment := (NeutralAccuracy - accuracy) * AdjustmentWeight
	final := clamp(base+adjustment, 0, 100)

	return models.DifficultyAnalysis{
		BaseComplexity:        base,
		PerformanceAdjustment: adjustment,
		FinalDifficulty:       final,
		Level:                 LevelFor(final),
		Factors: models.DifficultyFactors{
			WordLength:         lengthFactor,
			SentenceComplexity: sentenceFactor,
			UserPerformance:    accuracy,
			TimesPracticed:     float64(shown) / float64(len(words)),
		},
	}
}

// PredictWordDifficulty labels a word for a test result. Words never seen
// fall back to their manual flag.
func PredictWordDifficulty(w models.Word, p *models.WordPerformance) models.Difficulty {
	if p == nil || p.TimesShown == 0 {
		if w.Difficult {
			return models.DifficultyHard
		}
		return models.DifficultyMedium
	}
	return WordDifficulty(p.MasteryLevel, p.CurrentStreak)
}
