package repository

import (
	"github.com/vytor/lexiflash/internal/models"
)

// PerformanceIndex keys a user's performance records by word.
func PerformanceIndex(perf []models.WordPerformance) map[models.WordID]models.WordPerformance {
	out := make(map[models.WordID]models.WordPerformance, len(perf))
	for _, p := range perf {
		out[p.WordID] = p
	}
	return out
}
