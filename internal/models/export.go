package models

import "time"

// ExportVersion is bumped whenever the export layout changes incompatibly.
const ExportVersion = "1.0"

// ExportData is everything a user owns, in one transferable document.
type ExportData struct {
	Version         string            `json:"version"`
	ExportedAt      time.Time         `json:"exported_at"`
	UserID          UserID            `json:"user_id"`
	Words           []Word            `json:"words"`
	Tests           []Test            `json:"tests"`
	Stats           Stats             `json:"stats"`
	WordPerformance []WordPerformance `json:"word_performance"`
}

type ImportResult struct {
	Words           int `json:"words"`
	Tests           int `json:"tests"`
	WordPerformance int `json:"word_performance"`
}
