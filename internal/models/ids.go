package models

import "github.com/google/uuid"

// Identifiers are distinct string types so a WordID can never be passed where
// a TestID is expected without an explicit conversion.
type (
	UserID  string
	WordID  string
	TestID  string
	StatsID string
)

func NewWordID() WordID   { return WordID(uuid.NewString()) }
func NewTestID() TestID   { return TestID(uuid.NewString()) }
func NewStatsID() StatsID { return StatsID(uuid.NewString()) }
