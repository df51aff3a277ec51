package worker

import (
	"context"

	"github.com/vytor/lexiflash/internal/models"
)

// StatsRefresher is the part of the stats service the jobs need.
// Declared here so the worker package does not import services.
type StatsRefresher interface {
	RefreshStats(ctx context.Context, userID models.UserID) error
}
