package worker

import (
	"context"

	"github.com/vytor/lexiflash/internal/logger"
	"github.com/vytor/lexiflash/internal/models"
)

// RefreshStatsJob expires a lapsed streak and rebuilds the rollups of one user.
type RefreshStatsJob struct {
	Stats  StatsRefresher
	UserID models.UserID
}

func (j *RefreshStatsJob) Name() string { return "refresh_stats" }

func (j *RefreshStatsJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("user_id", j.UserID)
	log.Debug("refreshing stats")
	if err := j.Stats.RefreshStats(ctx, j.UserID); err != nil {
		log.Error("failed to refresh stats: %v", err)
		return err
	}
	return nil
}
