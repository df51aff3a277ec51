package jobs

import "github.com/vytor/lexiflash/internal/models"

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueStatsRefresh(userID models.UserID) error
}
