package jobs

import (
	"github.com/vytor/lexiflash/internal/models"
	"github.com/vytor/lexiflash/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	pool  *worker.Pool
	stats worker.StatsRefresher
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(pool *worker.Pool, stats worker.StatsRefresher) JobQueue {
	return &WorkerQueue{pool: pool, stats: stats}
}

func (q *WorkerQueue) EnqueueStatsRefresh(userID models.UserID) error {
	return q.pool.Submit(&worker.RefreshStatsJob{Stats: q.stats, UserID: userID})
}
