// Package scheduler runs periodic maintenance such as the nightly stats refresh.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/vytor/lexiflash/internal/jobs"
	"github.com/vytor/lexiflash/internal/logger"
	"github.com/vytor/lexiflash/internal/models"
)

// DefaultRefreshAt is the local time of the nightly stats refresh.
const DefaultRefreshAt = "00:05"

// UserLister returns every user that has stats.
type UserLister interface {
	ListUserIDs(ctx context.Context) ([]models.UserID, error)
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	users     UserLister
	queue     jobs.JobQueue
	refreshAt string
	log       *logger.Logger
}

// New creates a scheduler whose jobs run in loc.
func New(loc *time.Location, refreshAt string, users UserLister, queue jobs.JobQueue) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if refreshAt == "" {
		refreshAt = DefaultRefreshAt
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		users:     users,
		queue:     queue,
		refreshAt: refreshAt,
		log:       logger.Default().WithPrefix("scheduler"),
	}
}

// Start registers the jobs and runs the scheduler in the background.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Day().At(s.refreshAt).Do(s.RefreshAll); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	s.log.Info("scheduler started: stats refresh daily at %s", s.refreshAt)
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.log.Info("scheduler stopped")
}

// RefreshAll enqueues a stats refresh for every user. It returns the number
// of jobs queued.
func (s *Scheduler) RefreshAll() int {
	ctx := logger.NewContext(context.Background(), s.log)
	ids, err := s.users.ListUserIDs(ctx)
	if err != nil {
		s.log.Error("failed to list users for stats refresh: %v", err)
		return 0
	}

	queued := 0
	for _, id := range ids {
		if err := s.queue.EnqueueStatsRefresh(id); err != nil {
			s.log.Warn("failed to enqueue stats refresh: user_id=%s: %v", id, err)
			continue
		}
		queued++
	}
	s.log.Info("queued stats refresh for %d of %d users", queued, len(ids))
	return queued
}
