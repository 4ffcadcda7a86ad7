package daemon

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/ssite/internal/watch"
)

// Enqueuer accepts work for the watch loop.
type Enqueuer interface {
	Enqueue(req watch.Request) bool
}

// Scheduler wraps gocron scheduler for the periodic resync.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a new scheduler instance.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// ScheduleResync submits a full build to target every interval. A tick that fires while
// the previous one is still blocked on the queue is rescheduled, not stacked.
func (s *Scheduler) ScheduleResync(interval time.Duration, target Enqueuer) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			slog.Debug("Scheduling resync build")
			if !target.Enqueue(watch.Request{FullBuild: true}) {
				slog.Debug("Watch loop stopped; resync dropped")
			}
		}),
		gocron.WithName("resync"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create resync job: %w", err)
	}
	return job.ID().String(), nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}
