package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"blackrent-backend/internal/jobs"
	"blackrent-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner.
// Schedules use six fields (seconds first) and run in UTC.
func NewScheduler(jobRunner *jobs.JobRunner) *Scheduler {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	s.registerJobs()
	return s
}

func (s *Scheduler) registerJobs() {
	cfg := s.jobs.Config().Scheduler

	schedule := []struct {
		name string
		expr string
		run  func()
	}{
		{"AdvanceRentalStatuses", cfg.AdvanceRentalStatuses, s.jobs.AdvanceRentalStatuses},
		{"GenerateRecurringExpenses", cfg.GenerateRecurringExpenses, s.jobs.GenerateRecurringExpenses},
		{"SendSTKReminders", cfg.SendSTKReminders, s.jobs.SendSTKReminders},
		{"PurgeSpamRentals", cfg.PurgeSpamRentals, s.jobs.PurgeSpamRentals},
	}

	registered := 0
	for _, job := range schedule {
		if job.expr == "" {
			logger.Warn("Job has no schedule, skipping", "job", job.name)
			continue
		}
		if _, err := s.cron.AddFunc(job.expr, job.run); err != nil {
			logger.Error("Failed to register job", "job", job.name, "schedule", job.expr, "error", err)
			continue
		}
		registered++
	}

	logger.Info("Cron jobs registered", "count", registered)
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop waits for running jobs and stops the scheduler
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// IsRunning returns true if the scheduler has jobs registered
func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}

// JobCount reports how many jobs were registered
func (s *Scheduler) JobCount() int {
	return len(s.cron.Entries())
}
