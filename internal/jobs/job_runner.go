package jobs

import (
	"database/sql"
	"time"

	"blackrent-backend/internal/config"
	"blackrent-backend/internal/logger"
	"blackrent-backend/internal/repository"
	"blackrent-backend/internal/service"
)

// CacheInvalidator drops in-process repository caches after a job changed
// tables directly
type CacheInvalidator interface {
	InvalidateCaches()
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	db       *sql.DB
	services *Services
	config   *config.Config
	now      func() time.Time
}

// Services holds the dependencies needed by jobs
type Services struct {
	Vehicles repository.VehicleRepository
	Expenses service.ExpenseService
	Notifier service.Notifier
	Caches   CacheInvalidator
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(db *sql.DB, services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		db:       db,
		services: services,
		config:   cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Config returns the runner configuration
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	start := time.Now()
	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName, "duration_ms", time.Since(start).Milliseconds())
}

func (jr *JobRunner) invalidateCaches() {
	if jr.services.Caches != nil {
		jr.services.Caches.InvalidateCaches()
	}
}

// RunAllDailyJobs runs every daily job (for manual execution)
func (jr *JobRunner) RunAllDailyJobs() {
	jr.AdvanceRentalStatuses()
	jr.GenerateRecurringExpenses()
	jr.SendSTKReminders()
}
