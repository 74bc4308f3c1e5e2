package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"blackrent-backend/internal/config"
	"blackrent-backend/internal/jobs"
)

func TestNewScheduler_RegistersConfiguredJobs(t *testing.T) {
	cfg := &config.Config{Scheduler: config.SchedulerConfig{
		AdvanceRentalStatuses:     "0 5 * * * *",
		GenerateRecurringExpenses: "0 0 1 * * *",
		SendSTKReminders:          "0 0 7 * * *",
		PurgeSpamRentals:          "0 0 3 * * 0",
	}}

	s := NewScheduler(jobs.NewJobRunner(nil, &jobs.Services{}, cfg))
	assert.Equal(t, 4, s.JobCount())
	assert.True(t, s.IsRunning())
}

func TestNewScheduler_SkipsInvalidAndEmptySchedules(t *testing.T) {
	cfg := &config.Config{Scheduler: config.SchedulerConfig{
		AdvanceRentalStatuses: "0 5 * * * *",
		SendSTKReminders:      "not a cron expression",
	}}

	s := NewScheduler(jobs.NewJobRunner(nil, &jobs.Services{}, cfg))
	assert.Equal(t, 1, s.JobCount())
}
