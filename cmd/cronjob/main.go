package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"blackrent-backend/internal/config"
	"blackrent-backend/internal/jobs"
	"blackrent-backend/internal/logger"
	"blackrent-backend/internal/repository/postgres"
	"blackrent-backend/internal/scheduler"
	"blackrent-backend/internal/service"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'advance-rental-statuses', 'all-daily')")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting BlackRent Cronjob Runner...", "log_level", cfg.Log.Level)

	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db, postgres.CacheTTLs{
		Vehicles:    cfg.Cache.Vehicles(),
		Rentals:     cfg.Cache.Rentals(),
		Customers:   cfg.Cache.Customers(),
		Permissions: cfg.Cache.Permissions(),
	})

	permSvc := service.NewPermissionService(store.UserRepository, store.CompanyRepository)

	jobServices := &jobs.Services{
		Vehicles: store.VehicleRepository,
		Expenses: service.NewExpenseService(store.ExpenseRepository, permSvc),
		Notifier: service.NewNotifier(cfg.Email),
		Caches:   store,
	}

	jobRunner := jobs.NewJobRunner(store.DB(), jobServices, cfg)

	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	cronScheduler := scheduler.NewScheduler(jobRunner)
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

var jobNames = []string{
	"advance-rental-statuses",
	"generate-recurring-expenses",
	"send-stk-reminders",
	"purge-spam-rentals",
	"all-daily",
}

func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "advance-rental-statuses":
		jobRunner.AdvanceRentalStatuses()
	case "generate-recurring-expenses":
		jobRunner.GenerateRecurringExpenses()
	case "send-stk-reminders":
		jobRunner.SendSTKReminders()
	case "purge-spam-rentals":
		jobRunner.PurgeSpamRentals()
	case "all-daily":
		jobRunner.RunAllDailyJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		for _, name := range jobNames {
			fmt.Printf("  - %s\n", name)
		}
		os.Exit(1)
	}
}
