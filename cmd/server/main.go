package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	grpcapi "blackrent-backend/internal/api/grpc"
	httpapi "blackrent-backend/internal/api/http"
	"blackrent-backend/internal/config"
	"blackrent-backend/internal/logger"
	"blackrent-backend/internal/repository/postgres"
	"blackrent-backend/internal/security"
	"blackrent-backend/internal/service"
	"blackrent-backend/internal/storage"
	"blackrent-backend/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting BlackRent Backend...", "log_level", cfg.Log.Level, "environment", cfg.Server.Environment)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "health_address", cfg.GetHealthAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Email configuration", "provider", cfg.Email.Provider)

	shutdownTracing := telemetry.Setup(cfg.Telemetry)

	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(db); err != nil {
			logger.Error("Failed to run migrations", "error", err)
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	store := postgres.NewStore(db, postgres.CacheTTLs{
		Vehicles:    cfg.Cache.Vehicles(),
		Rentals:     cfg.Cache.Rentals(),
		Customers:   cfg.Cache.Customers(),
		Permissions: cfg.Cache.Permissions(),
	})

	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	files, err := storage.NewLocalStore(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
	if err != nil {
		logger.Error("Failed to initialize file storage", "error", err)
		log.Fatalf("Failed to initialize file storage: %v", err)
	}
	logger.Info("Using local file storage", "upload_dir", cfg.Storage.UploadDir)

	notifier := service.NewNotifier(cfg.Email)

	// Services
	permSvc := service.NewPermissionService(store.UserRepository, store.CompanyRepository)
	vehicleSvc := service.NewVehicleService(store.VehicleRepository, permSvc)
	rentalSvc := service.NewRentalService(store.RentalRepository, store.VehicleRepository, store.CustomerRepository, permSvc)
	customerSvc := service.NewCustomerService(store.CustomerRepository, permSvc)
	companySvc := service.NewCompanyService(store.CompanyRepository, permSvc)
	insuranceSvc := service.NewInsuranceService(store.InsurerRepository, store.InsuranceRepository, permSvc)
	expenseSvc := service.NewExpenseService(store.ExpenseRepository, permSvc)
	settlementSvc := service.NewSettlementService(store.SettlementRepository, store.RentalRepository, store.ExpenseRepository, permSvc)

	svc := httpapi.Services{
		Auth:         service.NewAuthService(store.UserRepository, tokenManager),
		Users:        service.NewUserService(store.UserRepository, store.CompanyRepository, permSvc),
		Vehicles:     vehicleSvc,
		Rentals:      rentalSvc,
		Customers:    customerSvc,
		Companies:    companySvc,
		Insurances:   insuranceSvc,
		Expenses:     expenseSvc,
		Leasings:     service.NewLeasingService(store.LeasingRepository, store.VehicleRepository, permSvc),
		Settlements:  settlementSvc,
		Protocols:    service.NewProtocolService(store.ProtocolRepository, store.RentalRepository, store.VehicleRepository, files, permSvc),
		EmailStaging: service.NewEmailStagingService(store.RentalRepository, store.VehicleRepository, store.CustomerRepository, store.ReportRepository, notifier, cfg.Email.AdminEmails, permSvc),
		Availability: service.NewAvailabilityService(store.ReportRepository, store.VehicleRepository, permSvc),
		Bulk:         service.NewBulkDataService(vehicleSvc, rentalSvc, customerSvc, companySvc, insuranceSvc, expenseSvc, settlementSvc),
		Maintenance:  service.NewMaintenanceService(store.ProtocolRepository, files, permSvc, cfg.IsProduction()),
	}

	handler := httpapi.NewHandler(svc, tokenManager, httpapi.Options{
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		MaxUploadBytes: cfg.Storage.MaxFileSize << 20,
		AllowedTypes:   cfg.Storage.AllowedTypes,
		Environment:    cfg.Server.Environment,
	})

	var limiter *httpapi.RateLimiter
	if cfg.RateLimit.Requests > 0 {
		limiter = httpapi.NewRateLimiter(cfg.RateLimit.Requests, time.Duration(cfg.RateLimit.WindowSeconds)*time.Second)
	}

	httpServer := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      otelhttp.NewHandler(handler.Routes(limiter), "blackrent-api"),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	healthServer := grpcapi.NewHealthServer(db)
	healthLis, err := net.Listen("tcp", cfg.GetHealthAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetHealthAddress())
		log.Fatalf("Failed to listen: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return healthServer.Serve(healthLis)
	})

	g.Go(func() error {
		healthServer.Watch(gctx, 30*time.Second)
		return nil
	})

	if limiter != nil {
		g.Go(func() error {
			// drop idle client limiters
			ticker := time.NewTicker(10 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					limiter.Reset()
				}
			}
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down servers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		healthServer.Stop()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown error", "error", err)
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("Tracing shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", "error", err)
		log.Fatalf("Server error: %v", err)
	}
	logger.Info("BlackRent Backend stopped. Goodbye!")
}
