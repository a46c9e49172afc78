package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vehicle-rental-backend/internal/config"
	"vehicle-rental-backend/internal/jobs"
	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/repository/blob"
	"vehicle-rental-backend/internal/scheduler"
	"vehicle-rental-backend/internal/service"
	"vehicle-rental-backend/internal/storage"
)

// The standalone runner only reads persisted rentals, fresh on every run, and
// never writes them. Booking drafts live in the server process, which sweeps
// them itself.
func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "Path to configuration file (defaults are used when empty)")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'rental-stats', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Vehicle Rental Cronjob Runner...", "log_level", cfg.Log.Level, "storage", cfg.Storage.Type)

	ctx := context.Background()
	store, err := storage.Open(ctx, storage.Config{
		Type:        cfg.Storage.Type,
		DataDir:     cfg.Storage.DataDir,
		PostgresDSN: cfg.GetDatabaseConnectionString(),
		RedisAddr:   cfg.Redis.Addr,
		RedisPass:   cfg.Redis.Password,
		RedisDB:     cfg.Redis.DB,
		KeyPrefix:   cfg.Redis.KeyPrefix,
		MongoURI:    cfg.Mongo.URI,
		MongoDB:     cfg.Mongo.Database,
		MongoColl:   cfg.Mongo.Collection,
	})
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Error("Failed to close storage", "error", err)
		}
	}()
	if cfg.Storage.Type == "memory" {
		logger.Warn("Memory storage is local to this process, no rentals will be found")
	}

	// Read-only view of the stored rentals
	rentals := jobs.NewStoredRentals(blob.NewRentalRepository(store))
	jobServices := &jobs.Services{
		History: service.NewHistoryService(rentals),
		Rentals: rentals,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "rental-stats":
		jobRunner.ReportRentalStats()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		log.Fatalf("Unknown job: %s", jobName)
	}
}
