package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "vehicle-rental-backend/internal/api/http"
	"vehicle-rental-backend/internal/config"
	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/jobs"
	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/registry"
	"vehicle-rental-backend/internal/repository/blob"
	"vehicle-rental-backend/internal/repository/memory"
	"vehicle-rental-backend/internal/scheduler"
	"vehicle-rental-backend/internal/security"
	"vehicle-rental-backend/internal/service"
	"vehicle-rental-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "Path to configuration file (defaults are used when empty)")
	noCron := flag.Bool("no-cron", false, "Do not run scheduled jobs in this process")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Vehicle Rental Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Storage configuration", "type", cfg.Storage.Type)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Storage
	store, err := storage.Open(ctx, storageConfig(cfg))
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

	// Initialize Repositories
	rentalRepo := blob.NewRentalRepository(store)
	userRepo := blob.NewUserRepository(store)
	vehicles := cfg.Catalog.Vehicles
	if len(vehicles) == 0 {
		vehicles = memory.DefaultVehicles()
	}
	vehicleRepo := memory.NewVehicleRepository(vehicles)

	// Rehydrate the rental registry
	reg := registry.New(ctx, rentalRepo, registry.Options{
		EnforceSingleActive: cfg.Registry.EnforceSingleActive,
	})

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL())

	// Initialize Services
	catalogSvc := service.NewCatalogService(vehicleRepo)
	bookingSvc := service.NewBookingService(vehicleRepo, reg, cfg.PaymentDelay(), cfg.DraftTTL())
	trackingSvc := service.NewTrackingService(reg, service.TrackingOptions{
		TickInterval: cfg.TickInterval(),
		StartMinutes: cfg.Tracking.StartMinutes,
		Origin:       domain.Position{Lat: cfg.Tracking.OriginLat, Lng: cfg.Tracking.OriginLng},
		Jitter:       cfg.Tracking.Jitter,
	})
	defer trackingSvc.Close()
	historySvc := service.NewHistoryService(reg)
	sessionSvc := service.NewSessionService(userRepo, tokenManager)

	// Scheduled jobs run in-process since bookings live in memory
	if !*noCron {
		jobRunner := jobs.NewJobRunner(&jobs.Services{
			Bookings: bookingSvc,
			History:  historySvc,
			Rentals:  reg,
		}, cfg)
		cronScheduler := scheduler.NewScheduler(jobRunner)
		cronScheduler.Start()
		defer cronScheduler.Stop()
	}

	// Set up HTTP server
	router := httpapi.NewRouter(httpapi.Services{
		Catalog:  catalogSvc,
		Bookings: bookingSvc,
		Tracking: trackingSvc,
		History:  historySvc,
		Session:  sessionSvc,
		Rentals:  reg,
	}, tokenManager)

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}

func storageConfig(cfg *config.Config) storage.Config {
	sc := storage.Config{
		Type:      cfg.Storage.Type,
		DataDir:   cfg.Storage.DataDir,
		RedisAddr: cfg.Redis.Addr,
		RedisPass: cfg.Redis.Password,
		RedisDB:   cfg.Redis.DB,
		KeyPrefix: cfg.Redis.KeyPrefix,
		MongoURI:  cfg.Mongo.URI,
		MongoDB:   cfg.Mongo.Database,
		MongoColl: cfg.Mongo.Collection,
	}
	if cfg.Storage.Type == "postgres" {
		sc.PostgresDSN = cfg.GetDatabaseConnectionString()
	}
	return sc
}
