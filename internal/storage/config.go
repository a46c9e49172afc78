package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vehicle-rental-backend/internal/logger"
)

// Config holds blob storage configuration
type Config struct {
	Type        string // "memory", "file", "postgres", "redis" or "mongo"
	DataDir     string // For file storage
	PostgresDSN string
	RedisAddr   string
	RedisPass   string
	RedisDB     int
	KeyPrefix   string // Redis key prefix
	MongoURI    string
	MongoDB     string
	MongoColl   string
}

// Open creates the configured backend and verifies it is reachable.
func Open(ctx context.Context, cfg Config) (BlobStore, error) {
	switch cfg.Type {
	case "", "memory":
		logger.Info("Using in-memory blob storage")
		return NewMemoryStorage(), nil

	case "file":
		logger.Info("Using file blob storage", "data_dir", cfg.DataDir)
		return NewFileStorage(cfg.DataDir)

	case "postgres":
		logger.Info("Using postgres blob storage")
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		store := NewPostgresStorage(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return store, nil

	case "redis":
		logger.Info("Using redis blob storage", "addr", cfg.RedisAddr)
		return NewRedisStorage(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.KeyPrefix)

	case "mongo":
		logger.Info("Using mongo blob storage", "database", cfg.MongoDB, "collection", cfg.MongoColl)
		return NewMongoStorage(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoColl)

	default:
		return nil, fmt.Errorf("storage type '%s' not supported", cfg.Type)
	}
}
