package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vehicle-rental-backend/internal/logger"

	_ "github.com/lib/pq"
)

const createBlobTable = `CREATE TABLE IF NOT EXISTS kv_blobs (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_on TIMESTAMPTZ NOT NULL
)`

// PostgresStorage keeps blobs in the kv_blobs table.
type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(db *sql.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

// EnsureSchema creates the blob table when missing.
func (s *PostgresStorage) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, createBlobTable)
	if err != nil {
		return fmt.Errorf("failed to create kv_blobs table: %w", err)
	}
	return nil
}

func (s *PostgresStorage) Load(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM kv_blobs WHERE key = $1`
	logger.DatabaseCall("select", query, "key", key)

	var data []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.DatabaseResult("select", 0, err, "key", key)
		return nil, err
	}
	logger.DatabaseResult("select", 1, nil, "key", key)
	return data, nil
}

func (s *PostgresStorage) Save(ctx context.Context, key string, data []byte) error {
	query := `INSERT INTO kv_blobs (key, value, updated_on) VALUES ($1, $2, $3)
	          ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_on = EXCLUDED.updated_on`
	logger.DatabaseCall("upsert", query, "key", key, "bytes", len(data))

	res, err := s.db.ExecContext(ctx, query, key, data, time.Now().UTC())
	if err != nil {
		logger.DatabaseResult("upsert", 0, err, "key", key)
		return err
	}
	rows, _ := res.RowsAffected()
	logger.DatabaseResult("upsert", rows, nil, "key", key)
	return nil
}

func (s *PostgresStorage) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv_blobs WHERE key = $1`, key)
	return err
}

func (s *PostgresStorage) Close(ctx context.Context) error {
	return s.db.Close()
}
