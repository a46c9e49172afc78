package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"vehicle-rental-backend/internal/logger"
)

// FileStorage implements BlobStore on the local filesystem, one file per key.
type FileStorage struct {
	mu      sync.Mutex
	dataDir string
}

// NewFileStorage creates the data directory if it doesn't exist
func NewFileStorage(dataDir string) (*FileStorage, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStorage{dataDir: dataDir}, nil
}

func (f *FileStorage) Load(ctx context.Context, key string) ([]byte, error) {
	fullPath := f.pathFor(key)
	logger.Debug("Reading blob file", "key", key, "path", fullPath)

	data, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return data, nil
}

// Save writes to a temp file and renames it so readers never see a partial blob.
func (f *FileStorage) Save(ctx context.Context, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fullPath := f.pathFor(key)
	tmp, err := os.CreateTemp(f.dataDir, ".blob-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return fmt.Errorf("failed to replace blob: %w", err)
	}
	return nil
}

func (f *FileStorage) Delete(ctx context.Context, key string) error {
	err := os.Remove(f.pathFor(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (f *FileStorage) Close(ctx context.Context) error {
	return nil
}

// pathFor maps a key to a file name that is safe on any filesystem
func (f *FileStorage) pathFor(key string) string {
	return filepath.Join(f.dataDir, encodeKey(key)+".json")
}

func encodeKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:16])
}
