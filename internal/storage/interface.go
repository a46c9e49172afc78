package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when nothing is stored under the key.
var ErrNotFound = errors.New("blob not found")

// BlobStore is a key-value store holding whole serialized blobs.
// Backends: memory, file (local filesystem), postgres, redis, mongo.
type BlobStore interface {
	// Load returns the blob stored under key or ErrNotFound
	Load(ctx context.Context, key string) ([]byte, error)

	// Save replaces the blob stored under key
	Save(ctx context.Context, key string, data []byte) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend connection
	Close(ctx context.Context) error
}
