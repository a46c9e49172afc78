package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/repository"
	"vehicle-rental-backend/internal/storage"
)

// RentalsKey is the storage key of the serialized rental collection.
const RentalsKey = "rentals"

type rentalRepository struct {
	store storage.BlobStore
}

func NewRentalRepository(store storage.BlobStore) repository.RentalRepository {
	return &rentalRepository{store: store}
}

func (r *rentalRepository) LoadAll(ctx context.Context) ([]domain.RentalRecord, error) {
	data, err := r.store.Load(ctx, RentalsKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var rentals []domain.RentalRecord
	if err := json.Unmarshal(data, &rentals); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrCorrupt, err)
	}
	if rentals == nil {
		// "null" decodes without error
		return nil, fmt.Errorf("%w: rentals is not an array", repository.ErrCorrupt)
	}

	seen := make(map[string]bool, len(rentals))
	for _, rt := range rentals {
		if err := rt.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", repository.ErrCorrupt, err)
		}
		if seen[rt.ID] {
			return nil, fmt.Errorf("%w: duplicate rental id %s", repository.ErrCorrupt, rt.ID)
		}
		seen[rt.ID] = true
	}
	return rentals, nil
}

func (r *rentalRepository) SaveAll(ctx context.Context, rentals []domain.RentalRecord) error {
	if rentals == nil {
		rentals = []domain.RentalRecord{}
	}
	data, err := json.Marshal(rentals)
	if err != nil {
		return err
	}
	return r.store.Save(ctx, RentalsKey, data)
}
