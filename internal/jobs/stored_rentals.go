package jobs

import (
	"context"
	"errors"
	"time"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/repository"
)

const storedRentalsTimeout = 10 * time.Second

// StoredRentals reads the persisted rental collection on every call and never
// writes it back. Nothing stored, or a read failure, reads as no rentals.
type StoredRentals struct {
	repo repository.RentalRepository
}

func NewStoredRentals(repo repository.RentalRepository) *StoredRentals {
	return &StoredRentals{repo: repo}
}

func (s *StoredRentals) All() []domain.RentalRecord {
	ctx, cancel := context.WithTimeout(context.Background(), storedRentalsTimeout)
	defer cancel()

	rentals, err := s.repo.LoadAll(ctx)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		logger.Info("No rentals stored yet")
		return []domain.RentalRecord{}
	case err != nil:
		logger.Error("Failed to load stored rentals", "error", err)
		return []domain.RentalRecord{}
	}
	return rentals
}
