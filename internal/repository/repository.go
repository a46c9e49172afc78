package repository

import (
	"context"
	"errors"

	"vehicle-rental-backend/internal/domain"
)

var (
	// ErrNotFound means nothing has been stored yet.
	ErrNotFound = errors.New("not found")
	// ErrCorrupt means stored data exists but cannot be decoded or validated.
	ErrCorrupt = errors.New("stored data is corrupt")
)

// RentalRepository persists the whole rental collection as one unit.
type RentalRepository interface {
	LoadAll(ctx context.Context) ([]domain.RentalRecord, error)
	SaveAll(ctx context.Context, rentals []domain.RentalRecord) error
}

// UserRepository holds the signed-in user, if any.
type UserRepository interface {
	GetCurrent(ctx context.Context) (*domain.User, error)
	SaveCurrent(ctx context.Context, user *domain.User) error
	DeleteCurrent(ctx context.Context) error
}

// VehicleRepository is the read-only vehicle catalog.
type VehicleRepository interface {
	List(ctx context.Context) ([]domain.VehicleOffering, error)
	GetByID(ctx context.Context, id string) (*domain.VehicleOffering, error)
}
