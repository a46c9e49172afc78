package service

import (
	"context"
	"errors"
	"time"

	"vehicle-rental-backend/internal/domain"
)

var (
	ErrVehicleNotFound    = errors.New("vehicle not found")
	ErrVehicleUnavailable = errors.New("vehicle is not available")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrBookingClosed      = errors.New("booking is closed")
	ErrWrongStage         = errors.New("action not allowed in current booking stage")
	ErrNotSignedIn        = errors.New("no user signed in")
	ErrInvalidInput       = errors.New("invalid input")
)

// RentalCreator commits new rentals.
type RentalCreator interface {
	Create(ctx context.Context, nr domain.NewRental) (domain.RentalRecord, error)
}

// RentalTracker finds the active rental and moves it to a terminal status.
type RentalTracker interface {
	Active() (domain.RentalRecord, bool)
	SetStatus(ctx context.Context, id string, status domain.RentalStatus) error
}

// RentalLister reads a snapshot of every rental.
type RentalLister interface {
	All() []domain.RentalRecord
}

type CatalogService interface {
	Search(ctx context.Context, query string, category string) ([]domain.VehicleOffering, error)
	Quote(ctx context.Context, vehicleID string, unit domain.DurationUnit) (domain.PriceQuote, error)
}

type BookingService interface {
	Open(ctx context.Context, req OpenBookingRequest) (*Booking, error)
	Get(id string) (*Booking, error)
	Close(id string) error
	SweepIdle(now time.Time) int
	OpenCount() int
}

type TrackingService interface {
	Open(ctx context.Context) *TrackingSession
	Current() (*TrackingSession, bool)
	Close()
}

type HistoryService interface {
	List(filter HistoryFilter, sortBy HistorySort) ([]domain.RentalRecord, error)
	Stats() RentalStats
}

type SessionService interface {
	SignIn(ctx context.Context, name, email string) (*domain.User, string, error)
	Current(ctx context.Context) (*domain.User, error)
	SignOut(ctx context.Context) error
}
