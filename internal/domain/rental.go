package domain

import "errors"

var ErrInvalidTransition = errors.New("invalid rental status transition")

type RentalStatus string

const (
	RentalStatusActive    RentalStatus = "active"
	RentalStatusCompleted RentalStatus = "completed"
	RentalStatusCancelled RentalStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s RentalStatus) Valid() bool {
	switch s {
	case RentalStatusActive, RentalStatusCompleted, RentalStatusCancelled:
		return true
	}
	return false
}

// Terminal statuses accept no further transitions.
func (s RentalStatus) Terminal() bool {
	return s == RentalStatusCompleted || s == RentalStatusCancelled
}

var allowedRentalTransitions = map[RentalStatus][]RentalStatus{
	RentalStatusActive: {RentalStatusCompleted, RentalStatusCancelled},
}

// CanTransition reports whether a rental may move from one status to another.
// Only forward moves out of active are allowed.
func CanTransition(from, to RentalStatus) bool {
	for _, next := range allowedRentalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// RentalRecord is a committed reservation. JSON field names match the
// persisted layout and must not change.
type RentalRecord struct {
	ID           string          `json:"id"`
	Category     VehicleCategory `json:"type"`
	Model        string          `json:"model"`
	Duration     string          `json:"duration"`
	FromLocation string          `json:"fromLocation"`
	ToLocation   string          `json:"toLocation"`
	Price        int             `json:"price"`
	Status       RentalStatus    `json:"status"`
	StartDate    string          `json:"startDate"`
	EndDate      string          `json:"endDate"`
	Image        string          `json:"image"`
}

// NewRental carries everything needed to create a record except the id
// and status, which the registry assigns.
type NewRental struct {
	Category     VehicleCategory
	Model        string
	Duration     string
	FromLocation string
	ToLocation   string
	Price        int
	StartDate    string
	EndDate      string
	Image        string
}

// Validate checks the closed tags of a record loaded from storage.
func (r RentalRecord) Validate() error {
	if r.ID == "" {
		return errors.New("rental id is empty")
	}
	if !r.Status.Valid() {
		return errors.New("unknown rental status: " + string(r.Status))
	}
	if !r.Category.Valid() {
		return errors.New("unknown vehicle type: " + string(r.Category))
	}
	return nil
}
