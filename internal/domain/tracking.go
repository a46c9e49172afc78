package domain

type TripPhase string

const (
	TripPhaseStarted    TripPhase = "started"
	TripPhaseInProgress TripPhase = "in-progress"
	TripPhaseCompleted  TripPhase = "completed"
)

type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TrackingState is the live view of the active rental. It is never persisted.
type TrackingState struct {
	RentalID         string    `json:"rentalId,omitempty"`
	Position         Position  `json:"position"`
	MinutesRemaining int       `json:"minutesRemaining"`
	Phase            TripPhase `json:"phase"`
	NoActiveRental   bool      `json:"noActiveRental"`
}
