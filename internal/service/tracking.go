package service

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/logger"
)

var ErrNoActiveRental = errors.New("no active rental")

// maxJitter keeps each tick within 0.0005 of the last position per axis.
const maxJitter = 0.001

type TrackingOptions struct {
	TickInterval time.Duration
	StartMinutes int
	Origin       domain.Position
	// Jitter is the full width of the per-tick move on each axis
	Jitter float64
	// Rand returns values in [0, 1). Defaults to math/rand/v2.
	Rand func() float64
}

// TrackingSession simulates the live position of one active rental. A
// session opened with no active rental is inert and never ticks.
type TrackingSession struct {
	rentals RentalTracker
	opts    TrackingOptions
	log     *slog.Logger

	mu      sync.Mutex
	state   domain.TrackingState
	started bool
	closed  bool
	stop    chan struct{}
	done    chan struct{}
}

func newTrackingSession(rentals RentalTracker, opts TrackingOptions) *TrackingSession {
	s := &TrackingSession{
		rentals: rentals,
		opts:    opts,
		log:     logger.WithService("tracking"),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	active, ok := rentals.Active()
	if !ok {
		s.state = domain.TrackingState{NoActiveRental: true}
		return s
	}
	s.state = domain.TrackingState{
		RentalID:         active.ID,
		Position:         opts.Origin,
		MinutesRemaining: max(0, opts.StartMinutes),
		Phase:            domain.TripPhaseInProgress,
	}
	s.log = s.log.With("rental_id", active.ID)
	return s
}

func (s *TrackingSession) State() domain.TrackingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *TrackingSession) NoActiveRental() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.NoActiveRental
}

// Start runs the tick loop in the background until Close or trip completion.
func (s *TrackingSession) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.closed || s.state.NoActiveRental {
		return
	}
	s.started = true
	go s.loop()
}

func (s *TrackingSession) loop() {
	defer close(s.done)
	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if !s.Step() {
				return
			}
		}
	}
}

// Step applies one tick: the position drifts by up to half the jitter on
// each axis and the ETA drops by a minute, never below zero. It reports
// false when the session no longer ticks.
func (s *TrackingSession) Step() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state.NoActiveRental || s.state.Phase == domain.TripPhaseCompleted {
		return false
	}
	s.state.Position.Lat += (s.opts.Rand() - 0.5) * s.opts.Jitter
	s.state.Position.Lng += (s.opts.Rand() - 0.5) * s.opts.Jitter
	if s.state.MinutesRemaining > 0 {
		s.state.MinutesRemaining--
	}
	return true
}

// CompleteTrip marks the tracked rental completed and stops updates.
// Repeated calls are no-ops.
func (s *TrackingSession) CompleteTrip(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.NoActiveRental {
		return ErrNoActiveRental
	}
	if s.state.Phase == domain.TripPhaseCompleted {
		return nil
	}
	if err := s.rentals.SetStatus(ctx, s.state.RentalID, domain.RentalStatusCompleted); err != nil {
		s.log.Error("Failed to complete trip", "error", err)
		return err
	}
	s.state.Phase = domain.TripPhaseCompleted
	s.log.Info("Trip completed")
	return nil
}

// Close stops the tick loop and waits for it to exit. No update is applied
// after Close returns.
func (s *TrackingSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	started := s.started
	close(s.stop)
	s.mu.Unlock()

	if started {
		<-s.done
	}
}

type trackingService struct {
	rentals RentalTracker
	opts    TrackingOptions

	mu      sync.Mutex
	current *TrackingSession
}

func NewTrackingService(rentals RentalTracker, opts TrackingOptions) TrackingService {
	if opts.Rand == nil {
		opts.Rand = rand.Float64
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = 3 * time.Second
	}
	opts.Jitter = min(max(opts.Jitter, 0), maxJitter)
	return &trackingService{rentals: rentals, opts: opts}
}

// Open replaces any current session with a fresh one for the active rental.
func (s *trackingService) Open(ctx context.Context) *TrackingSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.current.Close()
	}
	sess := newTrackingSession(s.rentals, s.opts)
	sess.Start()
	s.current = sess

	if sess.NoActiveRental() {
		logger.InfoContext(ctx, "Tracking opened with no active rental")
	} else {
		logger.InfoContext(ctx, "Tracking opened", "rental_id", sess.State().RentalID)
	}
	return sess
}

func (s *trackingService) Current() (*TrackingSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.current != nil
}

func (s *trackingService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.Close()
		s.current = nil
	}
}
