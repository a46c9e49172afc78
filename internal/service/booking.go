package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/repository"
	"vehicle-rental-backend/internal/utils"
)

type OpenBookingRequest struct {
	VehicleID    string              `json:"vehicleId"`
	Unit         domain.DurationUnit `json:"duration"`
	FromLocation string              `json:"fromLocation"`
	ToLocation   string              `json:"toLocation"`
}

// DraftUpdate changes only the fields that are set.
type DraftUpdate struct {
	Unit         *domain.DurationUnit `json:"duration,omitempty"`
	PickupDate   *string              `json:"pickupDate,omitempty"`
	ReturnDate   *string              `json:"returnDate,omitempty"`
	FromLocation *string              `json:"fromLocation,omitempty"`
	ToLocation   *string              `json:"toLocation,omitempty"`
}

// BookingView is a point-in-time copy of a booking.
type BookingView struct {
	ID         string               `json:"id"`
	Stage      domain.BookingStage  `json:"stage"`
	Draft      domain.BookingDraft  `json:"draft"`
	Quote      domain.PriceQuote    `json:"quote"`
	PriceLock  bool                 `json:"priceLocked"`
	CanProceed bool                 `json:"canProceed"`
	Rental     *domain.RentalRecord `json:"rental,omitempty"`
}

// Booking walks one draft through details, payment and success. Closing it
// from any stage discards the draft without touching the registry.
type Booking struct {
	id           string
	rentals      RentalCreator
	paymentDelay time.Duration
	now          func() time.Time
	log          *slog.Logger

	// confirmMu serializes Confirm so only one caller can commit
	confirmMu sync.Mutex

	mu          sync.Mutex
	stage       domain.BookingStage
	draft       domain.BookingDraft
	locked      *domain.PriceQuote
	committed   *domain.RentalRecord
	closed      chan struct{}
	lastTouched time.Time
}

func newBooking(offering domain.VehicleOffering, req OpenBookingRequest, rentals RentalCreator, paymentDelay time.Duration, now func() time.Time) *Booking {
	unit := req.Unit
	if unit == "" {
		unit = domain.DurationUnitDay
	}
	id := uuid.NewString()
	return &Booking{
		id:           id,
		rentals:      rentals,
		paymentDelay: paymentDelay,
		now:          now,
		log:          logger.WithService("booking").With("booking_id", id),
		stage:        domain.BookingStageDetails,
		draft: domain.BookingDraft{
			Offering:     offering,
			Unit:         unit,
			FromLocation: req.FromLocation,
			ToLocation:   req.ToLocation,
		},
		closed:      make(chan struct{}),
		lastTouched: now(),
	}
}

func (b *Booking) ID() string {
	return b.id
}

func (b *Booking) Stage() domain.BookingStage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stage
}

func (b *Booking) View() BookingView {
	b.mu.Lock()
	defer b.mu.Unlock()

	v := BookingView{
		ID:         b.id,
		Stage:      b.stage,
		Draft:      b.draft,
		PriceLock:  b.locked != nil,
		CanProceed: b.stage == domain.BookingStageDetails && b.draft.Complete(),
	}
	v.Draft.Offering.Features = append([]string(nil), b.draft.Offering.Features...)
	if b.locked != nil {
		v.Quote = *b.locked
	} else {
		v.Quote = utils.CalculatePrice(b.draft.Offering, b.draft.Unit)
	}
	if b.committed != nil {
		rec := *b.committed
		v.Rental = &rec
	}
	return v
}

// Update edits the draft. Only allowed while in the details stage.
func (b *Booking) Update(u DraftUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.requireStageLocked(domain.BookingStageDetails); err != nil {
		return err
	}
	if u.Unit != nil {
		b.draft.Unit = *u.Unit
	}
	if u.PickupDate != nil {
		b.draft.PickupDate = *u.PickupDate
	}
	if u.ReturnDate != nil {
		b.draft.ReturnDate = *u.ReturnDate
	}
	if u.FromLocation != nil {
		b.draft.FromLocation = *u.FromLocation
	}
	if u.ToLocation != nil {
		b.draft.ToLocation = *u.ToLocation
	}
	b.lastTouched = b.now()
	return nil
}

// CanProceed reports whether Proceed would leave the details stage.
func (b *Booking) CanProceed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stage == domain.BookingStageDetails && b.draft.Complete()
}

// Proceed moves details to payment when every required field is filled in.
// The price is locked on the first successful call.
func (b *Booking) Proceed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stage != domain.BookingStageDetails || !b.draft.Complete() {
		return false
	}
	if b.locked == nil {
		q := utils.CalculatePrice(b.draft.Offering, b.draft.Unit)
		b.locked = &q
		b.log.Info("Price locked", "unit", q.Unit, "total", q.Total)
	}
	b.stage = domain.BookingStagePayment
	b.lastTouched = b.now()
	b.log.Debug("Booking stage changed", "stage", b.stage)
	return true
}

// Back returns from payment to details, keeping the draft.
func (b *Booking) Back() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stage != domain.BookingStagePayment {
		return false
	}
	b.stage = domain.BookingStageDetails
	b.lastTouched = b.now()
	b.log.Debug("Booking stage changed", "stage", b.stage)
	return true
}

// Confirm waits out the payment delay and commits the rental exactly once.
// Calling it again after success returns the committed record.
func (b *Booking) Confirm(ctx context.Context) (domain.RentalRecord, error) {
	b.confirmMu.Lock()
	defer b.confirmMu.Unlock()

	b.mu.Lock()
	if b.stage == domain.BookingStageSuccess {
		rec := *b.committed
		b.mu.Unlock()
		return rec, nil
	}
	if err := b.requireStageLocked(domain.BookingStagePayment); err != nil {
		b.mu.Unlock()
		return domain.RentalRecord{}, err
	}
	b.lastTouched = b.now()
	b.mu.Unlock()

	if b.paymentDelay > 0 {
		timer := time.NewTimer(b.paymentDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-b.closed:
			b.log.Info("Booking closed during payment, nothing committed")
			return domain.RentalRecord{}, ErrBookingClosed
		case <-ctx.Done():
			return domain.RentalRecord{}, ctx.Err()
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// the user may have closed or gone back while payment was pending
	if err := b.requireStageLocked(domain.BookingStagePayment); err != nil {
		return domain.RentalRecord{}, err
	}

	rec, err := b.rentals.Create(ctx, domain.NewRental{
		Category:     b.draft.Offering.Category,
		Model:        b.draft.Offering.Name,
		Duration:     utils.DurationLabel(b.locked.Unit),
		FromLocation: b.draft.FromLocation,
		ToLocation:   b.draft.ToLocation,
		Price:        b.locked.Total,
		StartDate:    b.draft.PickupDate,
		EndDate:      b.draft.ReturnDate,
		Image:        b.draft.Offering.Image,
	})
	if err != nil {
		b.log.Error("Failed to commit rental", "error", err)
		return domain.RentalRecord{}, err
	}

	b.committed = &rec
	b.stage = domain.BookingStageSuccess
	b.lastTouched = b.now()
	b.log.Info("Booking confirmed", "rental_id", rec.ID, "price", rec.Price)
	return rec, nil
}

// Close discards the booking. Safe to call more than once.
func (b *Booking) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stage == domain.BookingStageClosed {
		return
	}
	prev := b.stage
	b.stage = domain.BookingStageClosed
	b.draft = domain.BookingDraft{}
	b.locked = nil
	close(b.closed)
	b.log.Debug("Booking closed", "from_stage", prev)
}

func (b *Booking) idleSince() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastTouched
}

func (b *Booking) requireStageLocked(want domain.BookingStage) error {
	switch b.stage {
	case want:
		return nil
	case domain.BookingStageClosed:
		return ErrBookingClosed
	default:
		return ErrWrongStage
	}
}

type bookingService struct {
	vehicleRepo  repository.VehicleRepository
	rentals      RentalCreator
	paymentDelay time.Duration
	idleTTL      time.Duration
	now          func() time.Time

	mu       sync.Mutex
	bookings map[string]*Booking
}

func NewBookingService(
	vehicleRepo repository.VehicleRepository,
	rentals RentalCreator,
	paymentDelay time.Duration,
	idleTTL time.Duration,
) BookingService {
	return &bookingService{
		vehicleRepo:  vehicleRepo,
		rentals:      rentals,
		paymentDelay: paymentDelay,
		idleTTL:      idleTTL,
		now:          time.Now,
		bookings:     make(map[string]*Booking),
	}
}

func (s *bookingService) Open(ctx context.Context, req OpenBookingRequest) (*Booking, error) {
	v, err := s.vehicleRepo.GetByID(ctx, req.VehicleID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, err
	}
	if !v.Available {
		return nil, ErrVehicleUnavailable
	}

	b := newBooking(*v, req, s.rentals, s.paymentDelay, s.now)
	s.mu.Lock()
	s.bookings[b.id] = b
	s.mu.Unlock()

	b.log.Info("Booking opened", "vehicle_id", v.ID, "unit", b.draft.Unit)
	return b, nil
}

func (s *bookingService) Get(id string) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

func (s *bookingService) Close(id string) error {
	s.mu.Lock()
	b, ok := s.bookings[id]
	delete(s.bookings, id)
	s.mu.Unlock()

	if !ok {
		return ErrBookingNotFound
	}
	b.Close()
	return nil
}

// SweepIdle closes bookings untouched for longer than the idle TTL.
func (s *bookingService) SweepIdle(now time.Time) int {
	if s.idleTTL <= 0 {
		return 0
	}

	var stale []*Booking
	s.mu.Lock()
	for id, b := range s.bookings {
		if now.Sub(b.idleSince()) > s.idleTTL {
			stale = append(stale, b)
			delete(s.bookings, id)
		}
	}
	s.mu.Unlock()

	for _, b := range stale {
		b.Close()
	}
	return len(stale)
}

func (s *bookingService) OpenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}
