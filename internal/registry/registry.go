package registry

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/repository"
)

// ErrActiveRentalExists is returned by Create when single-active enforcement
// is on and another rental is still active.
var ErrActiveRentalExists = errors.New("an active rental already exists")

type Options struct {
	// EnforceSingleActive rejects Create while another rental is active.
	EnforceSingleActive bool
	// Now overrides the id clock, mainly for tests.
	Now func() time.Time
}

// Registry is the authoritative list of rental records. It is the only
// writer of rental status and persists the whole collection after every
// mutation.
type Registry struct {
	mu                  sync.RWMutex
	repo                repository.RentalRepository
	rentals             []domain.RentalRecord
	lastID              int64
	now                 func() time.Time
	enforceSingleActive bool
	log                 *slog.Logger
}

// SeedRentals is the collection used when nothing valid is stored.
func SeedRentals() []domain.RentalRecord {
	return []domain.RentalRecord{
		{
			ID:           "1",
			Category:     domain.VehicleCategoryBike,
			Model:        "Honda CB250R",
			Duration:     "3 days",
			FromLocation: "Downtown",
			ToLocation:   "Airport",
			Price:        150,
			Status:       domain.RentalStatusActive,
			StartDate:    "2024-01-15",
			EndDate:      "2024-01-18",
			Image:        "https://images.pexels.com/photos/2116475/pexels-photo-2116475.jpeg",
		},
		{
			ID:           "2",
			Category:     domain.VehicleCategoryCar,
			Model:        "Toyota Camry",
			Duration:     "1 week",
			FromLocation: "City Center",
			ToLocation:   "Suburbs",
			Price:        420,
			Status:       domain.RentalStatusCompleted,
			StartDate:    "2024-01-01",
			EndDate:      "2024-01-08",
			Image:        "https://images.pexels.com/photos/116675/pexels-photo-116675.jpeg",
		},
	}
}

// New rehydrates the registry from repo. A missing or corrupt collection is
// replaced by the seed set.
func New(ctx context.Context, repo repository.RentalRepository, opts Options) *Registry {
	r := &Registry{
		repo:                repo,
		now:                 opts.Now,
		enforceSingleActive: opts.EnforceSingleActive,
		log:                 logger.WithService("registry"),
	}
	if r.now == nil {
		r.now = time.Now
	}

	rentals, err := repo.LoadAll(ctx)
	switch {
	case err == nil:
		r.rentals = rentals
		r.log.Info("Rentals restored", "count", len(rentals))
	case errors.Is(err, repository.ErrNotFound):
		r.log.Info("No stored rentals, using seed data")
		r.rentals = SeedRentals()
		r.persistLocked(ctx)
	default:
		r.log.Warn("Stored rentals unreadable, using seed data", "error", err)
		r.rentals = SeedRentals()
		r.persistLocked(ctx)
	}

	for _, rt := range r.rentals {
		if n, err := strconv.ParseInt(rt.ID, 10, 64); err == nil && n > r.lastID {
			r.lastID = n
		}
	}
	return r
}

func (r *Registry) mustInit() {
	if r == nil {
		panic("registry not initialized")
	}
}

// Create appends a new active rental and returns a copy of it.
func (r *Registry) Create(ctx context.Context, nr domain.NewRental) (domain.RentalRecord, error) {
	r.mustInit()
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.enforceSingleActive {
		if active, ok := r.activeLocked(); ok {
			r.log.Warn("Create rejected, rental already active", "active_id", active.ID)
			return domain.RentalRecord{}, ErrActiveRentalExists
		}
	}

	rec := domain.RentalRecord{
		ID:           r.nextIDLocked(),
		Category:     nr.Category,
		Model:        nr.Model,
		Duration:     nr.Duration,
		FromLocation: nr.FromLocation,
		ToLocation:   nr.ToLocation,
		Price:        nr.Price,
		Status:       domain.RentalStatusActive,
		StartDate:    nr.StartDate,
		EndDate:      nr.EndDate,
		Image:        nr.Image,
	}
	r.rentals = append(r.rentals, rec)
	r.log.Info("Rental created", "rental_id", rec.ID, "model", rec.Model, "price", rec.Price)

	r.persistLocked(ctx)
	return rec, nil
}

// SetStatus moves a rental forward. Unknown ids and same-status updates are
// no-ops. Moves out of a terminal status fail with domain.ErrInvalidTransition.
func (r *Registry) SetStatus(ctx context.Context, id string, status domain.RentalStatus) error {
	r.mustInit()
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(id)
	if idx < 0 {
		r.log.Debug("SetStatus on unknown rental ignored", "rental_id", id, "status", status)
		return nil
	}

	current := r.rentals[idx].Status
	if current == status {
		return nil
	}
	if !domain.CanTransition(current, status) {
		r.log.Warn("Rejected rental status change", "rental_id", id, "from", current, "to", status)
		return domain.ErrInvalidTransition
	}

	r.rentals[idx].Status = status
	r.log.Info("Rental status changed", "rental_id", id, "from", current, "to", status)

	r.persistLocked(ctx)
	return nil
}

// Active returns the first active rental in insertion order.
func (r *Registry) Active() (domain.RentalRecord, bool) {
	r.mustInit()
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeLocked()
}

// Get returns a copy of the rental with the given id.
func (r *Registry) Get(id string) (domain.RentalRecord, bool) {
	r.mustInit()
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.indexLocked(id)
	if idx < 0 {
		return domain.RentalRecord{}, false
	}
	return r.rentals[idx], true
}

// All returns a snapshot of every rental in insertion order.
func (r *Registry) All() []domain.RentalRecord {
	r.mustInit()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.RentalRecord, len(r.rentals))
	copy(out, r.rentals)
	return out
}

func (r *Registry) activeLocked() (domain.RentalRecord, bool) {
	for _, rt := range r.rentals {
		if rt.Status == domain.RentalStatusActive {
			return rt, true
		}
	}
	return domain.RentalRecord{}, false
}

func (r *Registry) indexLocked(id string) int {
	for i := range r.rentals {
		if r.rentals[i].ID == id {
			return i
		}
	}
	return -1
}

// nextIDLocked issues a millisecond timestamp, bumped past the last id so
// two creates in the same millisecond still differ.
func (r *Registry) nextIDLocked() string {
	id := r.now().UnixMilli()
	if id <= r.lastID {
		id = r.lastID + 1
	}
	r.lastID = id
	return strconv.FormatInt(id, 10)
}

// persistLocked writes the collection. Failures are logged and the in-memory
// state is kept.
func (r *Registry) persistLocked(ctx context.Context) {
	snapshot := make([]domain.RentalRecord, len(r.rentals))
	copy(snapshot, r.rentals)
	if err := r.repo.SaveAll(context.WithoutCancel(ctx), snapshot); err != nil {
		r.log.Error("Failed to persist rentals", "error", err, "count", len(r.rentals))
	}
}
