package registry

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/repository"
	"vehicle-rental-backend/internal/repository/blob"
	"vehicle-rental-backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) LoadAll(ctx context.Context) ([]domain.RentalRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalRecord), args.Error(1)
}

func (m *MockRentalRepo) SaveAll(ctx context.Context, rentals []domain.RentalRecord) error {
	args := m.Called(ctx, rentals)
	return args.Error(0)
}

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func newRental(model string) domain.NewRental {
	return domain.NewRental{
		Category:     domain.VehicleCategoryCar,
		Model:        model,
		Duration:     "week",
		FromLocation: "Downtown",
		ToLocation:   "Airport",
		Price:        308,
		StartDate:    "2024-03-01",
		EndDate:      "2024-03-08",
	}
}

func newEmptyRegistry(t *testing.T, opts Options) (*Registry, storage.BlobStore) {
	t.Helper()
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	require.NoError(t, store.Save(ctx, blob.RentalsKey, []byte("[]")))
	return New(ctx, blob.NewRentalRepository(store), opts), store
}

func TestNew_Rehydration(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing blob seeds", func(t *testing.T) {
		store := storage.NewMemoryStorage()
		reg := New(ctx, blob.NewRentalRepository(store), Options{})
		all := reg.All()
		require.Len(t, all, 2)
		assert.Equal(t, "Honda CB250R", all[0].Model)
		assert.Equal(t, domain.RentalStatusActive, all[0].Status)
		assert.Equal(t, "Toyota Camry", all[1].Model)
		assert.Equal(t, domain.RentalStatusCompleted, all[1].Status)

		// seed is written back
		_, err := store.Load(ctx, blob.RentalsKey)
		assert.NoError(t, err)
	})

	t.Run("Corrupt blob seeds", func(t *testing.T) {
		store := storage.NewMemoryStorage()
		require.NoError(t, store.Save(ctx, blob.RentalsKey, []byte("not json")))
		reg := New(ctx, blob.NewRentalRepository(store), Options{})
		assert.Equal(t, SeedRentals(), reg.All())
	})

	t.Run("Unknown status seeds", func(t *testing.T) {
		store := storage.NewMemoryStorage()
		require.NoError(t, store.Save(ctx, blob.RentalsKey, []byte(`[{"id":"5","type":"car","status":"lost"}]`)))
		reg := New(ctx, blob.NewRentalRepository(store), Options{})
		assert.Equal(t, SeedRentals(), reg.All())
	})

	t.Run("Empty array stays empty", func(t *testing.T) {
		reg, _ := newEmptyRegistry(t, Options{})
		assert.Empty(t, reg.All())
		_, ok := reg.Active()
		assert.False(t, ok)
	})

	t.Run("Round trip", func(t *testing.T) {
		store := storage.NewMemoryStorage()
		repo := blob.NewRentalRepository(store)
		first := New(ctx, repo, Options{Now: fixedClock(1700000000000)})
		rec, err := first.Create(ctx, newRental("BMW X3"))
		require.NoError(t, err)
		require.NoError(t, first.SetStatus(ctx, "1", domain.RentalStatusCancelled))

		second := New(ctx, repo, Options{})
		assert.Equal(t, first.All(), second.All())
		got, ok := second.Get(rec.ID)
		require.True(t, ok)
		assert.Equal(t, rec, got)
	})
}

func TestRegistry_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Assigns id and active status", func(t *testing.T) {
		reg, _ := newEmptyRegistry(t, Options{Now: fixedClock(1700000000123)})
		rec, err := reg.Create(ctx, newRental("Toyota Camry"))
		require.NoError(t, err)
		assert.Equal(t, "1700000000123", rec.ID)
		assert.Equal(t, domain.RentalStatusActive, rec.Status)
		assert.Equal(t, 308, rec.Price)

		active, ok := reg.Active()
		require.True(t, ok)
		assert.Equal(t, rec.ID, active.ID)
	})

	t.Run("Same millisecond ids stay unique", func(t *testing.T) {
		reg, _ := newEmptyRegistry(t, Options{Now: fixedClock(1000)})
		a, _ := reg.Create(ctx, newRental("A"))
		b, _ := reg.Create(ctx, newRental("B"))
		c, _ := reg.Create(ctx, newRental("C"))
		assert.Equal(t, "1000", a.ID)
		assert.Equal(t, "1001", b.ID)
		assert.Equal(t, "1002", c.ID)
	})

	t.Run("Ids never collide with loaded ids", func(t *testing.T) {
		store := storage.NewMemoryStorage()
		require.NoError(t, store.Save(ctx, blob.RentalsKey,
			[]byte(`[{"id":"5000","type":"car","status":"completed"}]`)))
		reg := New(ctx, blob.NewRentalRepository(store), Options{Now: fixedClock(10)})
		rec, err := reg.Create(ctx, newRental("A"))
		require.NoError(t, err)
		assert.Equal(t, "5001", rec.ID)
	})

	t.Run("Persists every create", func(t *testing.T) {
		reg, store := newEmptyRegistry(t, Options{Now: fixedClock(42)})
		_, err := reg.Create(ctx, newRental("A"))
		require.NoError(t, err)
		raw, _ := store.Load(ctx, blob.RentalsKey)
		assert.Contains(t, string(raw), `"id":"42"`)
		assert.Contains(t, string(raw), `"status":"active"`)
	})

	t.Run("Returned record is a copy", func(t *testing.T) {
		reg, _ := newEmptyRegistry(t, Options{})
		rec, _ := reg.Create(ctx, newRental("A"))
		rec.Status = domain.RentalStatusCompleted
		all := reg.All()
		all[0].Model = "changed"
		got, _ := reg.Get(rec.ID)
		assert.Equal(t, domain.RentalStatusActive, got.Status)
		assert.Equal(t, "A", got.Model)
	})

	t.Run("Single active enforced when enabled", func(t *testing.T) {
		reg, _ := newEmptyRegistry(t, Options{EnforceSingleActive: true})
		first, err := reg.Create(ctx, newRental("A"))
		require.NoError(t, err)
		_, err = reg.Create(ctx, newRental("B"))
		assert.ErrorIs(t, err, ErrActiveRentalExists)
		assert.Len(t, reg.All(), 1)

		require.NoError(t, reg.SetStatus(ctx, first.ID, domain.RentalStatusCompleted))
		_, err = reg.Create(ctx, newRental("B"))
		assert.NoError(t, err)
	})

	t.Run("Advisory by default", func(t *testing.T) {
		reg, _ := newEmptyRegistry(t, Options{})
		first, _ := reg.Create(ctx, newRental("A"))
		_, err := reg.Create(ctx, newRental("B"))
		assert.NoError(t, err)
		active, _ := reg.Active()
		assert.Equal(t, first.ID, active.ID)
	})
}

func TestRegistry_SetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Forward transitions", func(t *testing.T) {
		reg, _ := newEmptyRegistry(t, Options{})
		a, _ := reg.Create(ctx, newRental("A"))
		b, _ := reg.Create(ctx, newRental("B"))

		require.NoError(t, reg.SetStatus(ctx, a.ID, domain.RentalStatusCompleted))
		active, ok := reg.Active()
		require.True(t, ok)
		assert.Equal(t, b.ID, active.ID)

		require.NoError(t, reg.SetStatus(ctx, b.ID, domain.RentalStatusCancelled))
		_, ok = reg.Active()
		assert.False(t, ok)
	})

	t.Run("Backward transition rejected", func(t *testing.T) {
		reg, _ := newEmptyRegistry(t, Options{})
		a, _ := reg.Create(ctx, newRental("A"))
		require.NoError(t, reg.SetStatus(ctx, a.ID, domain.RentalStatusCompleted))

		err := reg.SetStatus(ctx, a.ID, domain.RentalStatusActive)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		err = reg.SetStatus(ctx, a.ID, domain.RentalStatusCancelled)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)

		got, _ := reg.Get(a.ID)
		assert.Equal(t, domain.RentalStatusCompleted, got.Status)
	})

	t.Run("Same status is a no-op", func(t *testing.T) {
		reg, _ := newEmptyRegistry(t, Options{})
		a, _ := reg.Create(ctx, newRental("A"))
		require.NoError(t, reg.SetStatus(ctx, a.ID, domain.RentalStatusCompleted))
		assert.NoError(t, reg.SetStatus(ctx, a.ID, domain.RentalStatusCompleted))
	})

	t.Run("Unknown id is a silent no-op", func(t *testing.T) {
		reg, _ := newEmptyRegistry(t, Options{})
		a, _ := reg.Create(ctx, newRental("A"))
		before := reg.All()
		assert.NoError(t, reg.SetStatus(ctx, "nope", domain.RentalStatusCompleted))
		assert.Equal(t, before, reg.All())
		got, _ := reg.Get(a.ID)
		assert.Equal(t, domain.RentalStatusActive, got.Status)
	})
}

func TestRegistry_PersistFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRentalRepo)
	repo.On("LoadAll", mock.Anything).Return([]domain.RentalRecord{}, nil)
	repo.On("SaveAll", mock.Anything, mock.Anything).Return(errors.New("quota exceeded"))

	reg := New(ctx, repo, Options{Now: fixedClock(7)})
	rec, err := reg.Create(ctx, newRental("A"))
	require.NoError(t, err)
	require.NoError(t, reg.SetStatus(ctx, rec.ID, domain.RentalStatusCompleted))

	got, ok := reg.Get(rec.ID)
	require.True(t, ok)
	assert.Equal(t, domain.RentalStatusCompleted, got.Status)
	repo.AssertNumberOfCalls(t, "SaveAll", 2)
}

func TestRegistry_LoadErrorSeeds(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRentalRepo)
	repo.On("LoadAll", mock.Anything).Return(nil, repository.ErrCorrupt)
	repo.On("SaveAll", mock.Anything, SeedRentals()).Return(nil)

	reg := New(ctx, repo, Options{})
	assert.Equal(t, SeedRentals(), reg.All())
	repo.AssertExpectations(t)
}

func TestRegistry_PersistUsesDetachedContext(t *testing.T) {
	repo := new(MockRentalRepo)
	repo.On("LoadAll", mock.Anything).Return([]domain.RentalRecord{}, nil)
	repo.On("SaveAll", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), mock.Anything).Return(nil)

	reg := New(context.Background(), repo, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := reg.Create(ctx, newRental("A"))
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "SaveAll", 1)
}

func TestRegistry_NilPanics(t *testing.T) {
	var reg *Registry
	assert.PanicsWithValue(t, "registry not initialized", func() { reg.All() })
	assert.PanicsWithValue(t, "registry not initialized", func() {
		_, _ = reg.Create(context.Background(), newRental("A"))
	})
	assert.PanicsWithValue(t, "registry not initialized", func() {
		_ = reg.SetStatus(context.Background(), "1", domain.RentalStatusCompleted)
	})
	assert.PanicsWithValue(t, "registry not initialized", func() { reg.Active() })
}

func TestRegistry_ConcurrentCreates(t *testing.T) {
	reg, _ := newEmptyRegistry(t, Options{Now: fixedClock(1)})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := reg.Create(ctx, newRental("M"+strconv.Itoa(i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, rt := range reg.All() {
		assert.False(t, seen[rt.ID], "duplicate id %s", rt.ID)
		seen[rt.ID] = true
	}
	assert.Len(t, seen, 50)
}
