package jobs

import (
	"context"
	"testing"
	"time"

	"vehicle-rental-backend/internal/config"
	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/repository/blob"
	"vehicle-rental-backend/internal/service"
	"vehicle-rental-backend/internal/storage"
	"vehicle-rental-backend/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBookingService struct {
	mock.Mock
	service.BookingService
}

func (m *MockBookingService) SweepIdle(now time.Time) int {
	args := m.Called(now)
	return args.Int(0)
}

func (m *MockBookingService) OpenCount() int {
	args := m.Called()
	return args.Int(0)
}

type MockHistoryService struct {
	mock.Mock
	service.HistoryService
}

func (m *MockHistoryService) Stats() service.RentalStats {
	args := m.Called()
	return args.Get(0).(service.RentalStats)
}

type MockRentalLister struct {
	mock.Mock
}

func (m *MockRentalLister) All() []domain.RentalRecord {
	args := m.Called()
	return args.Get(0).([]domain.RentalRecord)
}

func newTestRunner(b *MockBookingService, h *MockHistoryService, r *MockRentalLister, now time.Time) *JobRunner {
	jr := NewJobRunner(&Services{Bookings: b, History: h, Rentals: r}, config.Default())
	jr.now = func() time.Time { return now }
	return jr
}

func TestSweepAbandonedBookings(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	bookings := new(MockBookingService)
	bookings.On("SweepIdle", now).Return(2).Once()
	bookings.On("OpenCount").Return(1)

	newTestRunner(bookings, new(MockHistoryService), new(MockRentalLister), now).SweepAbandonedBookings()
	bookings.AssertExpectations(t)
}

func TestReportRentalStats(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	history := new(MockHistoryService)
	history.On("Stats").Return(service.RentalStats{TotalSpent: 420, ActiveCount: 2, CompletedCount: 1})
	rentals := new(MockRentalLister)
	rentals.On("All").Return([]domain.RentalRecord{
		{ID: "1", Status: domain.RentalStatusActive, EndDate: "2024-01-18"},
		{ID: "2", Status: domain.RentalStatusCompleted, EndDate: "2024-01-08"},
		{ID: "3", Status: domain.RentalStatusActive, EndDate: "2024-03-01"},
		{ID: "4", Status: domain.RentalStatusActive, EndDate: "someday"},
	})

	jr := newTestRunner(new(MockBookingService), history, rentals, now)
	overdue := jr.overdue(utils.DateOf(now))
	if assert.Len(t, overdue, 1) {
		assert.Equal(t, "1", overdue[0].ID)
	}

	jr.ReportRentalStats()
	history.AssertExpectations(t)
}

func TestRunWithRecovery(t *testing.T) {
	jr := NewJobRunner(&Services{}, config.Default())
	ran := false
	assert.NotPanics(t, func() {
		jr.runWithRecovery("Explodes", func() {
			ran = true
			panic("boom")
		})
	})
	assert.True(t, ran)

	// The sweep is skipped and the nil history panic is recovered.
	assert.NotPanics(t, jr.RunAll)
	assert.False(t, jr.SweepsBookings())
}

func TestStoredRentals(t *testing.T) {
	ctx := context.Background()

	t.Run("Nothing stored reads empty without seeding", func(t *testing.T) {
		store := storage.NewMemoryStorage()
		stored := NewStoredRentals(blob.NewRentalRepository(store))

		assert.Empty(t, stored.All())
		_, err := store.Load(ctx, blob.RentalsKey)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Each run sees the latest blob", func(t *testing.T) {
		store := storage.NewMemoryStorage()
		repo := blob.NewRentalRepository(store)
		stored := NewStoredRentals(repo)
		jr := NewJobRunner(&Services{History: service.NewHistoryService(stored), Rentals: stored}, config.Default())

		require.NoError(t, repo.SaveAll(ctx, []domain.RentalRecord{
			{ID: "1", Category: domain.VehicleCategoryBike, Price: 150, Status: domain.RentalStatusActive},
		}))
		assert.Equal(t, service.RentalStats{ActiveCount: 1}, jr.services.History.Stats())

		require.NoError(t, repo.SaveAll(ctx, []domain.RentalRecord{
			{ID: "1", Category: domain.VehicleCategoryBike, Price: 150, Status: domain.RentalStatusCompleted},
		}))
		assert.Equal(t, service.RentalStats{TotalSpent: 150, CompletedCount: 1}, jr.services.History.Stats())

		assert.NotPanics(t, jr.RunAll)
	})

	t.Run("Corrupt blob reads empty and is left alone", func(t *testing.T) {
		store := storage.NewMemoryStorage()
		require.NoError(t, store.Save(ctx, blob.RentalsKey, []byte("{not json")))

		assert.Empty(t, NewStoredRentals(blob.NewRentalRepository(store)).All())
		data, err := store.Load(ctx, blob.RentalsKey)
		require.NoError(t, err)
		assert.Equal(t, "{not json", string(data))
	})
}
