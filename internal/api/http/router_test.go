package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/registry"
	"vehicle-rental-backend/internal/repository/blob"
	"vehicle-rental-backend/internal/repository/memory"
	"vehicle-rental-backend/internal/security"
	"vehicle-rental-backend/internal/service"
	"vehicle-rental-backend/internal/storage"
)

type testEnv struct {
	router   *mux.Router
	registry *registry.Registry
	token    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	reg := registry.New(ctx, blob.NewRentalRepository(store), registry.Options{})
	vehicles := memory.NewVehicleRepository(memory.DefaultVehicles())
	tm := security.NewTokenManager("router-test-secret-0123456789abcdef", time.Hour)

	svc := Services{
		Catalog:  service.NewCatalogService(vehicles),
		Bookings: service.NewBookingService(vehicles, reg, 0, 30*time.Minute),
		Tracking: service.NewTrackingService(reg, service.TrackingOptions{
			TickInterval: time.Hour,
			StartMinutes: 25,
			Origin:       domain.Position{Lat: 40.7128, Lng: -74.0060},
			Jitter:       0.001,
		}),
		History: service.NewHistoryService(reg),
		Session: service.NewSessionService(blob.NewUserRepository(store), tm),
		Rentals: reg,
	}
	env := &testEnv{router: NewRouter(svc, tm), registry: reg}
	t.Cleanup(svc.Tracking.Close)

	rec := env.do(t, http.MethodPost, "/api/v1/session", `{"name":"Ada","email":"ada@example.com"}`, false)
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp signInResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	env.token = resp.AccessToken
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	if auth {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRouter_PublicAndAuth(t *testing.T) {
	env := newTestEnv(t)

	t.Run("Health", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/health", "", false)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Catalog is public", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/vehicles?type=car", "", false)
		require.Equal(t, http.StatusOK, rec.Code)
		vs := decode[[]domain.VehicleOffering](t, rec)
		assert.Len(t, vs, 2)

		rec = env.do(t, http.MethodGet, "/api/v1/vehicles/3/quote?duration=week", "", false)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 308, decode[domain.PriceQuote](t, rec).Total)

		rec = env.do(t, http.MethodGet, "/api/v1/vehicles?type=truck", "", false)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Bookings need a token", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/bookings", `{"vehicleId":"1"}`, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/rentals", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Current user", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/session", "", false)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Ada", decode[domain.User](t, rec).Name)
	})
}

func TestRouter_BookingFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/bookings", `{"vehicleId":"4"}`, true)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/v1/bookings", `{"vehicleId":"nope"}`, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/bookings", `{"vehicleId":"3","duration":"week"}`, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	view := decode[service.BookingView](t, rec)
	path := "/api/v1/bookings/" + view.ID

	rec = env.do(t, http.MethodPost, path+"/proceed", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[stageResponse](t, rec).Moved)

	rec = env.do(t, http.MethodPost, path+"/confirm", "", true)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPatch, path,
		`{"pickupDate":"2024-03-01","returnDate":"2024-03-08","fromLocation":"Downtown","toLocation":"Airport"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[service.BookingView](t, rec).CanProceed)

	rec = env.do(t, http.MethodPost, path+"/proceed", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	moved := decode[stageResponse](t, rec)
	assert.True(t, moved.Moved)
	assert.Equal(t, domain.BookingStagePayment, moved.Booking.Stage)

	before := len(env.registry.All())
	rec = env.do(t, http.MethodPost, path+"/confirm", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	done := decode[service.BookingView](t, rec)
	assert.Equal(t, domain.BookingStageSuccess, done.Stage)
	require.NotNil(t, done.Rental)
	assert.Equal(t, 308, done.Rental.Price)
	assert.Equal(t, "week", done.Rental.Duration)
	assert.Len(t, env.registry.All(), before+1)

	rec = env.do(t, http.MethodDelete, path, "", true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(t, http.MethodGet, path, "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_TrackingAndHistory(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/tracking", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/tracking", "", true)
	require.Equal(t, http.StatusCreated, rec.Code)
	tr := decode[trackingResponse](t, rec)
	assert.Equal(t, "1", tr.RentalID)
	assert.Equal(t, 25, tr.MinutesRemaining)
	require.NotNil(t, tr.Rental)
	assert.Equal(t, "Honda CB250R", tr.Rental.Model)

	rec = env.do(t, http.MethodPost, "/api/v1/tracking/complete", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.TripPhaseCompleted, decode[trackingResponse](t, rec).Phase)

	rec = env.do(t, http.MethodGet, "/api/v1/rentals/active", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/rentals/stats", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.RentalStats{TotalSpent: 570, CompletedCount: 2}, decode[service.RentalStats](t, rec))

	rec = env.do(t, http.MethodGet, "/api/v1/rentals?status=completed&sort=price", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]domain.RentalRecord](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, "2", list[0].ID)

	rec = env.do(t, http.MethodGet, "/api/v1/rentals?status=bogus", "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/tracking", "", true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/v1/tracking", "", true)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, decode[trackingResponse](t, rec).NoActiveRental)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(registry.ErrActiveRentalExists))
	assert.Equal(t, http.StatusConflict, statusFor(domain.ErrInvalidTransition))
	assert.Equal(t, http.StatusNotFound, statusFor(service.ErrNotSignedIn))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(context.Canceled))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
