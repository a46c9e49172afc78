package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"vehicle-rental-backend/internal/security"
)

// NewRouter registers every route under its security name. See
// config.EndpointSecurityConfig for which names need a token.
func NewRouter(svc Services, tm security.TokenManager) *mux.Router {
	h := NewHandler(svc)
	router := mux.NewRouter()
	router.Use(LoggingMiddleware, NewAuthMiddleware(tm).Handler)

	router.HandleFunc("/health", h.Health).Methods(http.MethodGet).Name("Health")

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/session", h.SignIn).Methods(http.MethodPost).Name("SignIn")
	api.HandleFunc("/session", h.CurrentUser).Methods(http.MethodGet).Name("CurrentUser")
	api.HandleFunc("/session", h.SignOut).Methods(http.MethodDelete).Name("SignOut")

	api.HandleFunc("/vehicles", h.SearchVehicles).Methods(http.MethodGet).Name("SearchVehicles")
	api.HandleFunc("/vehicles/{id}/quote", h.QuoteVehicle).Methods(http.MethodGet).Name("QuoteVehicle")

	api.HandleFunc("/bookings", h.OpenBooking).Methods(http.MethodPost).Name("OpenBooking")
	api.HandleFunc("/bookings/{id}", h.GetBooking).Methods(http.MethodGet).Name("GetBooking")
	api.HandleFunc("/bookings/{id}", h.UpdateBooking).Methods(http.MethodPatch).Name("UpdateBooking")
	api.HandleFunc("/bookings/{id}", h.CloseBooking).Methods(http.MethodDelete).Name("CloseBooking")
	api.HandleFunc("/bookings/{id}/proceed", h.ProceedBooking).Methods(http.MethodPost).Name("ProceedBooking")
	api.HandleFunc("/bookings/{id}/back", h.BackBooking).Methods(http.MethodPost).Name("BackBooking")
	api.HandleFunc("/bookings/{id}/confirm", h.ConfirmBooking).Methods(http.MethodPost).Name("ConfirmBooking")

	api.HandleFunc("/tracking", h.OpenTracking).Methods(http.MethodPost).Name("OpenTracking")
	api.HandleFunc("/tracking", h.GetTracking).Methods(http.MethodGet).Name("GetTracking")
	api.HandleFunc("/tracking", h.CloseTracking).Methods(http.MethodDelete).Name("CloseTracking")
	api.HandleFunc("/tracking/complete", h.CompleteTracking).Methods(http.MethodPost).Name("CompleteTracking")

	api.HandleFunc("/rentals", h.ListRentals).Methods(http.MethodGet).Name("ListRentals")
	api.HandleFunc("/rentals/stats", h.RentalStats).Methods(http.MethodGet).Name("RentalStats")
	api.HandleFunc("/rentals/active", h.ActiveRental).Methods(http.MethodGet).Name("ActiveRental")

	return router
}
