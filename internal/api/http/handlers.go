package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/service"
)

// Services groups everything the handlers call into.
type Services struct {
	Catalog  service.CatalogService
	Bookings service.BookingService
	Tracking service.TrackingService
	History  service.HistoryService
	Session  service.SessionService
	Rentals  service.RentalTracker
}

type Handler struct {
	svc Services
}

func NewHandler(svc Services) *Handler {
	return &Handler{svc: svc}
}

type signInRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type signInResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"accessToken"`
}

type stageResponse struct {
	Moved   bool                `json:"moved"`
	Booking service.BookingView `json:"booking"`
}

type trackingResponse struct {
	domain.TrackingState
	Rental *domain.RentalRecord `json:"rental,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	user, token, err := h.svc.Session.SignIn(r.Context(), req.Name, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, signInResponse{User: user, AccessToken: token})
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Session.Current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Session.SignOut(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SearchVehicles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	vehicles, err := h.svc.Catalog.Search(r.Context(), q.Get("q"), q.Get("type"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

func (h *Handler) QuoteVehicle(w http.ResponseWriter, r *http.Request) {
	unit := domain.DurationUnit(r.URL.Query().Get("duration"))
	quote, err := h.svc.Catalog.Quote(r.Context(), mux.Vars(r)["id"], unit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *Handler) OpenBooking(w http.ResponseWriter, r *http.Request) {
	var req service.OpenBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	b, err := h.svc.Bookings.Open(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b.View())
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	b, ok := h.booking(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, b.View())
}

func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	b, ok := h.booking(w, r)
	if !ok {
		return
	}
	var u service.DraftUpdate
	if err := decodeJSON(r, &u); err != nil {
		writeError(w, err)
		return
	}
	if err := b.Update(u); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b.View())
}

func (h *Handler) ProceedBooking(w http.ResponseWriter, r *http.Request) {
	b, ok := h.booking(w, r)
	if !ok {
		return
	}
	moved := b.Proceed()
	writeJSON(w, http.StatusOK, stageResponse{Moved: moved, Booking: b.View()})
}

func (h *Handler) BackBooking(w http.ResponseWriter, r *http.Request) {
	b, ok := h.booking(w, r)
	if !ok {
		return
	}
	moved := b.Back()
	writeJSON(w, http.StatusOK, stageResponse{Moved: moved, Booking: b.View()})
}

// ConfirmBooking blocks for the simulated payment delay.
func (h *Handler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	b, ok := h.booking(w, r)
	if !ok {
		return
	}
	if _, err := b.Confirm(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b.View())
}

func (h *Handler) CloseBooking(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Bookings.Close(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) OpenTracking(w http.ResponseWriter, r *http.Request) {
	sess := h.svc.Tracking.Open(r.Context())
	writeJSON(w, http.StatusCreated, h.trackingView(sess))
}

func (h *Handler) GetTracking(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.svc.Tracking.Current()
	if !ok {
		writeError(w, errTrackingNotOpen)
		return
	}
	writeJSON(w, http.StatusOK, h.trackingView(sess))
}

func (h *Handler) CompleteTracking(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.svc.Tracking.Current()
	if !ok {
		writeError(w, errTrackingNotOpen)
		return
	}
	if err := sess.CompleteTrip(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.trackingView(sess))
}

func (h *Handler) CloseTracking(w http.ResponseWriter, r *http.Request) {
	h.svc.Tracking.Close()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListRentals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rentals, err := h.svc.History.List(service.HistoryFilter(q.Get("status")), service.HistorySort(q.Get("sort")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rentals)
}

func (h *Handler) RentalStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.History.Stats())
}

func (h *Handler) ActiveRental(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.svc.Rentals.Active()
	if !ok {
		writeError(w, service.ErrNoActiveRental)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) booking(w http.ResponseWriter, r *http.Request) (*service.Booking, bool) {
	b, err := h.svc.Bookings.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return b, true
}

func (h *Handler) trackingView(sess *service.TrackingSession) trackingResponse {
	resp := trackingResponse{TrackingState: sess.State()}
	if resp.NoActiveRental {
		return resp
	}
	if rec, ok := h.svc.Rentals.Active(); ok && rec.ID == resp.RentalID {
		resp.Rental = &rec
	}
	return resp
}
