package bookings

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/avenrae/avenrae-api/internal/http/respond"
	"github.com/avenrae/avenrae-api/pkg/apperrors"
	"github.com/avenrae/avenrae-api/pkg/logging"
)

// BookingService is the subset of Service the HTTP layer calls.
type BookingService interface {
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*CreateResult, error)
	ListClientBookings(ctx context.Context, clientID uuid.UUID) ([]ClientBooking, error)
	ListHealerBookings(ctx context.Context, healerID uuid.UUID, within *DateRange) ([]HealerBooking, error)
	UpdateBooking(ctx context.Context, id uuid.UUID, patch Patch) (*Booking, error)
	CancelBooking(ctx context.Context, id uuid.UUID) (*CancelResult, error)
	BookedSlots(ctx context.Context, healerID uuid.UUID, day time.Time) ([]Slot, error)
}

// Handler serves the /api/bookings endpoints.
type Handler struct {
	service BookingService
	logger  *logging.Logger
}

func NewHandler(service BookingService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes mounts the booking endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/client/{client_id}", h.ListForClient)
	r.Get("/healer/{healer_id}", h.ListForHealer)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Cancel)
}

type createResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Data    *CreateResult `json:"data"`
}

// Create handles POST /api/bookings.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, h.logger, apperrors.NewValidationError("invalid JSON body"))
		return
	}
	result, err := h.service.CreateBooking(r.Context(), req)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, createResponse{
		Success: true,
		Message: "Booking created successfully",
		Data:    result,
	})
}

// ListForClient handles GET /api/bookings/client/{client_id}.
func (h *Handler) ListForClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := ParseID("client_id", chi.URLParam(r, "client_id"))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	out, err := h.service.ListClientBookings(r.Context(), clientID)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.OK(w, http.StatusOK, out)
}

// ListForHealer handles GET /api/bookings/healer/{healer_id}. The date
// filter applies only when both from_date and to_date are present.
func (h *Handler) ListForHealer(w http.ResponseWriter, r *http.Request) {
	healerID, err := ParseID("healer_id", chi.URLParam(r, "healer_id"))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}

	var within *DateRange
	fromRaw := strings.TrimSpace(r.URL.Query().Get("from_date"))
	toRaw := strings.TrimSpace(r.URL.Query().Get("to_date"))
	if fromRaw != "" && toRaw != "" {
		from, err := ParseDay("from_date", fromRaw)
		if err != nil {
			respond.Error(w, r, h.logger, err)
			return
		}
		to, err := ParseDay("to_date", toRaw)
		if err != nil {
			respond.Error(w, r, h.logger, err)
			return
		}
		within = &DateRange{From: from, To: to}
	}

	out, err := h.service.ListHealerBookings(r.Context(), healerID, within)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.OK(w, http.StatusOK, out)
}

// Update handles PUT /api/bookings/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID("id", chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	var patch Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respond.Error(w, r, h.logger, apperrors.NewValidationError("invalid JSON body"))
		return
	}
	booking, err := h.service.UpdateBooking(r.Context(), id, patch)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, respond.Envelope{
		Success: true,
		Message: "Booking updated successfully",
		Data:    booking,
	})
}

// Cancel handles DELETE /api/bookings/{id}.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID("id", chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	result, err := h.service.CancelBooking(r.Context(), id)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, respond.Envelope{
		Success: true,
		Message: "Booking cancelled successfully",
		Data:    result,
	})
}

// BookedSlots handles GET /api/healers/{id}/bookings?date=YYYY-MM-DD. It is
// mounted under the healer directory routes.
func (h *Handler) BookedSlots(w http.ResponseWriter, r *http.Request) {
	healerID, err := ParseID("id", chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	raw := strings.TrimSpace(r.URL.Query().Get("date"))
	if raw == "" {
		respond.Error(w, r, h.logger, apperrors.NewValidationError("Date parameter required"))
		return
	}
	day, err := ParseDay("date", raw)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	slots, err := h.service.BookedSlots(r.Context(), healerID, day)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.OK(w, http.StatusOK, slots)
}
