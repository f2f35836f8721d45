package healers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/avenrae/avenrae-api/internal/http/respond"
	"github.com/avenrae/avenrae-api/pkg/apperrors"
	"github.com/avenrae/avenrae-api/pkg/logging"
)

// Handler serves the /api/healers directory endpoints.
type Handler struct {
	directory Directory
	logger    *logging.Logger
}

func NewHandler(directory Directory, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{directory: directory, logger: logger}
}

// Routes mounts the directory endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/availability", h.Availability)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params, err := ParseListParams(r.URL.Query())
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	out, err := h.directory.List(r.Context(), params)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.Page(w, out, params.Limit, params.Offset)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.healerID(w, r)
	if !ok {
		return
	}
	detail, err := h.directory.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.OK(w, http.StatusOK, detail)
}

func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	id, ok := h.healerID(w, r)
	if !ok {
		return
	}
	out, err := h.directory.Availability(r.Context(), id)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.OK(w, http.StatusOK, out)
}

func (h *Handler) healerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		respond.Error(w, r, h.logger, apperrors.NewValidationError("id must be a valid id"))
		return uuid.Nil, false
	}
	return id, true
}
