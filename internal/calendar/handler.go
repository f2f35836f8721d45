package calendar

import (
	"net/http"
	"strings"
	"time"

	"github.com/avenrae/avenrae-api/internal/http/respond"
	"github.com/avenrae/avenrae-api/pkg/apperrors"
	"github.com/avenrae/avenrae-api/pkg/logging"
)

// Handler serves GET /api/calendar.
type Handler struct {
	logger *logging.Logger
	now    func() time.Time
}

func NewHandler(logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{logger: logger, now: time.Now}
}

type gridResponse struct {
	Grid
	Weeks [][]*Day `json:"weeks"`
	Prev  string   `json:"prev"`
	Next  string   `json:"next"`
}

// ServeHTTP accepts month=YYYY-MM and optional min_date, max_date and
// selected as YYYY-MM-DD. Month defaults to the current month.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	today := h.now().UTC()
	opts := Options{Today: today}

	month := today
	if raw := strings.TrimSpace(q.Get("month")); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			respond.Error(w, r, h.logger, apperrors.NewValidationError("month must be in YYYY-MM format"))
			return
		}
		month = parsed
	}

	for _, f := range []struct {
		name string
		dest *time.Time
	}{
		{"min_date", &opts.MinDate},
		{"max_date", &opts.MaxDate},
		{"selected", &opts.Selected},
	} {
		raw := strings.TrimSpace(q.Get(f.name))
		if raw == "" {
			continue
		}
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respond.Error(w, r, h.logger, apperrors.NewValidationError(f.name+" must be a date in YYYY-MM-DD format"))
			return
		}
		*f.dest = parsed
	}
	if q.Get("month") == "" && !opts.Selected.IsZero() {
		month = opts.Selected
	}

	g := NewGrid(month, opts)
	respond.OK(w, http.StatusOK, gridResponse{
		Grid:  g,
		Weeks: g.Weeks(),
		Prev:  g.Prev().Month.Format("2006-01"),
		Next:  g.Next().Month.Format("2006-01"),
	})
}
