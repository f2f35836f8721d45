package healers

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avenrae/avenrae-api/internal/money"
	"github.com/avenrae/avenrae-api/pkg/apperrors"
)

// Healer is a practitioner joined with the display fields of their user.
// Email and Bio are only populated on the detail view.
type Healer struct {
	ID                 uuid.UUID   `json:"id"`
	UserID             uuid.UUID   `json:"user_id"`
	FirstName          string      `json:"first_name"`
	LastName           string      `json:"last_name"`
	Email              *string     `json:"email,omitempty"`
	Phone              *string     `json:"phone,omitempty"`
	ProfileImageURL    *string     `json:"profile_image_url,omitempty"`
	Bio                *string     `json:"bio,omitempty"`
	HealerType         string      `json:"healer_type"`
	Specialization     *string     `json:"specialization,omitempty"`
	HourlyRate         money.Cents `json:"hourly_rate"`
	Rating             float64     `json:"rating"`
	TotalReviews       int         `json:"total_reviews"`
	YearsOfExperience  int         `json:"years_of_experience"`
	IsVerified         bool        `json:"is_verified_healer"`
	AvailabilityStatus string      `json:"availability_status"`
}

// Offering is a bookable service listed on a healer's profile.
type Offering struct {
	ID                 uuid.UUID   `json:"id"`
	HealerID           uuid.UUID   `json:"healer_id"`
	Name               string      `json:"service_name"`
	Description        *string     `json:"description,omitempty"`
	Price              money.Cents `json:"price"`
	DiscountPercentage float64     `json:"discount_percentage"`
	DurationMinutes    int         `json:"duration_minutes"`
	IsActive           bool        `json:"is_active"`
}

type Review struct {
	ID                uuid.UUID `json:"id"`
	HealerID          uuid.UUID `json:"healer_id"`
	ReviewerClientID  uuid.UUID `json:"reviewer_client_id"`
	Rating            int       `json:"rating"`
	Comment           *string   `json:"comment,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	ReviewerFirstName string    `json:"first_name"`
	ReviewerLastName  string    `json:"last_name"`
}

// Availability is one weekly template entry. DayOfWeek is 0 for Sunday.
type Availability struct {
	ID          uuid.UUID `json:"id"`
	HealerID    uuid.UUID `json:"healer_id"`
	DayOfWeek   int       `json:"day_of_week"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	IsAvailable bool      `json:"is_available"`
}

// Detail is the healer profile page payload.
type Detail struct {
	Healer   Healer     `json:"healer"`
	Services []Offering `json:"services"`
	Reviews  []Review   `json:"reviews"`
}

const (
	DefaultLimit  = 20
	MaxLimit      = 100
	recentReviews = 10
)

// sortColumns is the allow-list of sortable directory columns.
var sortColumns = map[string]string{
	"rating":              "h.rating",
	"hourly_rate":         "h.hourly_rate_cents",
	"total_reviews":       "h.total_reviews",
	"years_of_experience": "h.years_of_experience",
}

// ListParams filters and pages the directory.
type ListParams struct {
	HealerType string
	Sort       string
	Limit      int
	Offset     int
}

// ParseListParams reads healer_type, sort, limit and offset from a query
// string, applying defaults and bounds.
func ParseListParams(q url.Values) (ListParams, error) {
	p := ListParams{
		HealerType: strings.TrimSpace(q.Get("healer_type")),
		Sort:       strings.TrimSpace(q.Get("sort")),
		Limit:      DefaultLimit,
	}
	if p.Sort == "" {
		p.Sort = "rating"
	}
	if _, ok := sortColumns[p.Sort]; !ok {
		return p, apperrors.NewValidationError("sort must be one of rating, hourly_rate, total_reviews, years_of_experience")
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, apperrors.NewValidationError("limit must be a positive integer")
		}
		p.Limit = min(n, MaxLimit)
	}
	if raw := strings.TrimSpace(q.Get("offset")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return p, apperrors.NewValidationError("offset must be a non-negative integer")
		}
		p.Offset = n
	}
	return p, nil
}
