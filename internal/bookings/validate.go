package bookings

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avenrae/avenrae-api/pkg/apperrors"
)

// bookingDateLayouts are accepted in addition to RFC 3339. Values without a
// zone are read as UTC.
var bookingDateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Validate checks required fields and parses ids and the booking date.
func (r CreateBookingRequest) Validate() (NewBooking, error) {
	var out NewBooking

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"client_id", r.ClientID},
		{"healer_id", r.HealerID},
		{"service_id", r.ServiceID},
		{"booking_date", r.BookingDate},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return out, apperrors.NewValidationError("Missing required fields: " + strings.Join(missing, ", "))
	}

	var err error
	if out.ClientID, err = parseID("client_id", r.ClientID); err != nil {
		return out, err
	}
	if out.HealerID, err = parseID("healer_id", r.HealerID); err != nil {
		return out, err
	}
	if out.ServiceID, err = parseID("service_id", r.ServiceID); err != nil {
		return out, err
	}
	if out.BookingDate, err = ParseBookingDate(r.BookingDate); err != nil {
		return out, err
	}

	switch BookingType(strings.TrimSpace(r.BookingType)) {
	case "", TypeOnline:
		out.BookingType = TypeOnline
	case TypeInPerson:
		out.BookingType = TypeInPerson
	default:
		return out, apperrors.NewValidationError("booking_type must be online or in-person")
	}

	if notes := strings.TrimSpace(r.Notes); notes != "" {
		out.Notes = &notes
	}
	return out, nil
}

// ParseBookingDate accepts RFC 3339 or a zone-less local timestamp and
// returns the instant in UTC.
func ParseBookingDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range bookingDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.NewValidationError("booking_date must be an ISO-8601 timestamp")
}

// ParseDay parses a YYYY-MM-DD calendar day as UTC midnight.
func ParseDay(field, raw string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field))
	}
	return t, nil
}

// ParseID validates a path or body identifier.
func ParseID(field, raw string) (uuid.UUID, error) {
	return parseID(field, raw)
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError(field + " must be a valid id")
	}
	return id, nil
}
