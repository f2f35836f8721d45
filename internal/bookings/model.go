package bookings

import (
	"time"

	"github.com/google/uuid"

	"github.com/avenrae/avenrae-api/internal/money"
)

// Status tracks a booking through pending, confirmed, completed or cancelled.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// PaymentStatus tracks payment: unpaid, paid, refunded.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

func (p PaymentStatus) valid() bool {
	switch p {
	case PaymentUnpaid, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

type BookingType string

const (
	TypeOnline   BookingType = "online"
	TypeInPerson BookingType = "in-person"
)

// Booking is a persisted booking row. DurationMinutes is copied from the
// service when the booking is created and never changes afterwards.
type Booking struct {
	ID              uuid.UUID     `json:"id"`
	ClientID        uuid.UUID     `json:"client_id"`
	HealerID        uuid.UUID     `json:"healer_id"`
	ServiceID       uuid.UUID     `json:"service_id"`
	BookingDate     time.Time     `json:"booking_date"`
	DurationMinutes int           `json:"duration_minutes"`
	BookingType     BookingType   `json:"booking_type"`
	Price           money.Cents   `json:"price"`
	DiscountApplied money.Cents   `json:"discount_applied"`
	TotalPrice      money.Cents   `json:"total_price"`
	Status          Status        `json:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	Notes           *string       `json:"notes,omitempty"`
	ClientRating    *int          `json:"client_rating,omitempty"`
	ClientFeedback  *string       `json:"client_feedback,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// End returns the instant the booked slot finishes.
func (b Booking) End() time.Time {
	return b.BookingDate.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// ClientBooking is a booking as listed for its client, with the service
// and healer display fields.
type ClientBooking struct {
	Booking
	ServiceName     string    `json:"service_name"`
	HealerUserID    uuid.UUID `json:"healer_user_id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	ProfileImageURL *string   `json:"profile_image_url,omitempty"`
}

// HealerBooking is a booking as listed for its healer, with the service
// and client display fields.
type HealerBooking struct {
	Booking
	ServiceName  string    `json:"service_name"`
	ClientUserID uuid.UUID `json:"client_user_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        *string   `json:"phone,omitempty"`
}

// Slot is an occupied interval on a healer's day.
type Slot struct {
	BookingDate     time.Time `json:"booking_date"`
	DurationMinutes int       `json:"duration_minutes"`
}

type Notification struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Type             string
	Title            string
	Message          string
	RelatedBookingID uuid.UUID
}

// Transaction records money movement tied to a booking.
type Transaction struct {
	ID               uuid.UUID   `json:"id"`
	Type             string      `json:"transaction_type"`
	UserID           uuid.UUID   `json:"user_id"`
	RelatedBookingID uuid.UUID   `json:"related_booking_id"`
	Amount           money.Cents `json:"amount"`
	Status           string      `json:"transaction_status"`
	CreatedAt        time.Time   `json:"created_at"`
}

const (
	notificationTypeBookingConfirmed = "booking_confirmed"
	notificationTitleNewBooking      = "New Booking Received"

	transactionTypeRefund      = "refund"
	transactionStatusCompleted = "completed"
)

// CreateBookingRequest is the raw booking submission.
type CreateBookingRequest struct {
	ClientID    string `json:"client_id"`
	HealerID    string `json:"healer_id"`
	ServiceID   string `json:"service_id"`
	BookingDate string `json:"booking_date"`
	BookingType string `json:"booking_type"`
	Notes       string `json:"notes"`
}

// NewBooking is a validated booking submission.
type NewBooking struct {
	ClientID    uuid.UUID
	HealerID    uuid.UUID
	ServiceID   uuid.UUID
	BookingDate time.Time
	BookingType BookingType
	Notes       *string
}

// CreateResult is returned after a booking is committed.
type CreateResult struct {
	BookingID  uuid.UUID   `json:"bookingId"`
	TotalPrice money.Cents `json:"totalPrice"`
}

// CancelResult describes a cancellation. Refund is set only when a refund
// transaction was written by this call.
type CancelResult struct {
	BookingID uuid.UUID    `json:"bookingId"`
	Status    Status       `json:"status"`
	Refund    *Transaction `json:"refund,omitempty"`
}

// DateRange is an inclusive range of UTC calendar days.
type DateRange struct {
	From time.Time
	To   time.Time
}

// bounds returns the half-open instant range [from 00:00, to+1 00:00).
func (r DateRange) bounds() (time.Time, time.Time) {
	return startOfDay(r.From), startOfDay(r.To).AddDate(0, 0, 1)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
