package bookings

import "github.com/avenrae/avenrae-api/pkg/apperrors"

var (
	// ErrServiceNotFound is returned when the service is missing, inactive or
	// belongs to another healer
	ErrServiceNotFound = apperrors.NewNotFoundError("Service not found")

	// ErrHealerNotFound is returned when the healer row cannot be locked
	ErrHealerNotFound = apperrors.NewNotFoundError("Healer not found")

	// ErrBookingNotFound is returned when a booking id does not exist
	ErrBookingNotFound = apperrors.NewNotFoundError("Booking not found")

	// ErrSlotTaken is returned when the requested window overlaps an active booking
	ErrSlotTaken = apperrors.NewConflictError("The healer already has a booking in this time slot")

	// ErrCancelViaPatch is returned when an update tries to set status cancelled
	ErrCancelViaPatch = apperrors.NewValidationError("use DELETE /api/bookings/{id} to cancel a booking")

	// ErrRefundViaPatch is returned when an update tries to set payment_status refunded
	ErrRefundViaPatch = apperrors.NewValidationError("refunds are issued by cancelling the booking")

	// ErrEmptyPatch is returned when an update names no updatable field
	ErrEmptyPatch = apperrors.NewValidationError("no updatable fields provided")
)
