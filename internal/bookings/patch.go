package bookings

import (
	"fmt"

	"github.com/avenrae/avenrae-api/pkg/apperrors"
)

// Patch is a partial update of a booking's mutable fields. Nil fields are
// left untouched.
type Patch struct {
	Status         *Status        `json:"status,omitempty"`
	PaymentStatus  *PaymentStatus `json:"payment_status,omitempty"`
	ClientRating   *int           `json:"client_rating,omitempty"`
	ClientFeedback *string        `json:"client_feedback,omitempty"`
}

func (p Patch) IsEmpty() bool {
	return p.Status == nil && p.PaymentStatus == nil && p.ClientRating == nil && p.ClientFeedback == nil
}

// Validate checks the patch on its own: at least one field, known enum
// values and a rating between 1 and 5.
func (p Patch) Validate() error {
	if p.IsEmpty() {
		return ErrEmptyPatch
	}
	if p.Status != nil && !p.Status.valid() {
		return apperrors.NewValidationError(fmt.Sprintf("invalid status %q", *p.Status))
	}
	if p.PaymentStatus != nil && !p.PaymentStatus.valid() {
		return apperrors.NewValidationError(fmt.Sprintf("invalid payment_status %q", *p.PaymentStatus))
	}
	if p.Status != nil && *p.Status == StatusCancelled {
		return ErrCancelViaPatch
	}
	if p.PaymentStatus != nil && *p.PaymentStatus == PaymentRefunded {
		return ErrRefundViaPatch
	}
	if p.ClientRating != nil && (*p.ClientRating < 1 || *p.ClientRating > 5) {
		return apperrors.NewValidationError("client_rating must be between 1 and 5")
	}
	return nil
}

// nextStatus lists the moves an update may make. Cancellation goes through
// Cancel so paid bookings are refunded; cancelled is terminal.
var nextStatus = map[Status]Status{
	StatusPending:   StatusConfirmed,
	StatusConfirmed: StatusCompleted,
}

// validateAgainst checks the patch against the locked row. Setting a field to
// its stored value is a no-op. Rating and feedback are only accepted once the
// resulting status is completed.
func (p Patch) validateAgainst(current Status, paid PaymentStatus) error {
	if current == StatusCancelled {
		return apperrors.NewConflictError("booking is cancelled and can no longer be updated")
	}
	resulting := current
	if p.Status != nil && *p.Status != current {
		if nextStatus[current] != *p.Status {
			return apperrors.NewConflictError(fmt.Sprintf("cannot move booking from %s to %s", current, *p.Status))
		}
		resulting = *p.Status
	}
	if p.PaymentStatus != nil && *p.PaymentStatus != paid {
		if paid != PaymentUnpaid || *p.PaymentStatus != PaymentPaid {
			return apperrors.NewConflictError(fmt.Sprintf("cannot move payment from %s to %s", paid, *p.PaymentStatus))
		}
	}
	if (p.ClientRating != nil || p.ClientFeedback != nil) && resulting != StatusCompleted {
		return apperrors.NewValidationError("client_rating and client_feedback require a completed booking")
	}
	return nil
}

// assignments maps the patch onto the fixed column allow-list. Values are
// returned in column order for positional binding.
func (p Patch) assignments() ([]string, []any) {
	var cols []string
	var args []any
	if p.Status != nil {
		cols = append(cols, "status")
		args = append(args, string(*p.Status))
	}
	if p.PaymentStatus != nil {
		cols = append(cols, "payment_status")
		args = append(args, string(*p.PaymentStatus))
	}
	if p.ClientRating != nil {
		cols = append(cols, "client_rating")
		args = append(args, int32(*p.ClientRating))
	}
	if p.ClientFeedback != nil {
		cols = append(cols, "client_feedback")
		args = append(args, *p.ClientFeedback)
	}
	return cols, args
}
