package bookings

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avenrae/avenrae-api/pkg/apperrors"
)

func validRequest() CreateBookingRequest {
	return CreateBookingRequest{
		ClientID:    uuid.NewString(),
		HealerID:    uuid.NewString(),
		ServiceID:   uuid.NewString(),
		BookingDate: "2025-11-15T10:00:00Z",
	}
}

func TestValidateDefaultsToOnline(t *testing.T) {
	in, err := validRequest().Validate()
	require.NoError(t, err)
	assert.Equal(t, TypeOnline, in.BookingType)
	assert.Equal(t, time.Date(2025, 11, 15, 10, 0, 0, 0, time.UTC), in.BookingDate)
	assert.Nil(t, in.Notes)
}

func TestValidateRejectsMissingFields(t *testing.T) {
	req := validRequest()
	req.ClientID = ""
	req.BookingDate = "  "

	_, err := req.Validate()
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))
	assert.Contains(t, apperrors.PublicMessage(err), "client_id")
	assert.Contains(t, apperrors.PublicMessage(err), "booking_date")
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateBookingRequest)
	}{
		{"bad healer id", func(r *CreateBookingRequest) { r.HealerID = "42" }},
		{"bad date", func(r *CreateBookingRequest) { r.BookingDate = "next tuesday" }},
		{"bad type", func(r *CreateBookingRequest) { r.BookingType = "phone" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			_, err := req.Validate()
			assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))
		})
	}
}

func TestValidateKeepsNotesAndType(t *testing.T) {
	req := validRequest()
	req.BookingType = "in-person"
	req.Notes = "  first session  "
	in, err := req.Validate()
	require.NoError(t, err)
	assert.Equal(t, TypeInPerson, in.BookingType)
	require.NotNil(t, in.Notes)
	assert.Equal(t, "first session", *in.Notes)
}

func TestParseBookingDateLayouts(t *testing.T) {
	want := time.Date(2025, 11, 15, 8, 0, 0, 0, time.UTC)
	for _, raw := range []string{"2025-11-15T10:00:00+02:00", "2025-11-15T08:00", "2025-11-15 08:00:00"} {
		got, err := ParseBookingDate(raw)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(got), "%s parsed to %s", raw, got)
	}
}

func TestParseDay(t *testing.T) {
	day, err := ParseDay("date", "2025-11-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC), day)

	_, err = ParseDay("date", "15/11/2025")
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))
}

func TestPatchValidate(t *testing.T) {
	bogus := Status("archived")
	paid := PaymentPaid
	zero := 0
	six := 6

	assert.Error(t, Patch{}.Validate())
	assert.Error(t, Patch{Status: &bogus}.Validate())
	assert.Error(t, Patch{ClientRating: &zero}.Validate())
	assert.Error(t, Patch{ClientRating: &six}.Validate())
	assert.NoError(t, Patch{PaymentStatus: &paid}.Validate())
}

func TestPatchValidateRoutesCancelAndRefundElsewhere(t *testing.T) {
	cancelled := StatusCancelled
	refunded := PaymentRefunded

	assert.ErrorIs(t, Patch{Status: &cancelled}.Validate(), ErrCancelViaPatch)
	assert.ErrorIs(t, Patch{PaymentStatus: &refunded}.Validate(), ErrRefundViaPatch)
}

func TestPatchValidateAgainstLifecycle(t *testing.T) {
	st := func(s Status) *Status { return &s }
	pay := func(p PaymentStatus) *PaymentStatus { return &p }

	tests := []struct {
		name    string
		patch   Patch
		status  Status
		payment PaymentStatus
		wantErr bool
	}{
		{"pending to confirmed", Patch{Status: st(StatusConfirmed)}, StatusPending, PaymentUnpaid, false},
		{"confirmed to completed", Patch{Status: st(StatusCompleted)}, StatusConfirmed, PaymentPaid, false},
		{"same status is a no-op", Patch{Status: st(StatusConfirmed)}, StatusConfirmed, PaymentUnpaid, false},
		{"unpaid to paid", Patch{PaymentStatus: pay(PaymentPaid)}, StatusConfirmed, PaymentUnpaid, false},
		{"paid after completion", Patch{PaymentStatus: pay(PaymentPaid)}, StatusCompleted, PaymentUnpaid, false},
		{"pending to completed", Patch{Status: st(StatusCompleted)}, StatusPending, PaymentUnpaid, true},
		{"confirmed back to pending", Patch{Status: st(StatusPending)}, StatusConfirmed, PaymentUnpaid, true},
		{"completed back to confirmed", Patch{Status: st(StatusConfirmed)}, StatusCompleted, PaymentPaid, true},
		{"cancelled to pending", Patch{Status: st(StatusPending)}, StatusCancelled, PaymentRefunded, true},
		{"cancelled to confirmed", Patch{Status: st(StatusConfirmed)}, StatusCancelled, PaymentUnpaid, true},
		{"pay a cancelled booking", Patch{PaymentStatus: pay(PaymentPaid)}, StatusCancelled, PaymentUnpaid, true},
		{"refunded to paid", Patch{PaymentStatus: pay(PaymentPaid)}, StatusCompleted, PaymentRefunded, true},
		{"paid to unpaid", Patch{PaymentStatus: pay(PaymentUnpaid)}, StatusConfirmed, PaymentPaid, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.validateAgainst(tt.status, tt.payment)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperrors.Is(err, apperrors.ErrorTypeConflict), "got %v", err)
		})
	}
}

func TestPatchValidateAgainstStoredStatus(t *testing.T) {
	completed := StatusCompleted
	feedback := "Very calming"

	assert.Error(t, Patch{ClientFeedback: &feedback}.validateAgainst(StatusConfirmed, PaymentPaid))
	assert.NoError(t, Patch{ClientFeedback: &feedback}.validateAgainst(StatusCompleted, PaymentPaid))
	assert.NoError(t, Patch{Status: &completed, ClientFeedback: &feedback}.validateAgainst(StatusConfirmed, PaymentPaid))
}

func TestPatchAssignmentsFollowAllowList(t *testing.T) {
	paid := PaymentPaid
	feedback := "Great"
	cols, args := Patch{PaymentStatus: &paid, ClientFeedback: &feedback}.assignments()
	assert.Equal(t, []string{"payment_status", "client_feedback"}, cols)
	assert.Equal(t, []any{"paid", "Great"}, args)
}
