package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/avenrae/avenrae-api/internal/observability/metrics"
	"github.com/avenrae/avenrae-api/pkg/apperrors"
	"github.com/avenrae/avenrae-api/pkg/logging"
)

var bookingsTracer = otel.Tracer("avenrae.internal.bookings")

// Store is the persistence contract the service depends on.
type Store interface {
	Create(ctx context.Context, in NewBooking) (*Booking, error)
	ListForClient(ctx context.Context, clientID uuid.UUID) ([]ClientBooking, error)
	ListForHealer(ctx context.Context, healerID uuid.UUID, within *DateRange) ([]HealerBooking, error)
	Update(ctx context.Context, id uuid.UUID, patch Patch) (*Booking, error)
	Cancel(ctx context.Context, id uuid.UUID) (*CancelResult, error)
	BookedSlots(ctx context.Context, healerID uuid.UUID, day time.Time) ([]Slot, error)
}

// Service coordinates booking writes and reads.
type Service struct {
	store   Store
	metrics *metrics.BookingMetrics
	logger  *logging.Logger
}

// NewService constructs a bookings service.
func NewService(store Store, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if store == nil {
		panic("bookings: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, metrics: m, logger: logger}
}

// CreateBooking validates the request and persists the booking together
// with the healer notification.
func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (*CreateResult, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.create")
	defer span.End()

	in, err := req.Validate()
	if err != nil {
		s.reject(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("avenrae.healer_id", in.HealerID.String()),
		attribute.String("avenrae.service_id", in.ServiceID.String()),
	)

	booking, err := s.store.Create(ctx, in)
	if err != nil {
		s.reject(span, err)
		if apperrors.Is(err, apperrors.ErrorTypeConflict) {
			s.logger.Info("booking slot conflict", "healer_id", in.HealerID, "booking_date", in.BookingDate)
		}
		return nil, err
	}

	s.metrics.ObserveCreated(string(booking.BookingType))
	s.logger.Info("booking created",
		"booking_id", booking.ID,
		"healer_id", booking.HealerID,
		"client_id", booking.ClientID,
		"total_cents", int64(booking.TotalPrice),
	)
	return &CreateResult{BookingID: booking.ID, TotalPrice: booking.TotalPrice}, nil
}

func (s *Service) reject(span trace.Span, err error) {
	s.metrics.ObserveRejected(string(apperrors.TypeOf(err)))
	span.RecordError(err)
	span.SetStatus(codes.Error, apperrors.PublicMessage(err))
}

func (s *Service) ListClientBookings(ctx context.Context, clientID uuid.UUID) ([]ClientBooking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.list_client")
	defer span.End()
	out, err := s.store.ListForClient(ctx, clientID)
	if err != nil {
		span.RecordError(err)
	}
	return out, err
}

func (s *Service) ListHealerBookings(ctx context.Context, healerID uuid.UUID, within *DateRange) ([]HealerBooking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.list_healer")
	defer span.End()
	if within != nil && within.To.Before(within.From) {
		return nil, apperrors.NewValidationError("from_date must not be after to_date")
	}
	out, err := s.store.ListForHealer(ctx, healerID, within)
	if err != nil {
		span.RecordError(err)
	}
	return out, err
}

// UpdateBooking applies a partial update.
func (s *Service) UpdateBooking(ctx context.Context, id uuid.UUID, patch Patch) (*Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.update")
	defer span.End()
	span.SetAttributes(attribute.String("avenrae.booking_id", id.String()))

	if err := patch.Validate(); err != nil {
		return nil, err
	}
	booking, err := s.store.Update(ctx, id, patch)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.logger.Info("booking updated", "booking_id", id, "status", booking.Status, "payment_status", booking.PaymentStatus)
	return booking, nil
}

// CancelBooking cancels the booking and issues a refund record when it was paid.
func (s *Service) CancelBooking(ctx context.Context, id uuid.UUID) (*CancelResult, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("avenrae.booking_id", id.String()))

	result, err := s.store.Cancel(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	var refunded int64
	if result.Refund != nil {
		refunded = int64(result.Refund.Amount)
		s.logger.Info("refund issued", "booking_id", id, "transaction_id", result.Refund.ID, "amount_cents", refunded)
	}
	s.metrics.ObserveCancelled(refunded)
	s.logger.Info("booking cancelled", "booking_id", id)
	return result, nil
}

// BookedSlots lists occupied slots for the healer on a UTC day.
func (s *Service) BookedSlots(ctx context.Context, healerID uuid.UUID, day time.Time) ([]Slot, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.booked_slots")
	defer span.End()
	out, err := s.store.BookedSlots(ctx, healerID, day)
	if err != nil {
		span.RecordError(err)
	}
	return out, err
}
