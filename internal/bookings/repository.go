package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avenrae/avenrae-api/internal/money"
	"github.com/avenrae/avenrae-api/pkg/apperrors"
)

type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides persistence for bookings and their side-effect rows.
type Repository struct {
	db    db
	now   func() time.Time
	newID func() uuid.UUID
}

// NewRepository creates a repository backed by pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("bookings: pgx pool required")
	}
	return NewRepositoryWithDB(pool)
}

// NewRepositoryWithDB allows injecting mocks for tests.
func NewRepositoryWithDB(db db) *Repository {
	return &Repository{db: db, now: time.Now, newID: uuid.New}
}

const bookingColumns = `id, client_id, healer_id, service_id, booking_date, duration_minutes, booking_type,
	price_cents, discount_cents, total_price_cents, status, payment_status, notes,
	client_rating, client_feedback, created_at, updated_at`

const prefixedBookingColumns = `b.id, b.client_id, b.healer_id, b.service_id, b.booking_date, b.duration_minutes, b.booking_type,
	b.price_cents, b.discount_cents, b.total_price_cents, b.status, b.payment_status, b.notes,
	b.client_rating, b.client_feedback, b.created_at, b.updated_at`

const selectServiceForBooking = `
	SELECT service_name, price_cents, discount_percentage::float8, duration_minutes
	FROM services
	WHERE id = $1 AND healer_id = $2 AND is_active = TRUE
`

const lockHealer = `SELECT user_id FROM healers WHERE id = $1 FOR UPDATE`

const selectOverlap = `
	SELECT EXISTS (
		SELECT 1 FROM bookings
		WHERE healer_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND booking_date < $3
		  AND booking_date + make_interval(mins => duration_minutes) > $2
	)
`

const insertBooking = `
	INSERT INTO bookings (id, client_id, healer_id, service_id, booking_date, duration_minutes,
		booking_type, price_cents, discount_cents, total_price_cents, status, payment_status, notes,
		created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'pending', 'unpaid', $11, $12, $12)
`

const insertNotification = `
	INSERT INTO notifications (id, user_id, notification_type, title, message, related_booking_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
`

// Create writes the booking and its healer notification in one transaction.
// The healer row is locked so overlapping requests for the same healer are
// serialized and only the first one commits.
func (r *Repository) Create(ctx context.Context, in NewBooking) (*Booking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		serviceName string
		price       int64
		discountPct float64
		duration    int32
	)
	err = tx.QueryRow(ctx, selectServiceForBooking, in.ServiceID, in.HealerID).Scan(&serviceName, &price, &discountPct, &duration)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, apperrors.NewPersistenceError("load service", fmt.Errorf("bookings: load service: %w", err))
	}

	var healerUserID uuid.UUID
	if err := tx.QueryRow(ctx, lockHealer, in.HealerID).Scan(&healerUserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrHealerNotFound
		}
		return nil, apperrors.NewPersistenceError("lock healer", fmt.Errorf("bookings: lock healer: %w", err))
	}

	start := in.BookingDate.UTC()
	end := start.Add(time.Duration(duration) * time.Minute)
	var overlaps bool
	if err := tx.QueryRow(ctx, selectOverlap, in.HealerID, start, end).Scan(&overlaps); err != nil {
		return nil, apperrors.NewPersistenceError("check overlap", fmt.Errorf("bookings: check overlap: %w", err))
	}
	if overlaps {
		return nil, ErrSlotTaken
	}

	priceCents := money.Cents(price)
	discount := priceCents.PercentOf(discountPct)
	now := r.now().UTC()
	booking := &Booking{
		ID:              r.newID(),
		ClientID:        in.ClientID,
		HealerID:        in.HealerID,
		ServiceID:       in.ServiceID,
		BookingDate:     start,
		DurationMinutes: int(duration),
		BookingType:     in.BookingType,
		Price:           priceCents,
		DiscountApplied: discount,
		TotalPrice:      priceCents - discount,
		Status:          StatusPending,
		PaymentStatus:   PaymentUnpaid,
		Notes:           in.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := tx.Exec(ctx, insertBooking,
		booking.ID, booking.ClientID, booking.HealerID, booking.ServiceID, booking.BookingDate,
		duration, string(booking.BookingType), int64(booking.Price), int64(booking.DiscountApplied),
		int64(booking.TotalPrice), booking.Notes, now,
	); err != nil {
		return nil, apperrors.NewPersistenceError("insert booking", fmt.Errorf("bookings: insert booking: %w", err))
	}

	notification := Notification{
		ID:               r.newID(),
		UserID:           healerUserID,
		Type:             notificationTypeBookingConfirmed,
		Title:            notificationTitleNewBooking,
		Message:          "A new booking has been received for " + serviceName,
		RelatedBookingID: booking.ID,
	}
	if _, err := tx.Exec(ctx, insertNotification,
		notification.ID, notification.UserID, notification.Type, notification.Title,
		notification.Message, notification.RelatedBookingID, now,
	); err != nil {
		return nil, apperrors.NewPersistenceError("insert notification", fmt.Errorf("bookings: insert notification: %w", err))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.NewPersistenceError("commit booking", fmt.Errorf("bookings: commit: %w", err))
	}
	return booking, nil
}

// bookingRow holds scan targets for a bookings row whose columns need
// conversion into domain types.
type bookingRow struct {
	b             Booking
	duration      int32
	bookingType   string
	price         int64
	discount      int64
	total         int64
	status        string
	paymentStatus string
	rating        *int32
}

func (r *bookingRow) targets() []any {
	return []any{
		&r.b.ID, &r.b.ClientID, &r.b.HealerID, &r.b.ServiceID, &r.b.BookingDate, &r.duration, &r.bookingType,
		&r.price, &r.discount, &r.total, &r.status, &r.paymentStatus, &r.b.Notes,
		&r.rating, &r.b.ClientFeedback, &r.b.CreatedAt, &r.b.UpdatedAt,
	}
}

func (r *bookingRow) booking() Booking {
	b := r.b
	b.BookingDate = b.BookingDate.UTC()
	b.DurationMinutes = int(r.duration)
	b.BookingType = BookingType(r.bookingType)
	b.Price = money.Cents(r.price)
	b.DiscountApplied = money.Cents(r.discount)
	b.TotalPrice = money.Cents(r.total)
	b.Status = Status(r.status)
	b.PaymentStatus = PaymentStatus(r.paymentStatus)
	if r.rating != nil {
		rating := int(*r.rating)
		b.ClientRating = &rating
	}
	return b
}

const selectClientBookings = `
	SELECT ` + prefixedBookingColumns + `,
		s.service_name, h.user_id, u.first_name, u.last_name, u.profile_image_url
	FROM bookings b
	JOIN services s ON b.service_id = s.id
	JOIN healers h ON b.healer_id = h.id
	JOIN users u ON h.user_id = u.id
	WHERE b.client_id = $1
	ORDER BY b.booking_date DESC
`

// ListForClient returns the client's bookings, newest first.
func (r *Repository) ListForClient(ctx context.Context, clientID uuid.UUID) ([]ClientBooking, error) {
	rows, err := r.db.Query(ctx, selectClientBookings, clientID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("list client bookings", fmt.Errorf("bookings: list for client: %w", err))
	}
	defer rows.Close()

	out := make([]ClientBooking, 0)
	for rows.Next() {
		var row bookingRow
		var cb ClientBooking
		dest := append(row.targets(), &cb.ServiceName, &cb.HealerUserID, &cb.FirstName, &cb.LastName, &cb.ProfileImageURL)
		if err := rows.Scan(dest...); err != nil {
			return nil, apperrors.NewPersistenceError("scan client booking", fmt.Errorf("bookings: scan client booking: %w", err))
		}
		cb.Booking = row.booking()
		out = append(out, cb)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("list client bookings", fmt.Errorf("bookings: list for client: %w", err))
	}
	return out, nil
}

const selectHealerBookings = `
	SELECT ` + prefixedBookingColumns + `,
		s.service_name, c.user_id, u.first_name, u.last_name, u.phone
	FROM bookings b
	JOIN services s ON b.service_id = s.id
	JOIN clients c ON b.client_id = c.id
	JOIN users u ON c.user_id = u.id
	WHERE b.healer_id = $1
`

// ListForHealer returns the healer's bookings in ascending date order,
// optionally restricted to an inclusive range of days.
func (r *Repository) ListForHealer(ctx context.Context, healerID uuid.UUID, within *DateRange) ([]HealerBooking, error) {
	query := selectHealerBookings
	args := []any{healerID}
	if within != nil {
		from, to := within.bounds()
		query += "\tAND b.booking_date >= $2 AND b.booking_date < $3\n"
		args = append(args, from, to)
	}
	query += "\tORDER BY b.booking_date ASC\n"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceError("list healer bookings", fmt.Errorf("bookings: list for healer: %w", err))
	}
	defer rows.Close()

	out := make([]HealerBooking, 0)
	for rows.Next() {
		var row bookingRow
		var hb HealerBooking
		dest := append(row.targets(), &hb.ServiceName, &hb.ClientUserID, &hb.FirstName, &hb.LastName, &hb.Phone)
		if err := rows.Scan(dest...); err != nil {
			return nil, apperrors.NewPersistenceError("scan healer booking", fmt.Errorf("bookings: scan healer booking: %w", err))
		}
		hb.Booking = row.booking()
		out = append(out, hb)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("list healer bookings", fmt.Errorf("bookings: list for healer: %w", err))
	}
	return out, nil
}

const lockBookingStatus = `SELECT status, payment_status FROM bookings WHERE id = $1 FOR UPDATE`

// Update applies the patch to the booking and returns the stored row.
// Only columns named by the patch are written; updated_at is always set.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, patch Patch) (*Booking, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current, paid string
	if err := tx.QueryRow(ctx, lockBookingStatus, id).Scan(&current, &paid); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, apperrors.NewPersistenceError("load booking", fmt.Errorf("bookings: load for update: %w", err))
	}
	if err := patch.validateAgainst(Status(current), PaymentStatus(paid)); err != nil {
		return nil, err
	}

	cols, values := patch.assignments()
	sets := make([]string, 0, len(cols)+1)
	args := []any{id}
	for i, col := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+2))
		args = append(args, values[i])
	}
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)+1))
	args = append(args, r.now().UTC())

	query := "UPDATE bookings SET " + strings.Join(sets, ", ") + " WHERE id = $1 RETURNING " + bookingColumns
	var row bookingRow
	if err := tx.QueryRow(ctx, query, args...).Scan(row.targets()...); err != nil {
		return nil, apperrors.NewPersistenceError("update booking", fmt.Errorf("bookings: update: %w", err))
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.NewPersistenceError("commit update", fmt.Errorf("bookings: commit update: %w", err))
	}
	booking := row.booking()
	return &booking, nil
}

const lockBookingForCancel = `
	SELECT client_id, status, payment_status, total_price_cents
	FROM bookings
	WHERE id = $1
	FOR UPDATE
`

const insertRefund = `
	INSERT INTO transactions (id, transaction_type, user_id, related_booking_id, amount_cents, transaction_status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
`

// Cancel marks the booking cancelled. A paid booking gets exactly one refund
// transaction for its total price and moves to payment_status refunded.
// Cancelling an already cancelled booking changes nothing.
func (r *Repository) Cancel(ctx context.Context, id uuid.UUID) (*CancelResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		clientID      uuid.UUID
		status        string
		paymentStatus string
		total         int64
	)
	if err := tx.QueryRow(ctx, lockBookingForCancel, id).Scan(&clientID, &status, &paymentStatus, &total); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, apperrors.NewPersistenceError("load booking", fmt.Errorf("bookings: load for cancel: %w", err))
	}

	result := &CancelResult{BookingID: id, Status: StatusCancelled}
	if Status(status) == StatusCancelled {
		return result, nil
	}

	now := r.now().UTC()
	paid := PaymentStatus(paymentStatus) == PaymentPaid
	nextPayment := PaymentStatus(paymentStatus)
	if paid {
		nextPayment = PaymentRefunded
	}
	if _, err := tx.Exec(ctx,
		`UPDATE bookings SET status = $2, payment_status = $3, updated_at = $4 WHERE id = $1`,
		id, string(StatusCancelled), string(nextPayment), now,
	); err != nil {
		return nil, apperrors.NewPersistenceError("cancel booking", fmt.Errorf("bookings: cancel: %w", err))
	}

	if paid {
		refund := &Transaction{
			ID:               r.newID(),
			Type:             transactionTypeRefund,
			UserID:           clientID,
			RelatedBookingID: id,
			Amount:           money.Cents(total),
			Status:           transactionStatusCompleted,
			CreatedAt:        now,
		}
		if _, err := tx.Exec(ctx, insertRefund,
			refund.ID, refund.Type, refund.UserID, refund.RelatedBookingID, total, refund.Status, now,
		); err != nil {
			return nil, apperrors.NewPersistenceError("insert refund", fmt.Errorf("bookings: insert refund: %w", err))
		}
		result.Refund = refund
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.NewPersistenceError("commit cancel", fmt.Errorf("bookings: commit cancel: %w", err))
	}
	return result, nil
}

const selectBookedSlots = `
	SELECT booking_date, duration_minutes
	FROM bookings
	WHERE healer_id = $1
	  AND booking_date >= $2 AND booking_date < $3
	  AND status IN ('pending', 'confirmed')
	ORDER BY booking_date
`

// BookedSlots returns the pending and confirmed slots of the healer on the
// given UTC day.
func (r *Repository) BookedSlots(ctx context.Context, healerID uuid.UUID, day time.Time) ([]Slot, error) {
	from, to := DateRange{From: day, To: day}.bounds()
	rows, err := r.db.Query(ctx, selectBookedSlots, healerID, from, to)
	if err != nil {
		return nil, apperrors.NewPersistenceError("list booked slots", fmt.Errorf("bookings: booked slots: %w", err))
	}
	defer rows.Close()

	out := make([]Slot, 0)
	for rows.Next() {
		var slot Slot
		var duration int32
		if err := rows.Scan(&slot.BookingDate, &duration); err != nil {
			return nil, apperrors.NewPersistenceError("scan booked slot", fmt.Errorf("bookings: scan slot: %w", err))
		}
		slot.BookingDate = slot.BookingDate.UTC()
		slot.DurationMinutes = int(duration)
		out = append(out, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("list booked slots", fmt.Errorf("bookings: booked slots: %w", err))
	}
	return out, nil
}
