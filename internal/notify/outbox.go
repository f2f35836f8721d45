package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pending is a notification row that has not been emailed yet.
type Pending struct {
	ID             uuid.UUID
	Type           string
	Title          string
	Message        string
	BookingID      *uuid.UUID
	RecipientEmail string
	RecipientName  string
	Attempts       int
	CreatedAt      time.Time
}

type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// DefaultClaimTTL is how long a fetched notification stays reserved for the
// worker that claimed it.
const DefaultClaimTTL = 2 * time.Minute

// OutboxStore reads undelivered notifications and records delivery attempts.
// Fetching claims rows with a lease, so several workers can share the outbox
// without emailing a notification twice.
type OutboxStore struct {
	db       db
	now      func() time.Time
	claimTTL time.Duration
}

func NewOutboxStore(pool *pgxpool.Pool) *OutboxStore {
	if pool == nil {
		panic("notify: pgx pool required")
	}
	return NewOutboxStoreWithDB(pool)
}

func NewOutboxStoreWithDB(conn db) *OutboxStore {
	return &OutboxStore{db: conn, now: func() time.Time { return time.Now().UTC() }, claimTTL: DefaultClaimTTL}
}

// WithClaimTTL sets the lease length. It should exceed the time a batch takes
// to send; an expired lease lets another worker pick the row up.
func (s *OutboxStore) WithClaimTTL(ttl time.Duration) *OutboxStore {
	if ttl > 0 {
		s.claimTTL = ttl
	}
	return s
}

// fetchPendingSQL picks candidates under SKIP LOCKED, then takes the lease in
// the upsert. The upsert re-checks claimed_until against the latest row, so a
// notification claimed concurrently by another worker is not returned.
const fetchPendingSQL = `
	WITH candidates AS (
		SELECT n.id
		FROM notifications n
		LEFT JOIN notification_deliveries d ON d.notification_id = n.id
		WHERE d.delivered_at IS NULL
			AND COALESCE(d.attempts, 0) < $2
			AND (d.claimed_until IS NULL OR d.claimed_until < $3)
		ORDER BY n.created_at
		LIMIT $1
		FOR UPDATE OF n SKIP LOCKED
	), claimed AS (
		INSERT INTO notification_deliveries (notification_id, channel, attempts, claimed_until)
		SELECT id, 'email', 0, $4 FROM candidates
		ON CONFLICT (notification_id) DO UPDATE
		SET claimed_until = EXCLUDED.claimed_until
		WHERE notification_deliveries.delivered_at IS NULL
			AND (notification_deliveries.claimed_until IS NULL OR notification_deliveries.claimed_until < $3)
		RETURNING notification_id, attempts
	)
	SELECT n.id, n.notification_type, n.title, n.message, n.related_booking_id,
		u.email, u.first_name || ' ' || u.last_name, c.attempts, n.created_at
	FROM claimed c
	JOIN notifications n ON n.id = c.notification_id
	JOIN users u ON u.id = n.user_id
	ORDER BY n.created_at
`

// FetchPending claims up to limit notifications that still need an email,
// skipping rows that already failed maxAttempts times or are leased to
// another worker.
func (s *OutboxStore) FetchPending(ctx context.Context, limit int32, maxAttempts int) ([]Pending, error) {
	now := s.now()
	rows, err := s.db.Query(ctx, fetchPendingSQL, limit, maxAttempts, now, now.Add(s.claimTTL))
	if err != nil {
		return nil, fmt.Errorf("notify: fetch pending: %w", err)
	}
	defer rows.Close()

	var entries []Pending
	for rows.Next() {
		var p Pending
		if err := rows.Scan(&p.ID, &p.Type, &p.Title, &p.Message, &p.BookingID,
			&p.RecipientEmail, &p.RecipientName, &p.Attempts, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("notify: scan pending: %w", err)
		}
		entries = append(entries, p)
	}
	return entries, rows.Err()
}

const recordAttemptSQL = `
	INSERT INTO notification_deliveries (notification_id, channel, delivered_at, error, attempts, attempted_at)
	VALUES ($1, 'email', $2, $3, 1, $4)
	ON CONFLICT (notification_id) DO UPDATE
	SET delivered_at = EXCLUDED.delivered_at,
		error = EXCLUDED.error,
		attempts = notification_deliveries.attempts + 1,
		attempted_at = EXCLUDED.attempted_at,
		claimed_until = NULL
	WHERE notification_deliveries.delivered_at IS NULL
`

// MarkDelivered records a successful send. It reports false when the
// notification was already marked delivered.
func (s *OutboxStore) MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error) {
	now := s.now()
	ct, err := s.db.Exec(ctx, recordAttemptSQL, id, now, nil, now)
	if err != nil {
		return false, fmt.Errorf("notify: mark delivered: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

// MarkFailed records a failed attempt so the row is retried until the attempt cap.
func (s *OutboxStore) MarkFailed(ctx context.Context, id uuid.UUID, cause error) error {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	if _, err := s.db.Exec(ctx, recordAttemptSQL, id, nil, msg, s.now()); err != nil {
		return fmt.Errorf("notify: mark failed: %w", err)
	}
	return nil
}
