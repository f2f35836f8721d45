package healers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avenrae/avenrae-api/internal/money"
	"github.com/avenrae/avenrae-api/pkg/apperrors"
)

type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Directory reads the healer directory.
type Directory interface {
	List(ctx context.Context, p ListParams) ([]Healer, error)
	Get(ctx context.Context, id uuid.UUID) (*Detail, error)
	Availability(ctx context.Context, id uuid.UUID) ([]Availability, error)
}

// Repository reads healers from postgres.
type Repository struct {
	db db
}

// NewRepository creates a repository backed by pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("healers: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting mocks for tests.
func NewRepositoryWithDB(db db) *Repository {
	return &Repository{db: db}
}

const selectHealerList = `
	SELECT h.id, h.user_id, u.first_name, u.last_name, u.phone, u.profile_image_url,
		h.healer_type, h.specialization, h.hourly_rate_cents, h.rating::float8, h.total_reviews,
		h.years_of_experience, h.is_verified_healer, h.availability_status
	FROM healers h
	JOIN users u ON h.user_id = u.id
	WHERE h.is_verified_healer = TRUE
`

// List returns verified healers sorted descending by the requested column.
func (r *Repository) List(ctx context.Context, p ListParams) ([]Healer, error) {
	column, ok := sortColumns[p.Sort]
	if !ok {
		column = sortColumns["rating"]
	}

	query := selectHealerList
	args := []any{}
	if p.HealerType != "" {
		args = append(args, p.HealerType)
		query += fmt.Sprintf("\tAND h.healer_type = $%d\n", len(args))
	}
	args = append(args, p.Limit, p.Offset)
	query += fmt.Sprintf("\tORDER BY %s DESC, h.id LIMIT $%d OFFSET $%d\n", column, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceError("list healers", fmt.Errorf("healers: list: %w", err))
	}
	defer rows.Close()

	out := make([]Healer, 0)
	for rows.Next() {
		var h Healer
		var rate int64
		var reviews, years int32
		if err := rows.Scan(&h.ID, &h.UserID, &h.FirstName, &h.LastName, &h.Phone, &h.ProfileImageURL,
			&h.HealerType, &h.Specialization, &rate, &h.Rating, &reviews,
			&years, &h.IsVerified, &h.AvailabilityStatus); err != nil {
			return nil, apperrors.NewPersistenceError("scan healer", fmt.Errorf("healers: scan: %w", err))
		}
		h.HourlyRate = money.Cents(rate)
		h.TotalReviews = int(reviews)
		h.YearsOfExperience = int(years)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("list healers", fmt.Errorf("healers: list: %w", err))
	}
	return out, nil
}

const selectHealerDetail = `
	SELECT h.id, h.user_id, u.first_name, u.last_name, u.email, u.phone, u.profile_image_url, u.bio,
		h.healer_type, h.specialization, h.hourly_rate_cents, h.rating::float8, h.total_reviews,
		h.years_of_experience, h.is_verified_healer, h.availability_status
	FROM healers h
	JOIN users u ON h.user_id = u.id
	WHERE h.id = $1
`

const selectActiveOfferings = `
	SELECT id, healer_id, service_name, description, price_cents, discount_percentage::float8,
		duration_minutes, is_active
	FROM services
	WHERE healer_id = $1 AND is_active = TRUE
	ORDER BY service_name
`

const selectRecentReviews = `
	SELECT r.id, r.healer_id, r.reviewer_client_id, r.rating, r.comment, r.created_at,
		cu.first_name, cu.last_name
	FROM reviews r
	JOIN clients c ON r.reviewer_client_id = c.id
	JOIN users cu ON c.user_id = cu.id
	WHERE r.healer_id = $1
	ORDER BY r.created_at DESC
	LIMIT $2
`

// Get returns the healer with active services and the most recent reviews.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	var d Detail
	h := &d.Healer
	var rate int64
	var reviews, years int32
	err := r.db.QueryRow(ctx, selectHealerDetail, id).Scan(&h.ID, &h.UserID, &h.FirstName, &h.LastName,
		&h.Email, &h.Phone, &h.ProfileImageURL, &h.Bio, &h.HealerType, &h.Specialization, &rate,
		&h.Rating, &reviews, &years, &h.IsVerified, &h.AvailabilityStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("Healer not found")
		}
		return nil, apperrors.NewPersistenceError("load healer", fmt.Errorf("healers: get: %w", err))
	}
	h.HourlyRate = money.Cents(rate)
	h.TotalReviews = int(reviews)
	h.YearsOfExperience = int(years)

	if d.Services, err = r.offerings(ctx, id); err != nil {
		return nil, err
	}
	if d.Reviews, err = r.reviews(ctx, id); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repository) offerings(ctx context.Context, healerID uuid.UUID) ([]Offering, error) {
	rows, err := r.db.Query(ctx, selectActiveOfferings, healerID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("list services", fmt.Errorf("healers: list services: %w", err))
	}
	defer rows.Close()

	out := make([]Offering, 0)
	for rows.Next() {
		var o Offering
		var price int64
		var duration int32
		if err := rows.Scan(&o.ID, &o.HealerID, &o.Name, &o.Description, &price, &o.DiscountPercentage,
			&duration, &o.IsActive); err != nil {
			return nil, apperrors.NewPersistenceError("scan service", fmt.Errorf("healers: scan service: %w", err))
		}
		o.Price = money.Cents(price)
		o.DurationMinutes = int(duration)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("list services", fmt.Errorf("healers: list services: %w", err))
	}
	return out, nil
}

func (r *Repository) reviews(ctx context.Context, healerID uuid.UUID) ([]Review, error) {
	rows, err := r.db.Query(ctx, selectRecentReviews, healerID, recentReviews)
	if err != nil {
		return nil, apperrors.NewPersistenceError("list reviews", fmt.Errorf("healers: list reviews: %w", err))
	}
	defer rows.Close()

	out := make([]Review, 0)
	for rows.Next() {
		var rv Review
		var rating int32
		if err := rows.Scan(&rv.ID, &rv.HealerID, &rv.ReviewerClientID, &rating, &rv.Comment, &rv.CreatedAt,
			&rv.ReviewerFirstName, &rv.ReviewerLastName); err != nil {
			return nil, apperrors.NewPersistenceError("scan review", fmt.Errorf("healers: scan review: %w", err))
		}
		rv.Rating = int(rating)
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("list reviews", fmt.Errorf("healers: list reviews: %w", err))
	}
	return out, nil
}

const selectAvailability = `
	SELECT id, healer_id, day_of_week, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), is_available
	FROM healer_availability
	WHERE healer_id = $1
	ORDER BY day_of_week, start_time
`

// Availability returns the healer's weekly template ordered by weekday.
func (r *Repository) Availability(ctx context.Context, id uuid.UUID) ([]Availability, error) {
	rows, err := r.db.Query(ctx, selectAvailability, id)
	if err != nil {
		return nil, apperrors.NewPersistenceError("list availability", fmt.Errorf("healers: availability: %w", err))
	}
	defer rows.Close()

	out := make([]Availability, 0)
	for rows.Next() {
		var a Availability
		var day int32
		if err := rows.Scan(&a.ID, &a.HealerID, &day, &a.StartTime, &a.EndTime, &a.IsAvailable); err != nil {
			return nil, apperrors.NewPersistenceError("scan availability", fmt.Errorf("healers: scan availability: %w", err))
		}
		a.DayOfWeek = int(day)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("list availability", fmt.Errorf("healers: availability: %w", err))
	}
	return out, nil
}
