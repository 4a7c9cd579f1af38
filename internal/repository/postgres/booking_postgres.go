package postgres

import (
	"context"
	"database/sql"
	"errors"

	"tourapi/internal/model"
	"tourapi/internal/query"
	"tourapi/internal/repository"
)

// BookingPostgres implements repository.BookingRepository.
type BookingPostgres struct {
	db *sql.DB
}

func NewBookingPostgres(db *sql.DB) *BookingPostgres {
	return &BookingPostgres{db: db}
}

var _ repository.BookingRepository = (*BookingPostgres)(nil)

const bookingSelect = `SELECT b.id, b.tour_id, b.user_id, b.price, b.paid, b.created_at,
	t.name, t.slug, u.name, u.email, u.photo, u.role
	FROM bookings b
	JOIN tours t ON t.id = b.tour_id
	LEFT JOIN users u ON u.id = b.user_id AND u.active`

func scanBooking(s scanner) (*model.Booking, error) {
	var (
		b                            model.Booking
		tourName, tourSlug           string
		userName, email, photo, role sql.NullString
	)
	if err := s.Scan(&b.ID, &b.TourID, &b.UserID, &b.Price, &b.Paid, &b.CreatedAt,
		&tourName, &tourSlug, &userName, &email, &photo, &role); err != nil {
		return nil, err
	}
	b.Tour = &model.TourRef{ID: b.TourID, Name: tourName, Slug: tourSlug}
	if userName.Valid {
		b.User = &model.UserRef{ID: b.UserID, Name: userName.String, Email: email.String, Photo: photo.String, Role: model.Role(role.String)}
	}
	return &b, nil
}

func (r *BookingPostgres) List(ctx context.Context, q *query.Query) ([]model.Booking, error) {
	where, args := q.Where(nil, nil)
	page, args := q.LimitOffset(args)
	rows, err := r.db.QueryContext(ctx, bookingSelect+where+q.OrderBy()+page, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *BookingPostgres) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, bookingSelect+` WHERE b.id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return b, nil
}

// Create inserts the booking. A repeated checkout session yields repository.ErrDuplicate.
func (r *BookingPostgres) Create(ctx context.Context, b *model.Booking) (*model.Booking, error) {
	const q = `
		INSERT INTO bookings (tour_id, user_id, price, paid, checkout_session_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (checkout_session_id) DO NOTHING
		RETURNING id, created_at
	`
	session := sql.NullString{String: b.CheckoutSessionID, Valid: b.CheckoutSessionID != ""}
	out := *b
	err := r.db.QueryRowContext(ctx, q, b.TourID, b.UserID, b.Price, b.Paid, session).Scan(&out.ID, &out.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *BookingPostgres) Update(ctx context.Context, b *model.Booking) (*model.Booking, error) {
	const q = `
		UPDATE bookings SET tour_id = $2, user_id = $3, price = $4, paid = $5
		WHERE id = $1
		RETURNING created_at
	`
	out := *b
	if err := r.db.QueryRowContext(ctx, q, b.ID, b.TourID, b.UserID, b.Price, b.Paid).Scan(&out.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

func (r *BookingPostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *BookingPostgres) ToursForUser(ctx context.Context, userID string) ([]model.Tour, error) {
	q := tourSelect + ` WHERE NOT t.premium_tour AND t.id IN (SELECT tour_id FROM bookings WHERE user_id = $1) ORDER BY t.name, t.id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	return scanTours(rows)
}
