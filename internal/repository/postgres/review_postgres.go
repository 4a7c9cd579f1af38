package postgres

import (
	"context"
	"database/sql"

	"tourapi/internal/database"
	"tourapi/internal/model"
	"tourapi/internal/query"
	"tourapi/internal/repository"
)

// ReviewPostgres implements repository.ReviewRepository.
type ReviewPostgres struct {
	db *sql.DB
}

func NewReviewPostgres(db *sql.DB) *ReviewPostgres {
	return &ReviewPostgres{db: db}
}

var _ repository.ReviewRepository = (*ReviewPostgres)(nil)

const reviewSelect = `SELECT r.id, r.review, r.rating, r.created_at, r.tour_id, r.user_id, u.name, u.photo
	FROM reviews r LEFT JOIN users u ON u.id = r.user_id AND u.active`

// recalcRatings refreshes the aggregate of tourID from its reviews. A tour without reviews
// falls back to zero ratings and the default average.
const recalcRatings = `
	UPDATE tours SET
		ratings_quantity = s.n,
		ratings_average = CASE WHEN s.n > 0 THEN ROUND(s.avg, 1)::float8 ELSE $2 END
	FROM (SELECT COUNT(*) AS n, AVG(rating) AS avg FROM reviews WHERE tour_id = $1) s
	WHERE tours.id = $1
`

func scanReview(s scanner) (*model.Review, error) {
	var (
		r           model.Review
		name, photo sql.NullString
	)
	if err := s.Scan(&r.ID, &r.Review, &r.Rating, &r.CreatedAt, &r.TourID, &r.UserID, &name, &photo); err != nil {
		return nil, err
	}
	if name.Valid {
		r.User = &model.UserRef{ID: r.UserID, Name: name.String, Photo: photo.String}
	}
	return &r, nil
}

func (r *ReviewPostgres) List(ctx context.Context, tourID string, q *query.Query) ([]model.Review, error) {
	var (
		base []string
		args []any
	)
	if tourID != "" {
		base = append(base, "r.tour_id = $1")
		args = append(args, tourID)
	}
	where, args := q.Where(base, args)
	page, args := q.LimitOffset(args)
	rows, err := r.db.QueryContext(ctx, reviewSelect+where+q.OrderBy()+page, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Review, 0)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ReviewPostgres) FindByID(ctx context.Context, id string) (*model.Review, error) {
	rv, err := scanReview(r.db.QueryRowContext(ctx, reviewSelect+` WHERE r.id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return rv, nil
}

func (r *ReviewPostgres) Create(ctx context.Context, rv *model.Review) (*model.Review, error) {
	const q = `
		INSERT INTO reviews (review, rating, tour_id, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	out := *rv
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, q, rv.Review, rv.Rating, rv.TourID, rv.UserID).Scan(&out.ID, &out.CreatedAt); err != nil {
			return err
		}
		return recalc(ctx, tx, out.TourID)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ReviewPostgres) Update(ctx context.Context, rv *model.Review) (*model.Review, error) {
	const q = `
		UPDATE reviews SET review = $2, rating = $3
		WHERE id = $1
		RETURNING tour_id, user_id, created_at
	`
	out := *rv
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, q, rv.ID, rv.Review, rv.Rating).Scan(&out.TourID, &out.UserID, &out.CreatedAt); err != nil {
			return notFound(err)
		}
		return recalc(ctx, tx, out.TourID)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ReviewPostgres) Delete(ctx context.Context, id string) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var tourID string
		if err := tx.QueryRowContext(ctx, `DELETE FROM reviews WHERE id = $1 RETURNING tour_id`, id).Scan(&tourID); err != nil {
			return notFound(err)
		}
		return recalc(ctx, tx, tourID)
	})
}

func recalc(ctx context.Context, tx queryer, tourID string) error {
	_, err := tx.ExecContext(ctx, recalcRatings, tourID, model.DefaultRatingsAverage)
	return err
}
