package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tourapi/internal/database"
	"tourapi/internal/geo"
	"tourapi/internal/model"
	"tourapi/internal/query"
	"tourapi/internal/repository"
)

// TourPostgres implements repository.TourRepository.
type TourPostgres struct {
	db *sql.DB
}

func NewTourPostgres(db *sql.DB) *TourPostgres {
	return &TourPostgres{db: db}
}

var _ repository.TourRepository = (*TourPostgres)(nil)

const guidesSelect = `COALESCE((
		SELECT json_agg(json_build_object('id', u.id, 'name', u.name, 'email', u.email, 'photo', u.photo, 'role', u.role) ORDER BY g.position)
		FROM tour_guides g JOIN users u ON u.id = g.user_id
		WHERE g.tour_id = t.id AND u.active
	), '[]')`

const tourColumns = `t.id, t.name, t.slug, t.duration, t.max_group_size, t.difficulty,
	t.ratings_average, t.ratings_quantity, t.price, t.price_discount, t.summary, t.description,
	t.image_cover, t.images, t.start_dates, t.premium_tour, t.start_location, t.locations, t.created_at,
	` + guidesSelect

const tourSelect = `SELECT ` + tourColumns + ` FROM tours t`

func scanTour(s scanner) (*model.Tour, error) {
	var (
		t                                          model.Tour
		discount                                   sql.NullFloat64
		images, dates, start, locations, guidesRaw []byte
	)
	if err := s.Scan(
		&t.ID,
		&t.Name,
		&t.Slug,
		&t.Duration,
		&t.MaxGroupSize,
		&t.Difficulty,
		&t.RatingsAverage,
		&t.RatingsQuantity,
		&t.Price,
		&discount,
		&t.Summary,
		&t.Description,
		&t.ImageCover,
		&images,
		&dates,
		&t.PremiumTour,
		&start,
		&locations,
		&t.CreatedAt,
		&guidesRaw,
	); err != nil {
		return nil, err
	}
	t.PriceDiscount = floatPtr(discount)
	for _, c := range []struct {
		raw []byte
		v   any
	}{{images, &t.Images}, {dates, &t.StartDates}, {start, &t.StartLocation}, {locations, &t.Locations}, {guidesRaw, &t.Guides}} {
		if err := jsonScan(c.raw, c.v); err != nil {
			return nil, err
		}
	}
	if t.Images == nil {
		t.Images = []string{}
	}
	if t.StartDates == nil {
		t.StartDates = []time.Time{}
	}
	if t.Locations == nil {
		t.Locations = []model.Location{}
	}
	if t.Guides == nil {
		t.Guides = []model.UserRef{}
	}
	t.GuideIDs = make([]string, 0, len(t.Guides))
	for _, g := range t.Guides {
		t.GuideIDs = append(t.GuideIDs, g.ID)
	}
	return &t, nil
}

func scanTours(rows *sql.Rows) ([]model.Tour, error) {
	defer rows.Close()
	items := make([]model.Tour, 0)
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// List applies the query's filter, sort and page to the visible tours.
func (r *TourPostgres) List(ctx context.Context, q *query.Query) ([]model.Tour, error) {
	where, args := q.Where([]string{"NOT t.premium_tour"}, nil)
	page, args := q.LimitOffset(args)
	rows, err := r.db.QueryContext(ctx, tourSelect+where+q.OrderBy()+page, args...)
	if err != nil {
		return nil, err
	}
	return scanTours(rows)
}

func (r *TourPostgres) FindByID(ctx context.Context, id string) (*model.Tour, error) {
	t, err := scanTour(r.db.QueryRowContext(ctx, tourSelect+` WHERE t.id = $1 AND NOT t.premium_tour`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (r *TourPostgres) FindBySlug(ctx context.Context, slug string) (*model.Tour, error) {
	t, err := scanTour(r.db.QueryRowContext(ctx, tourSelect+` WHERE t.slug = $1 AND NOT t.premium_tour ORDER BY t.created_at LIMIT 1`, slug))
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

// tourArgs are the writable columns in insert order.
func tourArgs(t *model.Tour) ([]any, error) {
	images, err := jsonArg(t.Images)
	if err != nil {
		return nil, err
	}
	dates, err := jsonArg(t.StartDates)
	if err != nil {
		return nil, err
	}
	start, err := jsonArg(t.StartLocation)
	if err != nil {
		return nil, err
	}
	locations, err := jsonArg(t.Locations)
	if err != nil {
		return nil, err
	}
	var lng, lat sql.NullFloat64
	if len(t.StartLocation.Coordinates) == 2 {
		lng = sql.NullFloat64{Float64: t.StartLocation.Lng(), Valid: true}
		lat = sql.NullFloat64{Float64: t.StartLocation.Lat(), Valid: true}
	}
	return []any{
		t.Name,
		t.Slug,
		t.Duration,
		t.MaxGroupSize,
		string(t.Difficulty),
		t.RatingsAverage,
		t.RatingsQuantity,
		t.Price,
		nullFloat(t.PriceDiscount),
		t.Summary,
		t.Description,
		t.ImageCover,
		images,
		dates,
		t.PremiumTour,
		start,
		lng,
		lat,
		locations,
	}, nil
}

// Create inserts the tour and its guide links in one transaction.
func (r *TourPostgres) Create(ctx context.Context, t *model.Tour) (*model.Tour, error) {
	const q = `
		INSERT INTO tours (name, slug, duration, max_group_size, difficulty, ratings_average, ratings_quantity,
			price, price_discount, summary, description, image_cover, images, start_dates, premium_tour,
			start_location, start_lng, start_lat, locations)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at
	`
	args, err := tourArgs(t)
	if err != nil {
		return nil, err
	}
	out := *t
	err = database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, q, args...).Scan(&out.ID, &out.CreatedAt); err != nil {
			return err
		}
		guides, err := replaceGuides(ctx, tx, out.ID, out.GuideIDs)
		if err != nil {
			return err
		}
		out.Guides = guides
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Update rewrites the tour row in one transaction. ratings_quantity is left to the review writes,
// ratings_average and the guide links only change when opts asks for them.
func (r *TourPostgres) Update(ctx context.Context, t *model.Tour, opts repository.TourUpdateOptions) (*model.Tour, error) {
	const q = `
		UPDATE tours SET name = $2, slug = $3, duration = $4, max_group_size = $5, difficulty = $6,
			ratings_average = COALESCE($7, ratings_average), price = $8, price_discount = $9, summary = $10,
			description = $11, image_cover = $12, images = $13, start_dates = $14, premium_tour = $15,
			start_location = $16, start_lng = $17, start_lat = $18, locations = $19
		WHERE id = $1
		RETURNING created_at, ratings_average, ratings_quantity
	`
	args, err := tourArgs(t)
	if err != nil {
		return nil, err
	}
	var average sql.NullFloat64
	if opts.RatingsAverage {
		average = sql.NullFloat64{Float64: t.RatingsAverage, Valid: true}
	}
	// tourArgs holds ratings_average at 5 and ratings_quantity at 6.
	params := append([]any{t.ID}, args[:5]...)
	params = append(params, average)
	params = append(params, args[7:]...)

	out := *t
	err = database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, q, params...).Scan(&out.CreatedAt, &out.RatingsAverage, &out.RatingsQuantity); err != nil {
			return notFound(err)
		}
		load := func() ([]model.UserRef, error) { return loadGuides(ctx, tx, out.ID) }
		if opts.Guides {
			load = func() ([]model.UserRef, error) { return replaceGuides(ctx, tx, out.ID, out.GuideIDs) }
		}
		guides, err := load()
		if err != nil {
			return err
		}
		out.Guides = guides
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// replaceGuides rewrites the guide links of tourID and returns the populated guides.
func replaceGuides(ctx context.Context, tx queryer, tourID string, guideIDs []string) ([]model.UserRef, error) {
	if _, err := tx.ExecContext(ctx, `DELETE FROM tour_guides WHERE tour_id = $1`, tourID); err != nil {
		return nil, fmt.Errorf("clear guides: %w", err)
	}
	for i, id := range guideIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO tour_guides (tour_id, user_id, position) VALUES ($1, $2, $3)`, tourID, id, i); err != nil {
			return nil, fmt.Errorf("link guide %s: %w", id, err)
		}
	}
	return loadGuides(ctx, tx, tourID)
}

// loadGuides returns the active guides of tourID in position order.
func loadGuides(ctx context.Context, tx queryer, tourID string) ([]model.UserRef, error) {
	var raw []byte
	if err := tx.QueryRowContext(ctx, `SELECT `+guidesSelect+` FROM tours t WHERE t.id = $1`, tourID).Scan(&raw); err != nil {
		return nil, err
	}
	guides := make([]model.UserRef, 0)
	if err := jsonScan(raw, &guides); err != nil {
		return nil, err
	}
	return guides, nil
}

func (r *TourPostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tours WHERE id = $1 AND NOT premium_tour`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// Stats groups well-rated tours by difficulty.
func (r *TourPostgres) Stats(ctx context.Context, minRating float64) ([]model.TourStat, error) {
	const q = `
		SELECT upper(difficulty) AS difficulty,
			COUNT(*) AS num_tours,
			COALESCE(SUM(ratings_quantity), 0) AS num_ratings,
			AVG(ratings_average) AS avg_rating,
			AVG(price) AS avg_price,
			MIN(price) AS min_price,
			MAX(price) AS max_price
		FROM tours
		WHERE ratings_average >= $1 AND NOT premium_tour
		GROUP BY upper(difficulty)
		ORDER BY avg_price ASC
	`
	rows, err := r.db.QueryContext(ctx, q, minRating)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]model.TourStat, 0)
	for rows.Next() {
		var s model.TourStat
		if err := rows.Scan(&s.Difficulty, &s.NumTours, &s.NumRatings, &s.AvgRating, &s.AvgPrice, &s.MinPrice, &s.MaxPrice); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// MonthlyPlan counts tour starts per month of year, busiest month first.
func (r *TourPostgres) MonthlyPlan(ctx context.Context, year int) ([]model.MonthlyPlan, error) {
	const q = `
		SELECT EXTRACT(MONTH FROM (d.value::timestamptz AT TIME ZONE 'UTC'))::int AS month,
			COUNT(*) AS num_tour_starts,
			json_agg(t.name ORDER BY t.name) AS tours
		FROM tours t
		CROSS JOIN LATERAL jsonb_array_elements_text(t.start_dates) AS d(value)
		WHERE NOT t.premium_tour
			AND d.value::timestamptz >= $1
			AND d.value::timestamptz < $2
		GROUP BY month
		ORDER BY num_tour_starts DESC, month ASC
		LIMIT 12
	`
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	rows, err := r.db.QueryContext(ctx, q, from, from.AddDate(1, 0, 0))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plan := make([]model.MonthlyPlan, 0)
	for rows.Next() {
		var (
			p   model.MonthlyPlan
			raw []byte
		)
		if err := rows.Scan(&p.Month, &p.NumTourStarts, &raw); err != nil {
			return nil, err
		}
		if err := jsonScan(raw, &p.Tours); err != nil {
			return nil, err
		}
		plan = append(plan, p)
	}
	return plan, rows.Err()
}

// centralAngle is the haversine angle in radians between the start location and ($1 lat, $2 lng).
// The LEAST clamp keeps rounding on near-antipodal points inside the domain of asin.
const centralAngle = `(2 * asin(LEAST(1, sqrt(
		power(sin(radians(t.start_lat - $1) / 2), 2) +
		cos(radians($1)) * cos(radians(t.start_lat)) * power(sin(radians(t.start_lng - $2) / 2), 2)
	))))`

func (r *TourPostgres) Within(ctx context.Context, lat, lng, radians float64) ([]model.Tour, error) {
	q := tourSelect + ` WHERE NOT t.premium_tour AND t.start_lat IS NOT NULL AND ` + centralAngle + ` <= $3 ORDER BY t.id`
	rows, err := r.db.QueryContext(ctx, q, lat, lng, radians)
	if err != nil {
		return nil, err
	}
	return scanTours(rows)
}

func (r *TourPostgres) Distances(ctx context.Context, lat, lng, multiplier float64) ([]model.TourDistance, error) {
	q := `SELECT t.id, t.name, ` + centralAngle + ` * $3 AS distance
		FROM tours t
		WHERE NOT t.premium_tour AND t.start_lat IS NOT NULL
		ORDER BY distance ASC, t.id ASC`
	rows, err := r.db.QueryContext(ctx, q, lat, lng, geo.EarthRadiusMeters*multiplier)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.TourDistance, 0)
	for rows.Next() {
		var d model.TourDistance
		if err := rows.Scan(&d.ID, &d.Name, &d.Distance); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
