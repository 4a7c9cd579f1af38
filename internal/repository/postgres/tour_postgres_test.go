package postgres

import (
	"context"
	"database/sql/driver"
	"net/url"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourapi/internal/geo"
	"tourapi/internal/model"
	"tourapi/internal/query"
	"tourapi/internal/repository"
)

var tourCols = []string{"id", "name", "slug", "duration", "max_group_size", "difficulty",
	"ratings_average", "ratings_quantity", "price", "price_discount", "summary", "description",
	"image_cover", "images", "start_dates", "premium_tour", "start_location", "locations", "created_at", "guides"}

func tourRow(rows *sqlmock.Rows, id, name string) *sqlmock.Rows {
	return rows.AddRow(id, name, model.Slugify(name), 7, 15, "medium",
		4.8, 9, 497.0, nil, "Exploring the jaw-dropping US east coast", "Long text",
		"tour-2-cover.jpg", []byte(`["tour-2-1.jpg","tour-2-2.jpg"]`), []byte(`["2021-06-19T09:00:00Z"]`), false,
		[]byte(`{"type":"Point","coordinates":[-80.185942,25.774772],"description":"Miami, USA"}`),
		[]byte(`[{"type":"Point","coordinates":[-80.128473,25.781842],"day":1}]`),
		time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		[]byte(`[{"id":"g1","name":"Lourdes Browning","email":"loulou@example.io","photo":"user-2.jpg","role":"lead-guide"}]`))
}

func newTourRepo(t *testing.T) (*TourPostgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTourPostgres(db), mock
}

func TestTourPostgres_List(t *testing.T) {
	repo, mock := newTourRepo(t)
	q, err := query.Parse(repository.TourSchema, url.Values{"price[lt]": {"1000"}, "sort": {"price"}, "limit": {"3"}, "page": {"2"}})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT (.+) FROM tours t WHERE NOT t.premium_tour AND t.price < \$1 ORDER BY t.price ASC, t.id ASC LIMIT \$2 OFFSET \$3`).
		WithArgs(1000.0, 3, 3).
		WillReturnRows(tourRow(sqlmock.NewRows(tourCols), "t1", "The Sea Explorer"))

	tours, err := repo.List(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, tours, 1)

	got := tours[0]
	assert.Equal(t, "the-sea-explorer", got.Slug)
	assert.Nil(t, got.PriceDiscount)
	assert.Equal(t, []string{"tour-2-1.jpg", "tour-2-2.jpg"}, got.Images)
	assert.Equal(t, -80.185942, got.StartLocation.Lng())
	require.Len(t, got.Guides, 1)
	assert.Equal(t, model.RoleLeadGuide, got.Guides[0].Role)
	assert.Equal(t, []string{"g1"}, got.GuideIDs)
	assert.Equal(t, 1, got.Locations[0].Day)
	assert.Equal(t, time.Date(2021, 6, 19, 9, 0, 0, 0, time.UTC), got.StartDates[0].UTC())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTourPostgres_FindByID(t *testing.T) {
	repo, mock := newTourRepo(t)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(`FROM tours t WHERE t.id = \$1 AND NOT t.premium_tour`).
			WithArgs("t1").
			WillReturnRows(tourRow(sqlmock.NewRows(tourCols), "t1", "The Sea Explorer"))

		tour, err := repo.FindByID(context.Background(), "t1")
		require.NoError(t, err)
		assert.Equal(t, "t1", tour.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`FROM tours t WHERE t.id = \$1`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(tourCols))

		tour, err := repo.FindByID(context.Background(), "missing")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.True(t, IsNoRowsError(err))
		assert.Nil(t, tour)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTourPostgres_Create(t *testing.T) {
	repo, mock := newTourRepo(t)
	tour := &model.Tour{
		Name:          "The Sea Explorer",
		Duration:      7,
		MaxGroupSize:  15,
		Difficulty:    model.DifficultyMedium,
		Price:         497,
		Summary:       "Exploring",
		ImageCover:    "tour-2-cover.jpg",
		StartLocation: model.NewPoint(-80.18, 25.77),
		GuideIDs:      []string{"g1", "g2"},
	}
	tour.Normalize()
	created := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO tours").
		WithArgs("The Sea Explorer", "the-sea-explorer", 7, 15, "medium", 0.0, 0, 497.0,
			sqlmock.AnyArg(), "Exploring", "", "tour-2-cover.jpg", "[]", "[]", false,
			sqlmock.AnyArg(), -80.18, 25.77, "[]").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("t1", created))
	mock.ExpectExec("DELETE FROM tour_guides WHERE tour_id").WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO tour_guides").WithArgs("t1", "g1", 0).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO tour_guides").WithArgs("t1", "g2", 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT COALESCE").WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"guides"}).AddRow([]byte(`[{"id":"g1","name":"A"},{"id":"g2","name":"B"}]`)))
	mock.ExpectCommit()

	out, err := repo.Create(context.Background(), tour)
	require.NoError(t, err)
	assert.Equal(t, "t1", out.ID)
	assert.Equal(t, created, out.CreatedAt)
	assert.Len(t, out.Guides, 2)
	assert.Empty(t, tour.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func updatedTour() *model.Tour {
	tour := &model.Tour{
		ID:              "t1",
		Name:            "The Sea Explorer",
		Duration:        7,
		MaxGroupSize:    15,
		Difficulty:      model.DifficultyMedium,
		RatingsAverage:  4.2,
		RatingsQuantity: 3,
		Price:           497,
		Summary:         "Exploring",
		ImageCover:      "tour-2-cover.jpg",
		StartLocation:   model.NewPoint(-80.18, 25.77),
		GuideIDs:        []string{"g1"},
	}
	tour.Normalize()
	return tour
}

func TestTourPostgres_UpdateKeepsReviewAggregates(t *testing.T) {
	repo, mock := newTourRepo(t)
	created := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE tours SET (.+) ratings_average = COALESCE\(\$7, ratings_average\), price = \$8`).
		WithArgs("t1", "The Sea Explorer", "the-sea-explorer", 7, 15, "medium", nil, 497.0,
			sqlmock.AnyArg(), "Exploring", "", "tour-2-cover.jpg", "[]", "[]", false,
			sqlmock.AnyArg(), -80.18, 25.77, "[]").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "ratings_average", "ratings_quantity"}).AddRow(created, 4.7, 4))
	mock.ExpectQuery("SELECT COALESCE").WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"guides"}).AddRow([]byte(`[{"id":"g1","name":"A"}]`)))
	mock.ExpectCommit()

	out, err := repo.Update(context.Background(), updatedTour(), repository.TourUpdateOptions{})
	require.NoError(t, err)
	assert.Equal(t, 4.7, out.RatingsAverage)
	assert.Equal(t, 4, out.RatingsQuantity)
	assert.Equal(t, created, out.CreatedAt)
	assert.Len(t, out.Guides, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTourPostgres_UpdateWithAverageAndGuides(t *testing.T) {
	repo, mock := newTourRepo(t)
	created := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE tours SET").
		WithArgs("t1", "The Sea Explorer", "the-sea-explorer", 7, 15, "medium", 4.2, 497.0,
			sqlmock.AnyArg(), "Exploring", "", "tour-2-cover.jpg", "[]", "[]", false,
			sqlmock.AnyArg(), -80.18, 25.77, "[]").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "ratings_average", "ratings_quantity"}).AddRow(created, 4.2, 4))
	mock.ExpectExec("DELETE FROM tour_guides WHERE tour_id").WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO tour_guides").WithArgs("t1", "g1", 0).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT COALESCE").WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"guides"}).AddRow([]byte(`[{"id":"g1","name":"A"}]`)))
	mock.ExpectCommit()

	out, err := repo.Update(context.Background(), updatedTour(), repository.TourUpdateOptions{RatingsAverage: true, Guides: true})
	require.NoError(t, err)
	assert.Equal(t, 4.2, out.RatingsAverage)
	assert.Equal(t, 4, out.RatingsQuantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTourPostgres_UpdateMissing(t *testing.T) {
	repo, mock := newTourRepo(t)
	tour := &model.Tour{ID: "missing", Name: "The Sea Explorer"}

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE tours SET").WillReturnRows(sqlmock.NewRows([]string{"created_at", "ratings_average", "ratings_quantity"}))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), tour, repository.TourUpdateOptions{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTourPostgres_Delete(t *testing.T) {
	repo, mock := newTourRepo(t)

	mock.ExpectExec("DELETE FROM tours WHERE id = \\$1").WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(context.Background(), "t1"))

	mock.ExpectExec("DELETE FROM tours WHERE id = \\$1").WithArgs("t2").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "t2"), repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTourPostgres_Stats(t *testing.T) {
	repo, mock := newTourRepo(t)

	mock.ExpectQuery(`GROUP BY upper\(difficulty\)\s+ORDER BY avg_price ASC`).
		WithArgs(4.5).
		WillReturnRows(sqlmock.NewRows([]string{"difficulty", "num_tours", "num_ratings", "avg_rating", "avg_price", "min_price", "max_price"}).
			AddRow("EASY", 4, 23, 4.7, 1272.0, 397.0, 1997.0).
			AddRow("DIFFICULT", 2, 14, 4.6, 1997.0, 997.0, 2997.0))

	stats, err := repo.Stats(context.Background(), 4.5)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, model.TourStat{Difficulty: "EASY", NumTours: 4, NumRatings: 23, AvgRating: 4.7, AvgPrice: 1272, MinPrice: 397, MaxPrice: 1997}, stats[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTourPostgres_MonthlyPlan(t *testing.T) {
	repo, mock := newTourRepo(t)
	from := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`jsonb_array_elements_text\(t.start_dates\)`).
		WithArgs(from, from.AddDate(1, 0, 0)).
		WillReturnRows(sqlmock.NewRows([]string{"month", "num_tour_starts", "tours"}).
			AddRow(7, 3, []byte(`["The Sea Explorer","The Sports Lover","The Wine Taster"]`)))

	plan, err := repo.MonthlyPlan(context.Background(), 2021)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, 7, plan[0].Month)
	assert.Equal(t, 3, plan[0].NumTourStarts)
	assert.Len(t, plan[0].Tours, 3)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTourPostgres_Within(t *testing.T) {
	repo, mock := newTourRepo(t)
	radians := geo.RadiusRadians(400, geo.Miles)

	mock.ExpectQuery(`WHERE NOT t.premium_tour AND t.start_lat IS NOT NULL AND \(2 \* asin\(LEAST\(1, sqrt`).
		WithArgs(34.1, -118.1, radians).
		WillReturnRows(tourRow(sqlmock.NewRows(tourCols), "t1", "The Sea Explorer"))

	tours, err := repo.Within(context.Background(), 34.1, -118.1, radians)
	require.NoError(t, err)
	assert.Len(t, tours, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type approx float64

func (a approx) Match(v driver.Value) bool {
	f, ok := v.(float64)
	return ok && f > float64(a)-1e-9 && f < float64(a)+1e-9
}

func TestTourPostgres_Distances(t *testing.T) {
	repo, mock := newTourRepo(t)

	mock.ExpectQuery(`AS distance\s+FROM tours t`).
		WithArgs(34.1, -118.1, approx(6378.1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "distance"}).
			AddRow("t1", "The Sea Explorer", 3735.1).
			AddRow("t2", "The Park Camper", 4410.2))

	out, err := repo.Distances(context.Background(), 34.1, -118.1, geo.DistanceMultiplier(geo.Kilometers))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, model.TourDistance{ID: "t1", Name: "The Sea Explorer", Distance: 3735.1}, out[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}
