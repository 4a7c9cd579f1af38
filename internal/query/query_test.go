package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourapi/internal/apperror"
)

var testSchema = Schema{
	Fields: map[string]Field{
		"name":           {Column: "t.name", Kind: String, Filter: true, Sort: true},
		"price":          {Column: "t.price", Kind: Number, Filter: true, Sort: true},
		"duration":       {Column: "t.duration", Kind: Integer, Filter: true, Sort: true},
		"difficulty":     {Column: "t.difficulty", Kind: String, Filter: true, Sort: true},
		"ratingsAverage": {Column: "t.ratings_average", Kind: Number, Filter: true, Sort: true},
		"premiumTour":    {Column: "t.premium_tour", Kind: Bool, Filter: true},
		"summary":        {Column: "t.summary", Kind: String},
	},
	DefaultSort: "-ratingsAverage",
	TieBreaker:  "t.id",
	MultiValue:  map[string]bool{"duration": true, "difficulty": true},
}

func parse(t *testing.T, raw string) *Query {
	t.Helper()
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	q, err := Parse(testSchema, values)
	require.NoError(t, err)
	return q
}

func TestParseFilterOperators(t *testing.T) {
	q := parse(t, "price[gte]=500&duration[lt]=10&difficulty=easy")

	where, args := q.Where(nil, nil)
	assert.Equal(t, " WHERE t.difficulty = $1 AND t.duration < $2 AND t.price >= $3", where)
	assert.Equal(t, []any{"easy", 10, float64(500)}, args)
}

func TestWhereContinuesAfterBaseArgs(t *testing.T) {
	q := parse(t, "price[lte]=997")

	where, args := q.Where([]string{"NOT t.premium_tour", "t.id <> $1"}, []any{"x"})
	assert.Equal(t, " WHERE NOT t.premium_tour AND t.id <> $1 AND t.price <= $2", where)
	assert.Equal(t, []any{"x", float64(997)}, args)
}

func TestWhereEmpty(t *testing.T) {
	q := parse(t, "")
	where, args := q.Where(nil, nil)
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestParameterPollution(t *testing.T) {
	t.Run("whitelisted field keeps every value", func(t *testing.T) {
		q := parse(t, "duration=5&duration=9")
		where, args := q.Where(nil, nil)
		assert.Equal(t, " WHERE t.duration IN ($1, $2)", where)
		assert.Equal(t, []any{5, 9}, args)
	})

	t.Run("other field keeps the last value", func(t *testing.T) {
		q := parse(t, "name=a&name=b")
		where, args := q.Where(nil, nil)
		assert.Equal(t, " WHERE t.name = $1", where)
		assert.Equal(t, []any{"b"}, args)
	})

	t.Run("repeated sort keeps the last value", func(t *testing.T) {
		q := parse(t, "sort=price&sort=-duration")
		assert.Equal(t, " ORDER BY t.duration DESC, t.id ASC", q.OrderBy())
	})
}

func TestParseRejectsUnknownInput(t *testing.T) {
	tests := []string{
		"secret=1",
		"summary=x",
		"price[ne]=4",
		"price=cheap",
		"duration=1.5",
		"sort=summary",
		"sort=nope",
		"premiumTour=maybe",
		"price[gte=3",
	}
	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			values, err := url.ParseQuery(raw)
			require.NoError(t, err)
			_, err = Parse(testSchema, values)
			require.Error(t, err)
			appErr, ok := apperror.As(err)
			require.True(t, ok)
			assert.Equal(t, 400, appErr.Status)
		})
	}
}

func TestSort(t *testing.T) {
	assert.Equal(t, " ORDER BY t.ratings_average DESC, t.id ASC", parse(t, "").OrderBy())
	assert.Equal(t, " ORDER BY t.price ASC, t.ratings_average DESC, t.id ASC", parse(t, "sort=price,-ratingsAverage").OrderBy())
}

func TestPagination(t *testing.T) {
	tests := []struct {
		raw        string
		page       int
		limit      int
		wantOffset int
	}{
		{raw: "", page: 1, limit: 100, wantOffset: 0},
		{raw: "page=3&limit=10", page: 3, limit: 10, wantOffset: 20},
		{raw: "page=0&limit=0", page: 1, limit: 100, wantOffset: 0},
		{raw: "page=-2&limit=-5", page: 1, limit: 100, wantOffset: 0},
		{raw: "page=abc&limit=xyz", page: 1, limit: 100, wantOffset: 0},
		{raw: "limit=50000", page: 1, limit: MaxLimit, wantOffset: 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			q := parse(t, tt.raw)
			assert.Equal(t, tt.page, q.Page)
			assert.Equal(t, tt.limit, q.Limit)
			assert.Equal(t, tt.wantOffset, q.Offset())
		})
	}
}

func TestLimitOffset(t *testing.T) {
	q := parse(t, "page=2&limit=5")
	clause, args := q.LimitOffset([]any{"a"})
	assert.Equal(t, " LIMIT $2 OFFSET $3", clause)
	assert.Equal(t, []any{"a", 5, 5}, args)
}

func TestFieldsAreNotFilters(t *testing.T) {
	q := parse(t, "fields=name,price&page=2")
	assert.Empty(t, q.Conditions)
	assert.Equal(t, []string{"name", "price"}, q.Include)
}

type row struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Notes string  `json:"notes"`
}

func TestProjectInclude(t *testing.T) {
	q := parse(t, "fields=name")
	out, err := q.Project([]row{{ID: "1", Name: "a", Price: 3, Notes: "n"}})
	require.NoError(t, err)

	items := out.([]any)
	require.Len(t, items, 1)
	assert.Equal(t, map[string]any{"id": "1", "name": "a"}, items[0])
}

func TestProjectExclude(t *testing.T) {
	q := parse(t, "fields=-notes,-price")
	out, err := q.Project(row{ID: "1", Name: "a", Price: 3, Notes: "n"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "1", "name": "a"}, out)
}

func TestProjectNoop(t *testing.T) {
	q := Default(testSchema)
	in := []row{{ID: "1"}}
	out, err := q.Project(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestMustParsePanicsOnBadInput(t *testing.T) {
	assert.Panics(t, func() { MustParse(testSchema, "sort=nope") })
}
