package views

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourapi/internal/model"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, c.Render(context.Background(), &b))
	return b.String()
}

func sampleTour() model.Tour {
	return model.Tour{
		ID:              "7c0b7b4e-1a44-4c51-9f3b-3f1f5d6e7a01",
		Name:            "The Forest Hiker",
		Slug:            "the-forest-hiker",
		Duration:        5,
		MaxGroupSize:    25,
		Difficulty:      model.DifficultyEasy,
		RatingsAverage:  4.7,
		RatingsQuantity: 37,
		Price:           397,
		Summary:         "Breathtaking hike through the Canadian Banff National Park",
		Description:     "First line\nSecond <b>line</b>",
		ImageCover:      "tour-1-cover.jpg",
		Images:          []string{"tour-1-1.jpg"},
		StartDates:      []time.Time{time.Date(2021, 4, 25, 9, 0, 0, 0, time.UTC)},
		StartLocation:   model.Point{Description: "Banff, CAN"},
		Locations:       []model.Location{{Point: model.NewPoint(-116.2, 51.4), Day: 1}},
		Guides:          []model.UserRef{{Name: "Leo Gillespie", Photo: "user-14.jpg", Role: model.RoleLeadGuide}},
		Reviews:         []model.Review{{Review: "Loved it", Rating: 4, User: &model.UserRef{Name: "Jane", Photo: "user-2.jpg"}}},
	}
}

func TestLayoutHeader(t *testing.T) {
	out := render(t, Layout(Page{Title: "All Tours"}, Login()))
	assert.Contains(t, out, "<title>Natours | All Tours</title>")
	assert.Contains(t, out, `href="/login">Log in</a>`)
	assert.NotContains(t, out, "data-alert")

	user := &model.User{Name: "Jonas Schmedtmann", Photo: "user-1.jpg"}
	out = render(t, Layout(Page{Title: "My Tours", User: user, Alert: AlertMessage("booking")}, Overview(nil)))
	assert.Contains(t, out, "<span>Jonas</span>")
	assert.Contains(t, out, `src="/img/users/user-1.jpg"`)
	assert.Contains(t, out, `data-alert="Your booking was successful!`)
}

func TestOverviewCard(t *testing.T) {
	out := render(t, Overview([]model.Tour{sampleTour()}))
	assert.Contains(t, out, "easy 5-day tour")
	assert.Contains(t, out, "April 2021")
	assert.Contains(t, out, "1 stops")
	assert.Contains(t, out, "rating (37)")
	assert.Contains(t, out, `href="/tour/the-forest-hiker"`)
}

func TestTourDetailEscapesAndBooks(t *testing.T) {
	tour := sampleTour()

	out := render(t, TourDetail(&tour, nil))
	assert.Contains(t, out, "Second &lt;b&gt;line&lt;/b&gt;")
	assert.Contains(t, out, "Lead guide")
	assert.Contains(t, out, "Loved it")
	assert.Equal(t, 4, strings.Count(out, "reviews__star--active"))
	assert.Contains(t, out, "Log in to book tour")

	out = render(t, TourDetail(&tour, &model.User{Name: "Jane"}))
	assert.Contains(t, out, `data-tour-id="7c0b7b4e-1a44-4c51-9f3b-3f1f5d6e7a01"`)
}

func TestAccountAdminNav(t *testing.T) {
	out := render(t, Account(&model.User{Name: "A \"quoted\" name", Email: "a@example.com", Photo: "default.jpg", Role: model.RoleAdmin}))
	assert.Contains(t, out, "Manage bookings")
	assert.Contains(t, out, `value="A &#34;quoted&#34; name"`)

	out = render(t, Account(&model.User{Name: "B", Role: model.RoleUser}))
	assert.NotContains(t, out, "Manage bookings")
}

func TestErrorPage(t *testing.T) {
	out := render(t, ErrorPage("There is no tour with that name."))
	assert.Contains(t, out, "There is no tour with that name.")
}

func TestEmail(t *testing.T) {
	out := render(t, Email("Jane", []string{"Welcome!"}, "Upload photo", "https://example.com/me?x=1&y=2"))
	assert.Contains(t, out, "Hi Jane,")
	assert.Contains(t, out, `href="https://example.com/me?x=1&amp;y=2"`)
}
