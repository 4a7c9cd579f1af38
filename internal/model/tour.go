package model

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// Difficulty of a tour.
type Difficulty string

const (
	DifficultyEasy      Difficulty = "easy"
	DifficultyMedium    Difficulty = "medium"
	DifficultyDifficult Difficulty = "difficult"
)

// DefaultRatingsAverage applies to tours without reviews.
const DefaultRatingsAverage = 4.5

// Point is a GeoJSON point. Coordinates are [longitude, latitude].
type Point struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates" validate:"omitempty,len=2"`
	Address     string    `json:"address,omitempty"`
	Description string    `json:"description,omitempty"`
}

// NewPoint builds a GeoJSON point from longitude and latitude.
func NewPoint(lng, lat float64) Point {
	return Point{Type: "Point", Coordinates: []float64{lng, lat}}
}

// Lng returns the longitude or 0 when unset.
func (p Point) Lng() float64 {
	if len(p.Coordinates) < 1 {
		return 0
	}
	return p.Coordinates[0]
}

// Lat returns the latitude or 0 when unset.
func (p Point) Lat() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[1]
}

// Location is a stop on the tour itinerary.
type Location struct {
	Point
	Day int `json:"day"`
}

// Tour is the bookable product.
type Tour struct {
	ID              string      `json:"id"`
	Name            string      `json:"name" validate:"required,min=10,max=40"`
	Slug            string      `json:"slug"`
	Duration        int         `json:"duration" validate:"required,gt=0"`
	MaxGroupSize    int         `json:"maxGroupSize" validate:"required,gt=0"`
	Difficulty      Difficulty  `json:"difficulty" validate:"required,oneof=easy medium difficult"`
	RatingsAverage  float64     `json:"ratingsAverage" validate:"gte=1,lte=5"`
	RatingsQuantity int         `json:"ratingsQuantity"`
	Price           float64     `json:"price" validate:"required,gt=0"`
	PriceDiscount   *float64    `json:"priceDiscount,omitempty" validate:"omitempty,gte=0,ltfield=Price"`
	Summary         string      `json:"summary" validate:"required"`
	Description     string      `json:"description,omitempty"`
	ImageCover      string      `json:"imageCover" validate:"required"`
	Images          []string    `json:"images"`
	CreatedAt       time.Time   `json:"-"`
	StartDates      []time.Time `json:"startDates"`
	PremiumTour     bool        `json:"premiumTour"`
	StartLocation   Point       `json:"startLocation"`
	Locations       []Location  `json:"locations" validate:"dive"`
	GuideIDs        []string    `json:"-" validate:"dive,uuid"`
	Guides          []UserRef   `json:"guides"`

	// Reviews is nil unless populated. A populated tour always carries the key.
	Reviews []Review `json:"-"`
}

// DurationWeeks is derived, never stored.
func (t Tour) DurationWeeks() float64 {
	return float64(t.Duration) / 7
}

// MarshalJSON adds the derived durationWeeks field and the populated reviews.
func (t Tour) MarshalJSON() ([]byte, error) {
	type tourAlias Tour
	var reviews *[]Review
	if t.Reviews != nil {
		reviews = &t.Reviews
	}
	return json.Marshal(struct {
		tourAlias
		DurationWeeks float64   `json:"durationWeeks"`
		Reviews       *[]Review `json:"reviews,omitempty"`
	}{tourAlias(t), t.DurationWeeks(), reviews})
}

// Normalize trims text fields, refreshes the slug and applies defaults before a write.
func (t *Tour) Normalize() {
	t.Name = strings.TrimSpace(t.Name)
	t.Summary = strings.TrimSpace(t.Summary)
	t.Description = strings.TrimSpace(t.Description)
	t.Slug = Slugify(t.Name)
	t.RatingsAverage = RoundRating(t.RatingsAverage)
	if t.StartLocation.Type == "" && len(t.StartLocation.Coordinates) > 0 {
		t.StartLocation.Type = "Point"
	}
	for i := range t.Locations {
		if t.Locations[i].Type == "" {
			t.Locations[i].Type = "Point"
		}
	}
	if t.Images == nil {
		t.Images = []string{}
	}
	if t.StartDates == nil {
		t.StartDates = []time.Time{}
	}
	if t.Locations == nil {
		t.Locations = []Location{}
	}
	if t.Guides == nil {
		t.Guides = []UserRef{}
	}
}

// TourRef is the populated shape of a tour embedded in bookings.
type TourRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// Slugify converts a tour name into its URL form.
func Slugify(name string) string {
	return slug.Make(name)
}

// RoundRating keeps one decimal place.
func RoundRating(v float64) float64 {
	return math.Round(v*10) / 10
}

// TourStat is one difficulty bucket of the tour statistics report.
type TourStat struct {
	Difficulty string  `json:"difficulty"`
	NumTours   int     `json:"numTours"`
	NumRatings int     `json:"numRatings"`
	AvgRating  float64 `json:"avgRating"`
	AvgPrice   float64 `json:"avgPrice"`
	MinPrice   float64 `json:"minPrice"`
	MaxPrice   float64 `json:"maxPrice"`
}

// MonthlyPlan counts tour starts in one calendar month.
type MonthlyPlan struct {
	Month         int      `json:"month"`
	NumTourStarts int      `json:"numTourStarts"`
	Tours         []string `json:"tours"`
}

// TourDistance is the distance from a reference point to a tour's start.
type TourDistance struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
}
