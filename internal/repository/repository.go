package repository

import (
	"context"
	"errors"
	"time"

	"tourapi/internal/model"
	"tourapi/internal/query"
)

// ErrNotFound is returned when no visible row matches.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a write repeats one already stored.
var ErrDuplicate = errors.New("record already exists")

// TourUpdateOptions select the optional parts of a tour update.
type TourUpdateOptions struct {
	// RatingsAverage overrides the review aggregate with t.RatingsAverage.
	RatingsAverage bool
	// Guides replaces the guide links with t.GuideIDs.
	Guides bool
}

// TourRepository persists tours and their guide links. Premium tours are invisible to every read.
type TourRepository interface {
	List(ctx context.Context, q *query.Query) ([]model.Tour, error)
	// FindByID returns the tour with its guides populated.
	FindByID(ctx context.Context, id string) (*model.Tour, error)
	FindBySlug(ctx context.Context, slug string) (*model.Tour, error)
	Create(ctx context.Context, t *model.Tour) (*model.Tour, error)
	// Update writes the mutable columns. The returned ratings are the stored ones.
	Update(ctx context.Context, t *model.Tour, opts TourUpdateOptions) (*model.Tour, error)
	// Delete removes the tour. Reviews, bookings and guide links cascade.
	Delete(ctx context.Context, id string) error

	Stats(ctx context.Context, minRating float64) ([]model.TourStat, error)
	MonthlyPlan(ctx context.Context, year int) ([]model.MonthlyPlan, error)
	// Within returns tours whose start lies within radians of the point.
	Within(ctx context.Context, lat, lng, radians float64) ([]model.Tour, error)
	// Distances returns every tour ordered by distance; meters are multiplied by multiplier.
	Distances(ctx context.Context, lat, lng, multiplier float64) ([]model.TourDistance, error)
}

// UserRepository persists accounts. Inactive users are invisible to every read.
type UserRepository interface {
	List(ctx context.Context, q *query.Query) ([]model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FindByResetToken matches a hashed reset token that expires after now.
	FindByResetToken(ctx context.Context, hashed string, now time.Time) (*model.User, error)
	Create(ctx context.Context, u *model.User) (*model.User, error)
	// Update writes name, email, photo and role.
	Update(ctx context.Context, u *model.User) (*model.User, error)
	// UpdatePassword stores a new hash and clears any reset token.
	UpdatePassword(ctx context.Context, id, hash string, changedAt time.Time) error
	// SetResetToken stores a hashed reset token. An empty hash clears it.
	SetResetToken(ctx context.Context, id, hashed string, expires *time.Time) error
	Deactivate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// ReviewRepository persists reviews. Every write recomputes the tour's rating aggregate in the same transaction.
type ReviewRepository interface {
	// List returns reviews, restricted to tourID when it is not empty.
	List(ctx context.Context, tourID string, q *query.Query) ([]model.Review, error)
	FindByID(ctx context.Context, id string) (*model.Review, error)
	Create(ctx context.Context, r *model.Review) (*model.Review, error)
	// Update writes the text and rating.
	Update(ctx context.Context, r *model.Review) (*model.Review, error)
	Delete(ctx context.Context, id string) error
}

// BookingRepository persists bookings.
type BookingRepository interface {
	List(ctx context.Context, q *query.Query) ([]model.Booking, error)
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	Create(ctx context.Context, b *model.Booking) (*model.Booking, error)
	Update(ctx context.Context, b *model.Booking) (*model.Booking, error)
	Delete(ctx context.Context, id string) error
	// ToursForUser returns the tours userID has booked.
	ToursForUser(ctx context.Context, userID string) ([]model.Tour, error)
}
