package model

import "time"

// Review is a user's rating of a tour. A user reviews a tour at most once.
type Review struct {
	ID        string    `json:"id"`
	Review    string    `json:"review" validate:"required,max=50"`
	Rating    int       `json:"rating" validate:"required,gte=1,lte=5"`
	CreatedAt time.Time `json:"createdAt"`
	TourID    string    `json:"tour" validate:"required,uuid"`
	UserID    string    `json:"-" validate:"required,uuid"`
	User      *UserRef  `json:"user,omitempty"`
}

// Booking records a paid reservation of a tour by a user.
type Booking struct {
	ID        string    `json:"id"`
	TourID    string    `json:"-" validate:"required,uuid"`
	UserID    string    `json:"-" validate:"required,uuid"`
	Tour      *TourRef  `json:"tour,omitempty"`
	User      *UserRef  `json:"user,omitempty"`
	Price     float64   `json:"price" validate:"required,gt=0"`
	CreatedAt time.Time `json:"createdAt"`
	Paid      bool      `json:"paid"`

	// CheckoutSessionID is the payment session that paid for the booking, if any.
	CheckoutSessionID string `json:"-"`
}
