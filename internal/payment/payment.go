// Package payment creates hosted checkout sessions and verifies the provider's webhook events.
package payment

import "context"

// CheckoutRequest describes a single-tour purchase.
type CheckoutRequest struct {
	TourID        string
	TourName      string
	Summary       string
	ImageURL      string
	Price         float64
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// Session is a hosted checkout page the client is redirected to.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutCompleted is the paid outcome of a session.
type CheckoutCompleted struct {
	SessionID     string
	TourID        string
	CustomerEmail string
	Price         float64
}

// Event is a verified webhook event. Checkout is set for completed checkouts only.
type Event struct {
	ID       string
	Type     string
	Checkout *CheckoutCompleted
}

// EventCheckoutCompleted is sent once a customer paid.
const EventCheckoutCompleted = "checkout.session.completed"

// Gateway is the payment provider.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error)
	// ParseWebhook verifies signature over payload and decodes the event.
	ParseWebhook(payload []byte, signature string) (*Event, error)
}
