package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tourapi/internal/apperror"
	"tourapi/internal/logging"
	"tourapi/internal/model"
	"tourapi/internal/payment"
	"tourapi/internal/query"
	"tourapi/internal/repository"
	"tourapi/internal/validation"
)

// BookingInput is an admin-created or edited booking.
type BookingInput struct {
	Tour  string  `json:"tour"`
	User  string  `json:"user"`
	Price float64 `json:"price"`
	Paid  *bool   `json:"paid"`
}

// BookingService sells tours and manages the resulting bookings.
type BookingService interface {
	// CheckoutSession opens a hosted payment page for tourID. baseURL is the public site root.
	CheckoutSession(ctx context.Context, u *model.User, tourID, baseURL string) (*payment.Session, error)
	// HandleWebhook records the booking of a completed checkout.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error

	List(ctx context.Context, q *query.Query) ([]model.Booking, error)
	Get(ctx context.Context, id string) (*model.Booking, error)
	Create(ctx context.Context, in BookingInput) (*model.Booking, error)
	Update(ctx context.Context, id string, in BookingInput) (*model.Booking, error)
	Delete(ctx context.Context, id string) error
	ToursForUser(ctx context.Context, userID string) ([]model.Tour, error)
}

type bookingService struct {
	bookings repository.BookingRepository
	tours    repository.TourRepository
	users    repository.UserRepository
	gateway  payment.Gateway
	validate *validation.Validator
	log      *logging.Logger
}

// NewBookingService constructs a BookingService.
func NewBookingService(
	bookings repository.BookingRepository,
	tours repository.TourRepository,
	users repository.UserRepository,
	gateway payment.Gateway,
	v *validation.Validator,
	log *logging.Logger,
) BookingService {
	return &bookingService{bookings: bookings, tours: tours, users: users, gateway: gateway, validate: v, log: log}
}

func (s *bookingService) CheckoutSession(ctx context.Context, u *model.User, tourID, baseURL string) (*payment.Session, error) {
	ctx, span := tracer.Start(ctx, "BookingService.CheckoutSession")
	defer span.End()

	t, err := s.tours.FindByID(ctx, tourID)
	if err != nil {
		return nil, notFound(err, "No tour found with that ID")
	}
	base := strings.TrimRight(baseURL, "/")
	return s.gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		TourID:        t.ID,
		TourName:      t.Name,
		Summary:       t.Summary,
		ImageURL:      base + "/img/tours/" + t.ImageCover,
		Price:         t.Price,
		CustomerEmail: u.Email,
		SuccessURL:    base + "/my-tours?alert=booking",
		CancelURL:     base + "/tour/" + t.Slug,
	})
}

func (s *bookingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ctx, span := tracer.Start(ctx, "BookingService.HandleWebhook")
	defer span.End()

	ev, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	if ev.Type != payment.EventCheckoutCompleted || ev.Checkout == nil {
		s.log.Info("webhook_ignored", map[string]any{"event_id": ev.ID, "event_type": ev.Type})
		return nil
	}

	u, err := s.users.FindByEmail(ctx, ev.Checkout.CustomerEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Wrap(err, 400, "WEBHOOK_ERROR", fmt.Sprintf("Webhook error: no user with email %s", ev.Checkout.CustomerEmail))
		}
		return err
	}
	b, err := s.bookings.Create(ctx, &model.Booking{
		TourID:            ev.Checkout.TourID,
		UserID:            u.ID,
		Price:             ev.Checkout.Price,
		Paid:              true,
		CheckoutSessionID: ev.Checkout.SessionID,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		s.log.Info("webhook_duplicate", map[string]any{"event_id": ev.ID, "session_id": ev.Checkout.SessionID})
		return nil
	}
	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	s.log.Info("booking_created", map[string]any{"booking_id": b.ID, "tour_id": b.TourID, "user_id": b.UserID, "event_id": ev.ID})
	return nil
}

func (s *bookingService) List(ctx context.Context, q *query.Query) ([]model.Booking, error) {
	return s.bookings.List(ctx, q)
}

func (s *bookingService) Get(ctx context.Context, id string) (*model.Booking, error) {
	b, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrNoDocument.Message)
	}
	return b, nil
}

func (s *bookingService) Create(ctx context.Context, in BookingInput) (*model.Booking, error) {
	b := &model.Booking{TourID: in.Tour, UserID: in.User, Price: in.Price, Paid: true}
	if in.Paid != nil {
		b.Paid = *in.Paid
	}
	if err := s.validate.Struct(b); err != nil {
		return nil, err
	}
	return s.bookings.Create(ctx, b)
}

func (s *bookingService) Update(ctx context.Context, id string, in BookingInput) (*model.Booking, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Tour != "" && in.Tour != b.TourID {
		b.TourID, b.Tour = in.Tour, nil
	}
	if in.User != "" && in.User != b.UserID {
		b.UserID, b.User = in.User, nil
	}
	if in.Price != 0 {
		b.Price = in.Price
	}
	if in.Paid != nil {
		b.Paid = *in.Paid
	}
	if err := s.validate.Struct(b); err != nil {
		return nil, err
	}
	out, err := s.bookings.Update(ctx, b)
	if err != nil {
		return nil, notFound(err, ErrNoDocument.Message)
	}
	return out, nil
}

func (s *bookingService) Delete(ctx context.Context, id string) error {
	return notFound(s.bookings.Delete(ctx, id), ErrNoDocument.Message)
}

func (s *bookingService) ToursForUser(ctx context.Context, userID string) ([]model.Tour, error) {
	return s.bookings.ToursForUser(ctx, userID)
}
