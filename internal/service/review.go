package service

import (
	"context"
	"strings"

	"tourapi/internal/apperror"
	"tourapi/internal/model"
	"tourapi/internal/query"
	"tourapi/internal/repository"
	"tourapi/internal/validation"
)

// ReviewInput is the body of a new review. Tour and user fall back to the route and the session.
type ReviewInput struct {
	Review string `json:"review"`
	Rating int    `json:"rating"`
	Tour   string `json:"tour"`
	User   string `json:"user"`
}

// ReviewPatch changes a review's text or rating.
type ReviewPatch struct {
	Review *string `json:"review"`
	Rating *int    `json:"rating"`
}

// ReviewService manages reviews. Rating aggregates are kept by the repository.
type ReviewService interface {
	// List returns reviews of tourID, or of every tour when tourID is empty.
	List(ctx context.Context, tourID string, q *query.Query) ([]model.Review, error)
	Get(ctx context.Context, id string) (*model.Review, error)
	Create(ctx context.Context, actor *model.User, tourID string, in ReviewInput) (*model.Review, error)
	Update(ctx context.Context, actor *model.User, id string, in ReviewPatch) (*model.Review, error)
	Delete(ctx context.Context, actor *model.User, id string) error
}

type reviewService struct {
	reviews  repository.ReviewRepository
	tours    repository.TourRepository
	validate *validation.Validator
}

// NewReviewService constructs a ReviewService.
func NewReviewService(reviews repository.ReviewRepository, tours repository.TourRepository, v *validation.Validator) ReviewService {
	return &reviewService{reviews: reviews, tours: tours, validate: v}
}

func (s *reviewService) List(ctx context.Context, tourID string, q *query.Query) ([]model.Review, error) {
	return s.reviews.List(ctx, tourID, q)
}

func (s *reviewService) Get(ctx context.Context, id string) (*model.Review, error) {
	rv, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrNoDocument.Message)
	}
	return rv, nil
}

func (s *reviewService) Create(ctx context.Context, actor *model.User, tourID string, in ReviewInput) (*model.Review, error) {
	ctx, span := tracer.Start(ctx, "ReviewService.Create")
	defer span.End()

	rv := &model.Review{
		Review: strings.TrimSpace(in.Review),
		Rating: in.Rating,
		TourID: in.Tour,
		UserID: in.User,
	}
	if rv.TourID == "" {
		rv.TourID = tourID
	}
	if rv.UserID == "" {
		rv.UserID = actor.ID
	}
	if err := s.validate.Struct(rv); err != nil {
		return nil, err
	}
	if _, err := s.tours.FindByID(ctx, rv.TourID); err != nil {
		return nil, notFound(err, "No tour found with that ID")
	}

	out, err := s.reviews.Create(ctx, rv)
	if err != nil {
		return nil, err
	}
	if out.UserID == actor.ID {
		out.User = &model.UserRef{ID: actor.ID, Name: actor.Name, Photo: actor.Photo}
	}
	return out, nil
}

func (s *reviewService) Update(ctx context.Context, actor *model.User, id string, in ReviewPatch) (*model.Review, error) {
	rv, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.Review != nil {
		rv.Review = strings.TrimSpace(*in.Review)
	}
	if in.Rating != nil {
		rv.Rating = *in.Rating
	}
	if err := s.validate.Struct(rv); err != nil {
		return nil, err
	}
	out, err := s.reviews.Update(ctx, rv)
	if err != nil {
		return nil, notFound(err, ErrNoDocument.Message)
	}
	out.User = rv.User
	return out, nil
}

func (s *reviewService) Delete(ctx context.Context, actor *model.User, id string) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	return notFound(s.reviews.Delete(ctx, id), ErrNoDocument.Message)
}

// owned loads a review actor may change. Admins may change any review.
func (s *reviewService) owned(ctx context.Context, actor *model.User, id string) (*model.Review, error) {
	rv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.HasRole(model.RoleAdmin) && rv.UserID != actor.ID {
		return nil, apperror.Forbidden("You can only change your own reviews")
	}
	return rv, nil
}
