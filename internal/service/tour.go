package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"tourapi/internal/apperror"
	"tourapi/internal/geo"
	"tourapi/internal/model"
	"tourapi/internal/photo"
	"tourapi/internal/query"
	"tourapi/internal/repository"
	"tourapi/internal/storage"
	"tourapi/internal/validation"
)

// MaxTourImages is the number of gallery images a tour keeps.
const MaxTourImages = 3

// StatsMinRating is the lowest average a tour needs to enter the statistics.
const StatsMinRating = 4.5

// TourImages are uploaded replacements for a tour's cover and gallery.
type TourImages struct {
	Cover  io.Reader
	Images []io.Reader
}

// TourService manages tours and their reports.
type TourService interface {
	List(ctx context.Context, q *query.Query) ([]model.Tour, error)
	// Get returns the tour with its guides and reviews.
	Get(ctx context.Context, id string) (*model.Tour, error)
	GetBySlug(ctx context.Context, slug string) (*model.Tour, error)
	// Create decodes a JSON tour document.
	Create(ctx context.Context, body []byte) (*model.Tour, error)
	// Update merges a JSON patch onto the stored tour and replaces any uploaded images.
	Update(ctx context.Context, id string, patch []byte, imgs *TourImages) (*model.Tour, error)
	Delete(ctx context.Context, id string) error

	Stats(ctx context.Context) ([]model.TourStat, error)
	MonthlyPlan(ctx context.Context, year int) ([]model.MonthlyPlan, error)
	Within(ctx context.Context, distance, lat, lng float64, unit geo.Unit) ([]model.Tour, error)
	Distances(ctx context.Context, lat, lng float64, unit geo.Unit) ([]model.TourDistance, error)
}

type tourService struct {
	tours    repository.TourRepository
	reviews  repository.ReviewRepository
	store    storage.Storage
	validate *validation.Validator
	now      clock
}

// NewTourService constructs a TourService.
func NewTourService(tours repository.TourRepository, reviews repository.ReviewRepository, store storage.Storage, v *validation.Validator) TourService {
	return &tourService{tours: tours, reviews: reviews, store: store, validate: v, now: time.Now}
}

func (s *tourService) List(ctx context.Context, q *query.Query) ([]model.Tour, error) {
	return s.tours.List(ctx, q)
}

func (s *tourService) Get(ctx context.Context, id string) (*model.Tour, error) {
	ctx, span := tracer.Start(ctx, "TourService.Get")
	defer span.End()

	t, err := s.tours.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "No tour found with that ID")
	}
	return s.withReviews(ctx, t)
}

func (s *tourService) GetBySlug(ctx context.Context, slug string) (*model.Tour, error) {
	t, err := s.tours.FindBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, "There is no tour with that name.")
	}
	return s.withReviews(ctx, t)
}

func (s *tourService) withReviews(ctx context.Context, t *model.Tour) (*model.Tour, error) {
	reviews, err := s.reviews.List(ctx, t.ID, query.Default(repository.ReviewSchema))
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}
	if reviews == nil {
		reviews = []model.Review{}
	}
	t.Reviews = reviews
	return t, nil
}

func (s *tourService) Create(ctx context.Context, body []byte) (*model.Tour, error) {
	ctx, span := tracer.Start(ctx, "TourService.Create")
	defer span.End()

	t := &model.Tour{RatingsAverage: model.DefaultRatingsAverage}
	if _, err := decodeTour(t, body); err != nil {
		return nil, err
	}
	t.Normalize()
	if err := s.validate.Struct(t); err != nil {
		return nil, err
	}
	return s.tours.Create(ctx, t)
}

func (s *tourService) Update(ctx context.Context, id string, patch []byte, imgs *TourImages) (*model.Tour, error) {
	ctx, span := tracer.Start(ctx, "TourService.Update")
	defer span.End()

	t, err := s.tours.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "No tour found with that ID")
	}
	var opts repository.TourUpdateOptions
	if len(patch) > 0 {
		supplied, err := decodeTour(t, patch)
		if err != nil {
			return nil, err
		}
		opts = repository.TourUpdateOptions{RatingsAverage: supplied["ratingsAverage"], Guides: supplied["guides"]}
	}
	var uploads []upload
	if imgs != nil {
		if uploads, err = s.renderImages(t, imgs); err != nil {
			return nil, err
		}
	}
	t.Normalize()
	if err := s.validate.Struct(t); err != nil {
		return nil, err
	}

	keys, err := putAll(ctx, s.store, uploads)
	if err != nil {
		return nil, err
	}
	out, err := s.tours.Update(ctx, t, opts)
	if err != nil {
		return nil, rollback(ctx, s.store, keys, notFound(err, "No tour found with that ID"))
	}
	return out, nil
}

// renderImages resizes the uploaded images and points t at their new names.
// Nothing is stored yet.
func (s *tourService) renderImages(t *model.Tour, imgs *TourImages) ([]upload, error) {
	if len(imgs.Images) > MaxTourImages {
		return nil, apperror.BadRequest(fmt.Sprintf("A tour can have at most %d images.", MaxTourImages))
	}
	stamp := s.now().UnixMilli()
	var uploads []upload
	if imgs.Cover != nil {
		name := fmt.Sprintf("tour-%s-%d-cover.jpeg", t.ID, stamp)
		b, err := photo.Resize(imgs.Cover, photo.TourCover)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, upload{key: storage.Key(storage.Tours, name), data: b})
		t.ImageCover = name
	}
	if len(imgs.Images) > 0 {
		names := make([]string, 0, len(imgs.Images))
		for i, r := range imgs.Images {
			name := fmt.Sprintf("tour-%s-%d-%d.jpeg", t.ID, stamp, i+1)
			b, err := photo.Resize(r, photo.TourImage)
			if err != nil {
				return nil, err
			}
			uploads = append(uploads, upload{key: storage.Key(storage.Tours, name), data: b})
			names = append(names, name)
		}
		t.Images = names
	}
	return uploads, nil
}

func (s *tourService) Delete(ctx context.Context, id string) error {
	return notFound(s.tours.Delete(ctx, id), "No tour found with that ID")
}

func (s *tourService) Stats(ctx context.Context) ([]model.TourStat, error) {
	return s.tours.Stats(ctx, StatsMinRating)
}

func (s *tourService) MonthlyPlan(ctx context.Context, year int) ([]model.MonthlyPlan, error) {
	if year < 1 || year > 9999 {
		return nil, apperror.BadRequest("Please provide a valid year.")
	}
	return s.tours.MonthlyPlan(ctx, year)
}

func (s *tourService) Within(ctx context.Context, distance, lat, lng float64, unit geo.Unit) ([]model.Tour, error) {
	if distance <= 0 {
		return nil, apperror.BadRequest("Please provide a positive distance.")
	}
	return s.tours.Within(ctx, lat, lng, geo.RadiusRadians(distance, unit))
}

func (s *tourService) Distances(ctx context.Context, lat, lng float64, unit geo.Unit) ([]model.TourDistance, error) {
	return s.tours.Distances(ctx, lat, lng, geo.DistanceMultiplier(unit))
}

// readOnlyTourFields are computed or server-owned and ignored in request bodies.
var readOnlyTourFields = []string{"id", "slug", "durationWeeks", "reviews", "ratingsQuantity", "createdAt"}

// decodeTour overlays a JSON document onto t and reports the writable keys it carried.
// guides is a list of user ids.
func decodeTour(t *model.Tour, body []byte) (map[string]bool, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, apperror.Wrap(err, 400, "BAD_REQUEST", "Invalid JSON body")
	}
	for _, f := range readOnlyTourFields {
		delete(fields, f)
	}
	supplied := make(map[string]bool, len(fields))
	for k := range fields {
		supplied[k] = true
	}
	if raw, ok := fields["guides"]; ok {
		var ids []string
		if err := json.Unmarshal(raw, &ids); err != nil {
			return nil, apperror.Wrap(err, 400, "BAD_REQUEST", "guides must be a list of user ids")
		}
		t.GuideIDs = ids
		delete(fields, "guides")
	}

	rest, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rest, t); err != nil {
		return nil, apperror.Wrap(err, 400, "BAD_REQUEST", "Invalid input data. "+err.Error())
	}
	return supplied, nil
}
