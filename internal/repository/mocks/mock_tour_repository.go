package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tourapi/internal/model"
	"tourapi/internal/query"
	"tourapi/internal/repository"
)

type MockTourRepository struct {
	mock.Mock
}

func (m *MockTourRepository) List(ctx context.Context, q *query.Query) ([]model.Tour, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tour), args.Error(1)
}

func (m *MockTourRepository) FindByID(ctx context.Context, id string) (*model.Tour, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tour), args.Error(1)
}

func (m *MockTourRepository) FindBySlug(ctx context.Context, slug string) (*model.Tour, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tour), args.Error(1)
}

func (m *MockTourRepository) Create(ctx context.Context, t *model.Tour) (*model.Tour, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tour), args.Error(1)
}

func (m *MockTourRepository) Update(ctx context.Context, t *model.Tour, opts repository.TourUpdateOptions) (*model.Tour, error) {
	args := m.Called(ctx, t, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tour), args.Error(1)
}

func (m *MockTourRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTourRepository) Stats(ctx context.Context, minRating float64) ([]model.TourStat, error) {
	args := m.Called(ctx, minRating)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TourStat), args.Error(1)
}

func (m *MockTourRepository) MonthlyPlan(ctx context.Context, year int) ([]model.MonthlyPlan, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MonthlyPlan), args.Error(1)
}

func (m *MockTourRepository) Within(ctx context.Context, lat, lng, radians float64) ([]model.Tour, error) {
	args := m.Called(ctx, lat, lng, radians)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tour), args.Error(1)
}

func (m *MockTourRepository) Distances(ctx context.Context, lat, lng, multiplier float64) ([]model.TourDistance, error) {
	args := m.Called(ctx, lat, lng, multiplier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TourDistance), args.Error(1)
}
