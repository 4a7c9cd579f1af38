package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tourapi/internal/geo"
	"tourapi/internal/model"
	"tourapi/internal/query"
	"tourapi/internal/service"
)

type MockTourService struct {
	mock.Mock
}

func (m *MockTourService) List(ctx context.Context, q *query.Query) ([]model.Tour, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tour), args.Error(1)
}

func (m *MockTourService) Get(ctx context.Context, id string) (*model.Tour, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tour), args.Error(1)
}

func (m *MockTourService) GetBySlug(ctx context.Context, slug string) (*model.Tour, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tour), args.Error(1)
}

func (m *MockTourService) Create(ctx context.Context, body []byte) (*model.Tour, error) {
	args := m.Called(ctx, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tour), args.Error(1)
}

func (m *MockTourService) Update(ctx context.Context, id string, patch []byte, imgs *service.TourImages) (*model.Tour, error) {
	args := m.Called(ctx, id, patch, imgs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tour), args.Error(1)
}

func (m *MockTourService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTourService) Stats(ctx context.Context) ([]model.TourStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TourStat), args.Error(1)
}

func (m *MockTourService) MonthlyPlan(ctx context.Context, year int) ([]model.MonthlyPlan, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MonthlyPlan), args.Error(1)
}

func (m *MockTourService) Within(ctx context.Context, distance, lat, lng float64, unit geo.Unit) ([]model.Tour, error) {
	args := m.Called(ctx, distance, lat, lng, unit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tour), args.Error(1)
}

func (m *MockTourService) Distances(ctx context.Context, lat, lng float64, unit geo.Unit) ([]model.TourDistance, error) {
	args := m.Called(ctx, lat, lng, unit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TourDistance), args.Error(1)
}
