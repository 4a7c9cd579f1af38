package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tourapi/internal/model"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendWelcome(ctx context.Context, u *model.User, url string) error {
	args := m.Called(ctx, u, url)
	return args.Error(0)
}

func (m *MockMailer) SendPasswordReset(ctx context.Context, u *model.User, url string) error {
	args := m.Called(ctx, u, url)
	return args.Error(0)
}
