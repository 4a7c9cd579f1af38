package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"tourapi/internal/apperror"
	"tourapi/internal/model"
	"tourapi/internal/photo"
	"tourapi/internal/query"
	"tourapi/internal/repository"
	"tourapi/internal/storage"
	"tourapi/internal/validation"
)

// UpdateMeInput is what a user may change on their own account.
// Password fields are only present to reject them.
type UpdateMeInput struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
	Photo           io.Reader
}

// UserUpdate is an admin change to an account. Empty fields are left untouched.
type UserUpdate struct {
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Photo string     `json:"photo"`
	Role  model.Role `json:"role"`
}

// UserService manages accounts.
type UserService interface {
	List(ctx context.Context, q *query.Query) ([]model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	UpdateMe(ctx context.Context, id string, in UpdateMeInput) (*model.User, error)
	// DeleteMe deactivates the account. The row is kept.
	DeleteMe(ctx context.Context, id string) error
	Update(ctx context.Context, id string, in UserUpdate) (*model.User, error)
	Delete(ctx context.Context, id string) error
}

type userService struct {
	users    repository.UserRepository
	store    storage.Storage
	validate *validation.Validator
	now      clock
}

// NewUserService constructs a UserService.
func NewUserService(users repository.UserRepository, store storage.Storage, v *validation.Validator) UserService {
	return &userService{users: users, store: store, validate: v, now: time.Now}
}

func (s *userService) List(ctx context.Context, q *query.Query) ([]model.User, error) {
	return s.users.List(ctx, q)
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrNoDocument.Message)
	}
	return u, nil
}

func (s *userService) UpdateMe(ctx context.Context, id string, in UpdateMeInput) (*model.User, error) {
	ctx, span := tracer.Start(ctx, "UserService.UpdateMe")
	defer span.End()

	if in.Password != "" || in.PasswordConfirm != "" {
		return nil, apperror.BadRequest("This route is not for password updates. Please use /updateMyPassword.")
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		u.Name = name
	}
	if in.Email != "" {
		u.Email = model.NormalizeEmail(in.Email)
	}
	if err := s.validate.Struct(u); err != nil {
		return nil, err
	}
	var uploads []upload
	if in.Photo != nil {
		b, err := photo.Resize(in.Photo, photo.UserPhoto)
		if err != nil {
			return nil, err
		}
		u.Photo = fmt.Sprintf("user-%s-%d.jpeg", u.ID, s.now().UnixMilli())
		uploads = append(uploads, upload{
			key:      storage.Key(storage.Users, u.Photo),
			data:     b,
			metadata: map[string]string{"user-id": u.ID},
		})
	}

	keys, err := putAll(ctx, s.store, uploads)
	if err != nil {
		return nil, err
	}
	out, err := s.users.Update(ctx, u)
	if err != nil {
		return nil, rollback(ctx, s.store, keys, err)
	}
	return out, nil
}

func (s *userService) DeleteMe(ctx context.Context, id string) error {
	return notFound(s.users.Deactivate(ctx, id), ErrNoDocument.Message)
}

func (s *userService) Update(ctx context.Context, id string, in UserUpdate) (*model.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		u.Name = name
	}
	if in.Email != "" {
		u.Email = model.NormalizeEmail(in.Email)
	}
	if in.Photo != "" {
		u.Photo = in.Photo
	}
	if in.Role != "" {
		u.Role = in.Role
	}
	if err := s.validate.Struct(u); err != nil {
		return nil, err
	}
	out, err := s.users.Update(ctx, u)
	if err != nil {
		return nil, notFound(err, ErrNoDocument.Message)
	}
	return out, nil
}

func (s *userService) Delete(ctx context.Context, id string) error {
	return notFound(s.users.Delete(ctx, id), ErrNoDocument.Message)
}
