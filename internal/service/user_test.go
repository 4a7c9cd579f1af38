package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tourapi/internal/model"
	"tourapi/internal/repository"
	repoMocks "tourapi/internal/repository/mocks"
	"tourapi/internal/storage"
	storeMocks "tourapi/internal/storage/mocks"
	"tourapi/internal/validation"
)

func newUserFixture() (*userService, *repoMocks.MockUserRepository, *storeMocks.MockStorage) {
	users := &repoMocks.MockUserRepository{}
	store := &storeMocks.MockStorage{}
	svc := NewUserService(users, store, validation.New()).(*userService)
	return svc, users, store
}

func jane() *model.User {
	return &model.User{ID: userID, Name: "Jane", Email: "jane@example.com", Photo: model.DefaultPhoto, Role: model.RoleUser}
}

func TestUserService_UpdateMe(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects password fields", func(t *testing.T) {
		svc, users, _ := newUserFixture()
		_, err := svc.UpdateMe(ctx, userID, UpdateMeInput{Name: "x", Password: "secret123"})
		appErr := assertStatus(t, err, 400)
		assert.Equal(t, "This route is not for password updates. Please use /updateMyPassword.", appErr.Message)
		users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("applies name and email only", func(t *testing.T) {
		svc, users, _ := newUserFixture()
		users.On("FindByID", mock.Anything, userID).Return(jane(), nil)
		users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Name == "Jane Doe" && u.Email == "doe@example.com" && u.Role == model.RoleUser
		})).Return(&model.User{ID: userID, Name: "Jane Doe"}, nil)

		u, err := svc.UpdateMe(ctx, userID, UpdateMeInput{Name: "Jane Doe", Email: "DOE@example.com"})
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", u.Name)
		users.AssertExpectations(t)
	})

	t.Run("resizes and stores the photo", func(t *testing.T) {
		svc, users, store := newUserFixture()
		svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
		const name = "user-" + userID + "-1700000000000.jpeg"

		users.On("FindByID", mock.Anything, userID).Return(jane(), nil)
		store.On("Put", mock.Anything, "img/users/"+name, mock.Anything, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
			return opt.ContentType == "image/jpeg" && opt.Size > 0
		})).Return(storage.ObjectInfo{Key: "img/users/" + name}, nil)
		users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool { return u.Photo == name })).
			Return(&model.User{ID: userID, Photo: name}, nil)

		u, err := svc.UpdateMe(ctx, userID, UpdateMeInput{Photo: pngImage(t, 40, 30)})
		require.NoError(t, err)
		assert.Equal(t, name, u.Photo)
		store.AssertExpectations(t)
	})

	t.Run("storage failure", func(t *testing.T) {
		svc, users, store := newUserFixture()
		users.On("FindByID", mock.Anything, userID).Return(jane(), nil)
		store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, errors.New("bucket gone"))

		_, err := svc.UpdateMe(ctx, userID, UpdateMeInput{Photo: pngImage(t, 10, 10)})
		assert.ErrorContains(t, err, "store image: bucket gone")
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("removes the stored photo when the update fails", func(t *testing.T) {
		svc, users, store := newUserFixture()
		svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
		const key = "img/users/user-" + userID + "-1700000000000.jpeg"

		users.On("FindByID", mock.Anything, userID).Return(jane(), nil)
		store.On("Put", mock.Anything, key, mock.Anything, mock.Anything).Return(storage.ObjectInfo{Key: key}, nil)
		users.On("Update", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
		store.On("Delete", mock.Anything, key).Return(nil).Once()

		_, err := svc.UpdateMe(ctx, userID, UpdateMeInput{Photo: pngImage(t, 10, 10)})
		assert.EqualError(t, err, "db down")
		store.AssertExpectations(t)
	})

	t.Run("invalid email stores nothing", func(t *testing.T) {
		svc, users, store := newUserFixture()
		users.On("FindByID", mock.Anything, userID).Return(jane(), nil)

		_, err := svc.UpdateMe(ctx, userID, UpdateMeInput{Email: "not-an-email", Photo: pngImage(t, 10, 10)})
		require.Error(t, err)
		store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestUserService_Get(t *testing.T) {
	svc, users, _ := newUserFixture()
	users.On("FindByID", mock.Anything, otherID).Return(nil, repository.ErrNotFound)

	_, err := svc.Get(context.Background(), otherID)
	appErr := assertStatus(t, err, 404)
	assert.Equal(t, "No document found with that ID", appErr.Message)
}

func TestUserService_DeleteMe(t *testing.T) {
	svc, users, _ := newUserFixture()
	users.On("Deactivate", mock.Anything, userID).Return(nil)

	require.NoError(t, svc.DeleteMe(context.Background(), userID))
	users.AssertExpectations(t)
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("changes the role", func(t *testing.T) {
		svc, users, _ := newUserFixture()
		users.On("FindByID", mock.Anything, userID).Return(jane(), nil)
		users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool { return u.Role == model.RoleGuide })).
			Return(&model.User{ID: userID, Role: model.RoleGuide}, nil)

		u, err := svc.Update(ctx, userID, UserUpdate{Role: model.RoleGuide})
		require.NoError(t, err)
		assert.Equal(t, model.RoleGuide, u.Role)
	})

	t.Run("unknown role", func(t *testing.T) {
		svc, users, _ := newUserFixture()
		users.On("FindByID", mock.Anything, userID).Return(jane(), nil)

		_, err := svc.Update(ctx, userID, UserUpdate{Role: "root"})
		appErr := assertStatus(t, err, 400)
		assert.Contains(t, appErr.Message, "role must be one of: user, guide, lead-guide, admin")
	})
}

func TestUserService_Delete(t *testing.T) {
	svc, users, _ := newUserFixture()
	users.On("Delete", mock.Anything, otherID).Return(repository.ErrNotFound)

	assertStatus(t, svc.Delete(context.Background(), otherID), 404)
}
