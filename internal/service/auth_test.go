package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tourapi/internal/auth"
	"tourapi/internal/logging"
	mailMocks "tourapi/internal/mailer/mocks"
	"tourapi/internal/model"
	"tourapi/internal/repository"
	repoMocks "tourapi/internal/repository/mocks"
	"tourapi/internal/validation"
)

type authFixture struct {
	svc    *authService
	users  *repoMocks.MockUserRepository
	mail   *mailMocks.MockMailer
	tokens *auth.TokenIssuer
}

func newAuthFixture() *authFixture {
	users := &repoMocks.MockUserRepository{}
	mail := &mailMocks.MockMailer{}
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	svc := NewAuthService(users, tokens, mail, validation.New(), logging.Discard()).(*authService)
	return &authFixture{svc: svc, users: users, mail: mail, tokens: tokens}
}

func hashOf(t *testing.T, plain string) string {
	t.Helper()
	h, err := auth.HashPassword(plain)
	require.NoError(t, err)
	return h
}

func TestAuthService_Signup(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	f.users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "jane@example.com" && u.Role == model.RoleUser && u.Photo == model.DefaultPhoto &&
			auth.CheckPassword(u.PasswordHash, "pass1234")
	})).Return(&model.User{ID: userID, Name: "Jane", Email: "jane@example.com", Role: model.RoleUser}, nil)
	f.mail.On("SendWelcome", mock.Anything, mock.Anything, "http://localhost:8080/me").Return(errors.New("smtp down"))

	sess, err := f.svc.Signup(ctx, SignupInput{Name: " Jane ", Email: "Jane@Example.com", Password: "pass1234", PasswordConfirm: "pass1234"}, "http://localhost:8080/me")
	require.NoError(t, err)
	assert.Equal(t, userID, sess.User.ID)

	claims, err := f.tokens.Parse(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	f.users.AssertExpectations(t)
	f.mail.AssertExpectations(t)
}

func TestAuthService_SignupRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		in      SignupInput
		wantMsg string
	}{
		{
			name:    "passwords differ",
			in:      SignupInput{Name: "Jane", Email: "jane@example.com", Password: "pass1234", PasswordConfirm: "pass4321"},
			wantMsg: "Passwords are not the same!",
		},
		{
			name:    "bad email",
			in:      SignupInput{Name: "Jane", Email: "jane", Password: "pass1234", PasswordConfirm: "pass1234"},
			wantMsg: "Please provide a valid email",
		},
		{
			name:    "missing name",
			in:      SignupInput{Email: "jane@example.com", Password: "pass1234", PasswordConfirm: "pass1234"},
			wantMsg: "name is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture()
			_, err := f.svc.Signup(context.Background(), tt.in, "")
			appErr := assertStatus(t, err, 400)
			assert.Contains(t, appErr.Message, tt.wantMsg)
			f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	stored := &model.User{ID: userID, Email: "jane@example.com", PasswordHash: hashOf(t, "pass1234")}

	t.Run("missing credentials", func(t *testing.T) {
		f := newAuthFixture()
		_, err := f.svc.Login(ctx, "jane@example.com", "")
		appErr := assertStatus(t, err, 400)
		assert.Equal(t, "Please provide email and password!", appErr.Message)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, repository.ErrNotFound)
		_, err := f.svc.Login(ctx, "nobody@example.com", "pass1234")
		appErr := assertStatus(t, err, 401)
		assert.Equal(t, "Incorrect email or password", appErr.Message)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByEmail", mock.Anything, "jane@example.com").Return(stored, nil)
		_, err := f.svc.Login(ctx, "jane@example.com", "wrong-pass")
		assertStatus(t, err, 401)
	})

	t.Run("success", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByEmail", mock.Anything, "jane@example.com").Return(stored, nil)
		sess, err := f.svc.Login(ctx, "jane@example.com", "pass1234")
		require.NoError(t, err)
		assert.NotEmpty(t, sess.Token)
		assert.Same(t, stored, sess.User)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("active user", func(t *testing.T) {
		f := newAuthFixture()
		token, err := f.tokens.Issue(userID)
		require.NoError(t, err)
		f.users.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID}, nil)

		u, err := f.svc.Authenticate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, userID, u.ID)
	})

	t.Run("user gone", func(t *testing.T) {
		f := newAuthFixture()
		token, err := f.tokens.Issue(userID)
		require.NoError(t, err)
		f.users.On("FindByID", mock.Anything, userID).Return(nil, repository.ErrNotFound)

		_, err = f.svc.Authenticate(ctx, token)
		appErr := assertStatus(t, err, 401)
		assert.Equal(t, "The user belonging to this token does no longer exist.", appErr.Message)
	})

	t.Run("password changed after issue", func(t *testing.T) {
		f := newAuthFixture()
		token, err := f.tokens.Issue(userID)
		require.NoError(t, err)
		later := time.Now().Add(5 * time.Second)
		f.users.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID, PasswordChangedAt: &later}, nil)

		_, err = f.svc.Authenticate(ctx, token)
		appErr := assertStatus(t, err, 401)
		assert.Equal(t, "User recently changed password! Please log in again.", appErr.Message)
	})

	t.Run("garbage token", func(t *testing.T) {
		f := newAuthFixture()
		_, err := f.svc.Authenticate(ctx, "not-a-token")
		assertStatus(t, err, 401)
		f.users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}

func TestAuthService_ForgotPassword(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	u := &model.User{ID: userID, Email: "jane@example.com"}
	const prefix = "http://localhost:8080/api/v1/users/resetPassword"

	t.Run("stores the digest and mails the raw token", func(t *testing.T) {
		f := newAuthFixture()
		f.svc.now = func() time.Time { return now }
		var stored string
		f.users.On("FindByEmail", mock.Anything, "jane@example.com").Return(u, nil)
		f.users.On("SetResetToken", mock.Anything, userID, mock.MatchedBy(func(h string) bool {
			stored = h
			return len(h) == 64
		}), mock.MatchedBy(func(exp *time.Time) bool {
			return exp != nil && exp.Equal(now.Add(ResetTokenTTL))
		})).Return(nil)
		f.mail.On("SendPasswordReset", mock.Anything, u, mock.MatchedBy(func(link string) bool {
			raw := strings.TrimPrefix(link, prefix+"/")
			return raw != link && auth.HashResetToken(raw) == stored
		})).Return(nil)

		require.NoError(t, f.svc.ForgotPassword(ctx, "jane@example.com", prefix))
		f.users.AssertExpectations(t)
		f.mail.AssertExpectations(t)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, repository.ErrNotFound)
		err := f.svc.ForgotPassword(ctx, "nobody@example.com", prefix)
		appErr := assertStatus(t, err, 404)
		assert.Equal(t, "There is no user with email address.", appErr.Message)
	})

	t.Run("mail failure clears the token", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByEmail", mock.Anything, "jane@example.com").Return(u, nil)
		f.users.On("SetResetToken", mock.Anything, userID, mock.MatchedBy(func(h string) bool { return h != "" }), mock.Anything).Return(nil).Once()
		f.users.On("SetResetToken", mock.Anything, userID, "", (*time.Time)(nil)).Return(nil).Once()
		f.mail.On("SendPasswordReset", mock.Anything, u, mock.Anything).Return(errors.New("smtp down"))

		err := f.svc.ForgotPassword(ctx, "jane@example.com", prefix)
		appErr := assertStatus(t, err, 500)
		assert.Equal(t, "There was an error sending the email. Try again later!", appErr.Message)
		f.users.AssertExpectations(t)
	})
}

func TestAuthService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("sets the password and backdates the change", func(t *testing.T) {
		f := newAuthFixture()
		f.svc.now = func() time.Time { return now }
		f.users.On("FindByResetToken", mock.Anything, auth.HashResetToken("raw-token"), now).
			Return(&model.User{ID: userID, PasswordResetToken: "digest"}, nil)
		f.users.On("UpdatePassword", mock.Anything, userID, mock.MatchedBy(func(h string) bool {
			return auth.CheckPassword(h, "newpass123")
		}), now.Add(-time.Second)).Return(nil)

		sess, err := f.svc.ResetPassword(ctx, "raw-token", PasswordInput{Password: "newpass123", PasswordConfirm: "newpass123"})
		require.NoError(t, err)
		assert.NotEmpty(t, sess.Token)
		assert.Empty(t, sess.User.PasswordResetToken)
		require.NotNil(t, sess.User.PasswordChangedAt)
		assert.Equal(t, now.Add(-time.Second), *sess.User.PasswordChangedAt)
	})

	t.Run("expired or unknown token", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByResetToken", mock.Anything, mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)
		_, err := f.svc.ResetPassword(ctx, "stale", PasswordInput{Password: "newpass123", PasswordConfirm: "newpass123"})
		appErr := assertStatus(t, err, 400)
		assert.Equal(t, "Token is invalid or has expired", appErr.Message)
	})
}

func TestAuthService_UpdatePassword(t *testing.T) {
	ctx := context.Background()
	stored := &model.User{ID: userID, PasswordHash: hashOf(t, "pass1234")}

	t.Run("wrong current password", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByID", mock.Anything, userID).Return(stored, nil)
		_, err := f.svc.UpdatePassword(ctx, userID, "nope", PasswordInput{Password: "newpass123", PasswordConfirm: "newpass123"})
		appErr := assertStatus(t, err, 401)
		assert.Equal(t, "Your current password is wrong.", appErr.Message)
		f.users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("confirmation mismatch", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByID", mock.Anything, userID).Return(stored, nil)
		_, err := f.svc.UpdatePassword(ctx, userID, "pass1234", PasswordInput{Password: "newpass123", PasswordConfirm: "other"})
		assertStatus(t, err, 400)
	})

	t.Run("success", func(t *testing.T) {
		f := newAuthFixture()
		u := *stored
		f.users.On("FindByID", mock.Anything, userID).Return(&u, nil)
		f.users.On("UpdatePassword", mock.Anything, userID, mock.Anything, mock.Anything).Return(nil)
		sess, err := f.svc.UpdatePassword(ctx, userID, "pass1234", PasswordInput{Password: "newpass123", PasswordConfirm: "newpass123"})
		require.NoError(t, err)
		assert.True(t, auth.CheckPassword(sess.User.PasswordHash, "newpass123"))
	})
}
