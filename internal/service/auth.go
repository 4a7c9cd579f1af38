package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tourapi/internal/apperror"
	"tourapi/internal/auth"
	"tourapi/internal/logging"
	"tourapi/internal/mailer"
	"tourapi/internal/model"
	"tourapi/internal/repository"
	"tourapi/internal/validation"
)

// ResetTokenTTL is how long a password reset token stays valid.
const ResetTokenTTL = 10 * time.Minute

// SignupInput is the public registration payload.
type SignupInput struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// PasswordInput carries a new password and its confirmation.
type PasswordInput struct {
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// Session is a signed-in user and the token that proves it.
type Session struct {
	Token string
	User  *model.User
}

// AuthService signs users up and in and manages their passwords.
type AuthService interface {
	// Signup creates a user account and sends the welcome mail pointing at accountURL.
	Signup(ctx context.Context, in SignupInput, accountURL string) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	// Authenticate resolves a token to the active user it was issued for.
	Authenticate(ctx context.Context, token string) (*model.User, error)
	// ForgotPassword mails a reset link made from resetURL and the raw token.
	ForgotPassword(ctx context.Context, email, resetURL string) error
	ResetPassword(ctx context.Context, rawToken string, in PasswordInput) (*Session, error)
	UpdatePassword(ctx context.Context, userID, current string, in PasswordInput) (*Session, error)
}

type authService struct {
	users    repository.UserRepository
	tokens   *auth.TokenIssuer
	mail     mailer.Mailer
	validate *validation.Validator
	log      *logging.Logger
	now      clock
}

// NewAuthService constructs an AuthService.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenIssuer, mail mailer.Mailer, v *validation.Validator, log *logging.Logger) AuthService {
	return &authService{users: users, tokens: tokens, mail: mail, validate: v, log: log, now: time.Now}
}

func (s *authService) Signup(ctx context.Context, in SignupInput, accountURL string) (*Session, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Signup")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	in.Email = model.NormalizeEmail(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Create(ctx, &model.User{
		Name:         in.Name,
		Email:        in.Email,
		Photo:        model.DefaultPhoto,
		Role:         model.RoleUser,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	if err := s.mail.SendWelcome(ctx, u, accountURL); err != nil {
		s.log.Error("welcome_mail_failed", err, map[string]any{"user_id": u.ID})
	}
	return s.session(u)
}

func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, apperror.BadRequest("Please provide email and password!")
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, password) {
		return nil, apperror.Unauthorized("Incorrect email or password")
	}
	return s.session(u)
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Unauthorized("The user belonging to this token does no longer exist.")
		}
		return nil, err
	}
	if claims.IssuedAt != nil && u.ChangedPasswordAfter(claims.IssuedAt.Time) {
		return nil, apperror.Unauthorized("User recently changed password! Please log in again.")
	}
	return u, nil
}

func (s *authService) ForgotPassword(ctx context.Context, email, resetURL string) error {
	ctx, span := tracer.Start(ctx, "AuthService.ForgotPassword")
	defer span.End()

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return notFound(err, "There is no user with email address.")
	}

	raw, hashed, err := auth.NewResetToken()
	if err != nil {
		return err
	}
	expires := s.now().Add(ResetTokenTTL)
	if err := s.users.SetResetToken(ctx, u.ID, hashed, &expires); err != nil {
		return err
	}

	link := strings.TrimRight(resetURL, "/") + "/" + raw
	if err := s.mail.SendPasswordReset(ctx, u, link); err != nil {
		if clearErr := s.users.SetResetToken(ctx, u.ID, "", nil); clearErr != nil {
			s.log.Error("reset_token_clear_failed", clearErr, map[string]any{"user_id": u.ID})
		}
		return apperror.Wrap(err, 500, "MAIL_ERROR", "There was an error sending the email. Try again later!")
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, rawToken string, in PasswordInput) (*Session, error) {
	u, err := s.users.FindByResetToken(ctx, auth.HashResetToken(rawToken), s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.BadRequest("Token is invalid or has expired")
		}
		return nil, err
	}
	if err := s.setPassword(ctx, u, in); err != nil {
		return nil, err
	}
	u.PasswordResetToken = ""
	u.PasswordResetExpires = nil
	return s.session(u)
}

func (s *authService) UpdatePassword(ctx context.Context, userID, current string, in PasswordInput) (*Session, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "The user belonging to this token does no longer exist.")
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		return nil, apperror.Unauthorized("Your current password is wrong.")
	}
	if err := s.setPassword(ctx, u, in); err != nil {
		return nil, err
	}
	return s.session(u)
}

// setPassword stores a new hash. The change time is backdated one second so a token
// issued right after it is still accepted.
func (s *authService) setPassword(ctx context.Context, u *model.User, in PasswordInput) error {
	if err := s.validate.Struct(in); err != nil {
		return err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return err
	}
	changedAt := s.now().Add(-time.Second)
	if err := s.users.UpdatePassword(ctx, u.ID, hash, changedAt); err != nil {
		return err
	}
	u.PasswordHash = hash
	u.PasswordChangedAt = &changedAt
	return nil
}

func (s *authService) session(u *model.User) (*Session, error) {
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, User: u}, nil
}
