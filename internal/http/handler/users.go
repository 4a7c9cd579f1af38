package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"tourapi/internal/apperror"
	"tourapi/internal/http/middleware"
	"tourapi/internal/repository"
	"tourapi/internal/service"
)

// SiteOptions are the public-facing settings shared by the session and checkout handlers.
type SiteOptions struct {
	// BaseURL overrides the request origin when building absolute links.
	BaseURL string
	// CookieTTL is the lifetime of the jwt cookie.
	CookieTTL time.Duration
}

type loginInput struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type forgotInput struct {
	Email string `json:"email" form:"email"`
}

type updatePasswordInput struct {
	PasswordCurrent string `json:"passwordCurrent" form:"passwordCurrent"`
	Password        string `json:"password" form:"password"`
	PasswordConfirm string `json:"passwordConfirm" form:"passwordConfirm"`
}

// sendSession sets the jwt cookie and writes the token with the user.
func sendSession(c *fiber.Ctx, status int, opts SiteOptions, sess *service.Session) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    sess.Token,
		Expires:  time.Now().Add(opts.CookieTTL),
		HTTPOnly: true,
		Secure:   secureRequest(c),
		Path:     "/",
	})
	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"token":  sess.Token,
		"data":   fiber.Map{"user": sess.User},
	})
}

func secureRequest(c *fiber.Ctx) bool {
	return c.Secure() || c.Get(fiber.HeaderXForwardedProto) == "https"
}

// Signup godoc
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Success 201 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Router /api/v1/users/signup [post]
func Signup(auth service.AuthService, opts SiteOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.SignupInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		sess, err := auth.Signup(c.UserContext(), in, siteURL(c, opts.BaseURL)+"/me")
		if err != nil {
			return err
		}
		return sendSession(c, fiber.StatusCreated, opts, sess)
	}
}

// Login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} errorPayload
// @Router /api/v1/users/login [post]
func Login(auth service.AuthService, opts SiteOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in loginInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		if in.Email == "" || in.Password == "" {
			return apperror.BadRequest("Please provide email and password!")
		}
		sess, err := auth.Login(c.UserContext(), in.Email, in.Password)
		if err != nil {
			return err
		}
		return sendSession(c, fiber.StatusOK, opts, sess)
	}
}

// Logout overwrites the session cookie with a short-lived placeholder.
func Logout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Cookie(&fiber.Cookie{
			Name:     middleware.CookieName,
			Value:    middleware.LoggedOutValue,
			Expires:  time.Now().Add(10 * time.Second),
			HTTPOnly: true,
			Path:     "/",
		})
		return c.JSON(fiber.Map{"status": "success"})
	}
}

// ForgotPassword godoc
// @Summary Mail a password reset link
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 404 {object} errorPayload
// @Router /api/v1/users/forgotPassword [post]
func ForgotPassword(auth service.AuthService, opts SiteOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in forgotInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		resetURL := siteURL(c, opts.BaseURL) + "/api/v1/users/resetPassword"
		if err := auth.ForgotPassword(c.UserContext(), in.Email, resetURL); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"status": "success", "message": "Token sent to email!"})
	}
}

func ResetPassword(auth service.AuthService, opts SiteOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.PasswordInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		sess, err := auth.ResetPassword(c.UserContext(), c.Params("token"), in)
		if err != nil {
			return err
		}
		return sendSession(c, fiber.StatusOK, opts, sess)
	}
}

func UpdateMyPassword(auth service.AuthService, opts SiteOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in updatePasswordInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		u := middleware.CurrentUser(c)
		sess, err := auth.UpdatePassword(c.UserContext(), u.ID, in.PasswordCurrent, service.PasswordInput{
			Password:        in.Password,
			PasswordConfirm: in.PasswordConfirm,
		})
		if err != nil {
			return err
		}
		return sendSession(c, fiber.StatusOK, opts, sess)
	}
}

// GetMe returns the logged-in user's account.
func GetMe(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := svc.Get(c.UserContext(), middleware.CurrentUser(c).ID)
		if err != nil {
			return err
		}
		return sendData(c, fiber.StatusOK, "data", u)
	}
}

// UpdateMe godoc
// @Summary Update the logged-in user's name, email or photo
// @Tags users
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Router /api/v1/users/updateMe [patch]
func UpdateMe(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Name            string `json:"name" form:"name"`
			Email           string `json:"email" form:"email"`
			Password        string `json:"password" form:"password"`
			PasswordConfirm string `json:"passwordConfirm" form:"passwordConfirm"`
		}
		if len(c.Body()) > 0 {
			if err := parseBody(c, &body); err != nil {
				return err
			}
		}

		in := service.UpdateMeInput{
			Name:            body.Name,
			Email:           body.Email,
			Password:        body.Password,
			PasswordConfirm: body.PasswordConfirm,
		}
		if fh, err := c.FormFile("photo"); err == nil {
			f, err := fh.Open()
			if err != nil {
				return apperror.Wrap(err, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "Cannot open uploaded file")
			}
			defer f.Close()
			in.Photo = f
		}

		u, err := svc.UpdateMe(c.UserContext(), middleware.CurrentUser(c).ID, in)
		if err != nil {
			return err
		}
		return sendData(c, fiber.StatusOK, "user", u)
	}
}

func DeleteMe(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeleteMe(c.UserContext(), middleware.CurrentUser(c).ID); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func ListUsers(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := listQuery(c, repository.UserSchema)
		if err != nil {
			return err
		}
		users, err := svc.List(c.UserContext(), q)
		if err != nil {
			return err
		}
		return sendList(c, q, "data", users, len(users))
	}
}

func GetUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		u, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return sendData(c, fiber.StatusOK, "data", u)
	}
}

// CreateUser points clients at signup; accounts are never created through the admin routes.
func CreateUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return apperror.New(fiber.StatusInternalServerError, "ROUTE_NOT_DEFINED", "This route is not defined! Please use /signup instead")
	}
}

// UpdateUser applies an admin change. Passwords cannot be changed here.
func UpdateUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		var in service.UserUpdate
		if err := parseBody(c, &in); err != nil {
			return err
		}
		u, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return err
		}
		return sendData(c, fiber.StatusOK, "data", u)
	}
}

func DeleteUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
