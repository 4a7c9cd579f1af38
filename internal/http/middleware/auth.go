package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"tourapi/internal/apperror"
	"tourapi/internal/model"
	"tourapi/internal/service"
)

const (
	// CookieName carries the session token for browsers.
	CookieName = "jwt"
	// LoggedOutValue replaces the token on logout.
	LoggedOutValue = "loggedout"
	// UserLocalKey stores the authenticated *model.User.
	UserLocalKey = "user"
)

// Protect rejects requests without a valid session. The token comes from the
// Authorization bearer header, else from the jwt cookie.
func Protect(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerToken(c)
		if token == "" {
			token = c.Cookies(CookieName)
		}
		if token == "" {
			return apperror.Unauthorized("You are not logged in! Please log in to get access.")
		}

		u, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return err
		}
		c.Locals(UserLocalKey, u)
		return c.Next()
	}
}

// RestrictTo lets through only users holding one of roles. It must run after Protect.
func RestrictTo(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := CurrentUser(c)
		if u == nil || !u.HasRole(roles...) {
			return apperror.Forbidden("You do not have permission to perform this action")
		}
		return c.Next()
	}
}

// IsLoggedIn resolves the cookie session for rendered pages. It never fails the request.
func IsLoggedIn(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(CookieName)
		if token == "" || token == LoggedOutValue {
			return c.Next()
		}
		if u, err := auth.Authenticate(c.UserContext(), token); err == nil {
			c.Locals(UserLocalKey, u)
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user or nil.
func CurrentUser(c *fiber.Ctx) *model.User {
	u, _ := c.Locals(UserLocalKey).(*model.User)
	return u
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
