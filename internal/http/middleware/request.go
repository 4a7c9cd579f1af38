package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"tourapi/internal/apperror"
	"tourapi/internal/views"
)

// AlertLocalKey stores the banner text for rendered pages.
const AlertLocalKey = "alert"

// JSONBodyLimit rejects JSON bodies larger than limit bytes. Multipart uploads are not affected.
func JSONBodyLimit(limit int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limit > 0 && strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) && len(c.Body()) > limit {
			return apperror.New(fiber.StatusRequestEntityTooLarge, "BODY_TOO_LARGE",
				fmt.Sprintf("Request body must not exceed %d bytes.", limit))
		}
		return c.Next()
	}
}

// Alerts turns ?alert=<key> into a banner message for the rendered page.
func Alerts() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if msg := views.AlertMessage(c.Query("alert")); msg != "" {
			c.Locals(AlertLocalKey, msg)
		}
		return c.Next()
	}
}

// Alert returns the banner stored by Alerts.
func Alert(c *fiber.Ctx) string {
	msg, _ := c.Locals(AlertLocalKey).(string)
	return msg
}
