package middleware

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"tourapi/internal/logging"
)

// Logger writes one access entry per request with request_id, method, path, status,
// latency in milliseconds, client ip and, once authenticated, user_id.
// Errors are resolved through the app's ErrorHandler first so the logged status is final.
func Logger(log *logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := resolve(c, c.Next())

		fields := map[string]any{
			"request_id": RequestIDFrom(c),
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"latency":    float64(time.Since(start).Microseconds()) / 1000,
			"ip":         c.IP(),
		}
		if u := CurrentUser(c); u != nil {
			fields["user_id"] = u.ID
		}
		log.Info("", fields)
		return err
	}
}

// LoggerWithWriter is Logger over a fresh logging.Logger writing to w.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	return Logger(logging.New(w, loc))
}

// resolve hands err to the app's ErrorHandler so the response is written before it is inspected.
func resolve(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}
	if herr := c.App().ErrorHandler(c, err); herr != nil {
		_ = c.SendStatus(fiber.StatusInternalServerError)
	}
	return nil
}
