package handler

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"tourapi/internal/apperror"
	"tourapi/internal/storage"
)

// HealthCheck godoc
// @Summary Health check
// @Description Checks database connectivity.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return apperror.Wrap(err, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe godoc
// @Summary Liveness probe
// @Tags health
// @Success 200
// @Router /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ServeImage streams /img/{users,tours}/:file from object storage.
// Unknown folders and missing objects fall through to the static files.
func ServeImage(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		folder, ok := storage.ParseFolder(c.Params("folder"))
		if !ok {
			return c.Next()
		}
		rc, info, err := store.Get(c.UserContext(), storage.Key(folder, c.Params("file")))
		if errors.Is(err, storage.ErrNotFound) {
			return c.Next()
		}
		if err != nil {
			return err
		}

		ct := info.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		c.Set(fiber.HeaderContentType, ct)
		c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
		size := int(info.Size)
		if size <= 0 {
			size = -1
		}
		return c.SendStream(rc, size)
	}
}
