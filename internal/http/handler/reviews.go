package handler

import (
	"github.com/gofiber/fiber/v2"

	"tourapi/internal/http/middleware"
	"tourapi/internal/repository"
	"tourapi/internal/service"
)

// nestedTourID returns the :tourId segment of /tours/:tourId/reviews, or "" on /reviews.
func nestedTourID(c *fiber.Ctx) (string, error) {
	if c.Params("tourId") == "" {
		return "", nil
	}
	return paramID(c, "tourId")
}

// ListReviews godoc
// @Summary List reviews, optionally of one tour
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param tourId path string false "Tour ID (UUID)"
// @Success 200 {object} map[string]any
// @Router /api/v1/reviews [get]
// @Router /api/v1/tours/{tourId}/reviews [get]
func ListReviews(svc service.ReviewService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tourID, err := nestedTourID(c)
		if err != nil {
			return err
		}
		q, err := listQuery(c, repository.ReviewSchema)
		if err != nil {
			return err
		}
		reviews, err := svc.List(c.UserContext(), tourID, q)
		if err != nil {
			return err
		}
		return sendList(c, q, "data", reviews, len(reviews))
	}
}

func GetReview(svc service.ReviewService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		r, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return sendData(c, fiber.StatusOK, "data", r)
	}
}

// CreateReview godoc
// @Summary Review a tour
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tourId path string false "Tour ID (UUID)"
// @Success 201 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Router /api/v1/tours/{tourId}/reviews [post]
func CreateReview(svc service.ReviewService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tourID, err := nestedTourID(c)
		if err != nil {
			return err
		}
		var in service.ReviewInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		r, err := svc.Create(c.UserContext(), middleware.CurrentUser(c), tourID, in)
		if err != nil {
			return err
		}
		return sendData(c, fiber.StatusCreated, "data", r)
	}
}

func UpdateReview(svc service.ReviewService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		var in service.ReviewPatch
		if err := parseBody(c, &in); err != nil {
			return err
		}
		r, err := svc.Update(c.UserContext(), middleware.CurrentUser(c), id, in)
		if err != nil {
			return err
		}
		return sendData(c, fiber.StatusOK, "data", r)
	}
}

func DeleteReview(svc service.ReviewService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
