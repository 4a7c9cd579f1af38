package handler

import (
	"github.com/gofiber/fiber/v2"

	"tourapi/internal/http/middleware"
	"tourapi/internal/repository"
	"tourapi/internal/service"
)

// StripeSignatureHeader carries the webhook signature.
const StripeSignatureHeader = "Stripe-Signature"

// CheckoutSession godoc
// @Summary Open a hosted checkout for a tour
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param tourId path string true "Tour ID (UUID)"
// @Success 200 {object} map[string]any
// @Router /api/v1/bookings/checkout-session/{tourId} [get]
func CheckoutSession(svc service.BookingService, opts SiteOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tourID, err := paramID(c, "tourId")
		if err != nil {
			return err
		}
		sess, err := svc.CheckoutSession(c.UserContext(), middleware.CurrentUser(c), tourID, siteURL(c, opts.BaseURL))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"status": "success", "session": sess})
	}
}

// Webhook records completed checkouts. The body must be the exact bytes that were signed.
// @Summary Payment provider webhook
// @Tags bookings
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Router /webhook-checkout [post]
func Webhook(svc service.BookingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.HandleWebhook(c.UserContext(), c.Body(), c.Get(StripeSignatureHeader)); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"received": true})
	}
}

func ListBookings(svc service.BookingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := listQuery(c, repository.BookingSchema)
		if err != nil {
			return err
		}
		bookings, err := svc.List(c.UserContext(), q)
		if err != nil {
			return err
		}
		return sendList(c, q, "data", bookings, len(bookings))
	}
}

func GetBooking(svc service.BookingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		b, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return sendData(c, fiber.StatusOK, "data", b)
	}
}

func CreateBooking(svc service.BookingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.BookingInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		b, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return err
		}
		return sendData(c, fiber.StatusCreated, "data", b)
	}
}

func UpdateBooking(svc service.BookingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		var in service.BookingInput
		if err := parseBody(c, &in); err != nil {
			return err
		}
		b, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return err
		}
		return sendData(c, fiber.StatusOK, "data", b)
	}
}

func DeleteBooking(svc service.BookingService) fiber.Handler {
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
