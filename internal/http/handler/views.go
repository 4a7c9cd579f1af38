package handler

import (
	"github.com/gofiber/fiber/v2"

	"tourapi/internal/http/middleware"
	"tourapi/internal/query"
	"tourapi/internal/repository"
	"tourapi/internal/service"
	"tourapi/internal/views"
)

// OverviewPage renders every visible tour.
func OverviewPage(tours service.TourService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := tours.List(c.UserContext(), query.Default(repository.TourSchema))
		if err != nil {
			return err
		}
		return render(c, views.Page{Title: "All Tours"}, views.Overview(list))
	}
}

// TourPage renders a tour found by its slug.
func TourPage(tours service.TourService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		t, err := tours.GetBySlug(c.UserContext(), c.Params("slug"))
		if err != nil {
			return err
		}
		return render(c, views.Page{Title: t.Name + " Tour"}, views.TourDetail(t, middleware.CurrentUser(c)))
	}
}

func LoginPage() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return render(c, views.Page{Title: "Log into your account"}, views.Login())
	}
}

func AccountPage() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return render(c, views.Page{Title: "Your account"}, views.Account(middleware.CurrentUser(c)))
	}
}

// MyToursPage renders the tours the logged-in user has booked.
func MyToursPage(bookings service.BookingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := bookings.ToursForUser(c.UserContext(), middleware.CurrentUser(c).ID)
		if err != nil {
			return err
		}
		return render(c, views.Page{Title: "My Tours"}, views.Overview(list))
	}
}

// SubmitUserData handles the account form posted without JavaScript.
func SubmitUserData(users service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := users.UpdateMe(c.UserContext(), middleware.CurrentUser(c).ID, service.UpdateMeInput{
			Name:  c.FormValue("name"),
			Email: c.FormValue("email"),
		})
		if err != nil {
			return err
		}
		return render(c, views.Page{Title: "Your account", User: u}, views.Account(u))
	}
}
