package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"tourapi/internal/http/middleware"
	"tourapi/internal/model"
	"tourapi/internal/service"
	"tourapi/internal/storage"
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	DB       *sql.DB
	Storage  storage.Storage
	Auth     service.AuthService
	Users    service.UserService
	Tours    service.TourService
	Reviews  service.ReviewService
	Bookings service.BookingService
	Site     SiteOptions
	// JSONBodyLimit caps JSON bodies on the API in bytes. Zero disables it.
	JSONBodyLimit int
	// PublicDir holds the static assets. Empty disables static serving.
	PublicDir string
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// It registers the not-found handler last, so any route added afterwards is unreachable.
func RegisterRoutes(app *fiber.App, d Deps) {
	protect := middleware.Protect(d.Auth)
	isLoggedIn := middleware.IsLoggedIn(d.Auth)
	alerts := middleware.Alerts()
	admin := middleware.RestrictTo(model.RoleAdmin)
	staff := middleware.RestrictTo(model.RoleAdmin, model.RoleLeadGuide)

	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	app.Post("/webhook-checkout", Webhook(d.Bookings))

	// Rendered pages
	app.Get("/", alerts, isLoggedIn, OverviewPage(d.Tours))
	app.Get("/tour/:slug", isLoggedIn, TourPage(d.Tours))
	app.Get("/login", isLoggedIn, LoginPage())
	app.Get("/me", protect, AccountPage())
	app.Get("/my-tours", alerts, protect, MyToursPage(d.Bookings))
	app.Post("/submit-user-data", protect, SubmitUserData(d.Users))

	api := app.Group("/api/v1", middleware.JSONBodyLimit(d.JSONBodyLimit))

	tours := api.Group("/tours")
	tours.Get("/top-5-cheap", TopCheapAlias(), ListTours(d.Tours))
	tours.Get("/tour-stats", TourStats(d.Tours))
	tours.Get("/monthly-plan/:year", protect,
		middleware.RestrictTo(model.RoleAdmin, model.RoleLeadGuide, model.RoleGuide), MonthlyPlan(d.Tours))
	tours.Get("/tours-within/:distance/center/:latlng/unit/:unit", ToursWithin(d.Tours))
	tours.Get("/distances/:latlng/unit/:unit", Distances(d.Tours))
	tours.Get("/", ListTours(d.Tours))
	tours.Post("/", protect, staff, CreateTour(d.Tours))
	tours.Get("/:id", GetTour(d.Tours))
	tours.Patch("/:id", protect, staff, UpdateTour(d.Tours))
	tours.Delete("/:id", protect, staff, DeleteTour(d.Tours))
	tours.Get("/:tourId/reviews", protect, ListReviews(d.Reviews))
	tours.Post("/:tourId/reviews", protect, middleware.RestrictTo(model.RoleUser), CreateReview(d.Reviews))

	users := api.Group("/users")
	users.Post("/signup", Signup(d.Auth, d.Site))
	users.Post("/login", Login(d.Auth, d.Site))
	users.Get("/logout", Logout())
	users.Post("/forgotPassword", ForgotPassword(d.Auth, d.Site))
	users.Patch("/resetPassword/:token", ResetPassword(d.Auth, d.Site))
	users.Patch("/updateMyPassword", protect, UpdateMyPassword(d.Auth, d.Site))
	users.Get("/me", protect, GetMe(d.Users))
	users.Patch("/updateMe", protect, UpdateMe(d.Users))
	users.Delete("/deleteMe", protect, DeleteMe(d.Users))
	users.Get("/", protect, admin, ListUsers(d.Users))
	users.Post("/", protect, admin, CreateUser())
	users.Get("/:id", protect, admin, GetUser(d.Users))
	users.Patch("/:id", protect, admin, UpdateUser(d.Users))
	users.Delete("/:id", protect, admin, DeleteUser(d.Users))

	reviews := api.Group("/reviews")
	reviews.Get("/", protect, ListReviews(d.Reviews))
	reviews.Post("/", protect, middleware.RestrictTo(model.RoleUser), CreateReview(d.Reviews))
	reviews.Get("/:id", protect, GetReview(d.Reviews))
	reviews.Patch("/:id", protect, middleware.RestrictTo(model.RoleUser, model.RoleAdmin), UpdateReview(d.Reviews))
	reviews.Delete("/:id", protect, middleware.RestrictTo(model.RoleUser, model.RoleAdmin), DeleteReview(d.Reviews))

	bookings := api.Group("/bookings")
	bookings.Get("/checkout-session/:tourId", protect, CheckoutSession(d.Bookings, d.Site))
	bookings.Get("/", protect, staff, ListBookings(d.Bookings))
	bookings.Post("/", protect, staff, CreateBooking(d.Bookings))
	bookings.Get("/:id", protect, staff, GetBooking(d.Bookings))
	bookings.Patch("/:id", protect, staff, UpdateBooking(d.Bookings))
	bookings.Delete("/:id", protect, staff, DeleteBooking(d.Bookings))

	if d.Storage != nil {
		app.Get("/img/:folder/:file", ServeImage(d.Storage))
	}
	if d.PublicDir != "" {
		app.Static("/", d.PublicDir)
	}

	app.Use(RouteNotFound())
}
