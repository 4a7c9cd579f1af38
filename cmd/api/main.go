package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tourapi/docs"
	"tourapi/internal/apperror"
	"tourapi/internal/auth"
	"tourapi/internal/config"
	"tourapi/internal/database"
	"tourapi/internal/database/migration"
	handlers "tourapi/internal/http/handler"
	"tourapi/internal/http/middleware"
	"tourapi/internal/logging"
	"tourapi/internal/mailer"
	"tourapi/internal/otel"
	"tourapi/internal/payment"
	"tourapi/internal/repository/postgres"
	"tourapi/internal/service"
	"tourapi/internal/storage"
	"tourapi/internal/validation"
)

const contentSecurityPolicy = "default-src 'self' https://*.mapbox.com https://*.stripe.com; " +
	"base-uri 'self'; font-src 'self' https: data:; frame-src 'self' https://*.stripe.com; " +
	"img-src 'self' data: blob:; object-src 'none'; " +
	"script-src 'self' https://*.mapbox.com https://js.stripe.com blob:; " +
	"style-src 'self' https: 'unsafe-inline'; worker-src 'self' blob:; " +
	"connect-src 'self' https://*.mapbox.com https://*.stripe.com"

// @title Tour API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg, err := config.Load()
	if err != nil {
		logging.Stdout(time.UTC).Error("config_invalid", err, nil)
		os.Exit(1)
	}
	log := logging.Stdout(cfg.Location())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		fatal(log, "tracing_init_failed", err)
	}

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		fatal(log, "db_connect_failed", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		fatal(log, "db_migration_failed", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		fatal(log, "storage_init_failed", err)
	}

	mail, err := mailer.New(cfg.Mail, log)
	if err != nil {
		fatal(log, "mailer_init_failed", err)
	}

	// Initialize repositories and services
	validate := validation.New()
	tourRepo := postgres.NewTourPostgres(db)
	userRepo := postgres.NewUserPostgres(db)
	reviewRepo := postgres.NewReviewPostgres(db)
	bookingRepo := postgres.NewBookingPostgres(db)

	authSvc := service.NewAuthService(userRepo, auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.ExpiresIn), mail, validate, log)
	userSvc := service.NewUserService(userRepo, objStore, validate)
	tourSvc := service.NewTourService(tourRepo, reviewRepo, objStore, validate)
	reviewSvc := service.NewReviewService(reviewRepo, tourRepo, validate)
	bookingSvc := service.NewBookingService(bookingRepo, tourRepo, userRepo, payment.NewStripe(cfg.Stripe), validate, log)

	metrics, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		fatal(log, "metrics_init_failed", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(handlers.ErrorOptions{Production: cfg.IsProduction(), Log: log}),
		BodyLimit:    10 * 1024 * 1024,
	})

	// Register global middleware
	app.Use(recover.New())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger(log))
	app.Use(otelfiber.Middleware())
	app.Use(metrics.Handler())
	app.Use(helmet.New(helmet.Config{ContentSecurityPolicy: contentSecurityPolicy}))
	app.Use(cors.New())
	app.Use("/api", limiter.New(limiter.Config{
		Max:        cfg.RateLimit.Max,
		Expiration: cfg.RateLimit.Window,
		LimitReached: func(c *fiber.Ctx) error {
			return apperror.New(fiber.StatusTooManyRequests, "TOO_MANY_REQUESTS",
				"Too many requests from this IP, please try again in an hour!")
		},
	}))
	app.Use(compress.New())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, handlers.Deps{
		DB:       db,
		Storage:  objStore,
		Auth:     authSvc,
		Users:    userSvc,
		Tours:    tourSvc,
		Reviews:  reviewSvc,
		Bookings: bookingSvc,
		Site: handlers.SiteOptions{
			BaseURL:   cfg.BaseURL,
			CookieTTL: cfg.JWT.CookieExpiresIn,
		},
		JSONBodyLimit: cfg.JSONBodyLimit,
		PublicDir:     "./public",
	})

	addr := ":" + cfg.Port
	go func() {
		if err := app.Listen(addr); err != nil {
			log.Error("server_stopped", err, map[string]any{"addr": addr})
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown_started", nil)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("server_shutdown_failed", err, nil)
	}
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.Error("tracing_shutdown_failed", err, nil)
	}
}

func fatal(log *logging.Logger, msg string, err error) {
	log.Error(msg, err, nil)
	os.Exit(1)
}
