package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tourapi/internal/apperror"
	"tourapi/internal/http/middleware"
	"tourapi/internal/logging"
	"tourapi/internal/repository"
	"tourapi/internal/storage"
	"tourapi/internal/validation"
	"tourapi/internal/views"
)

const genericMessage = "Something went very wrong!"

// errorPayload defines the standardized error response body.
// Error carries the raw cause outside production.
type errorPayload struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id,omitempty"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
}

// ErrorOptions configures ErrorHandler.
type ErrorOptions struct {
	// Production hides internal error text from clients.
	Production bool
	Log        *logging.Logger
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
// API paths get JSON, every other path gets the rendered error page.
func ErrorHandler(opts ErrorOptions) fiber.ErrorHandler {
	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}

	return func(c *fiber.Ctx, err error) error {
		appErr, operational := classify(err)
		if !operational {
			appErr = apperror.Wrap(err, fiber.StatusInternalServerError, "INTERNAL_ERROR", genericMessage)
		}
		if appErr.Status >= fiber.StatusInternalServerError {
			fields := map[string]any{
				"request_id": middleware.RequestIDFrom(c),
				"method":     c.Method(),
				"path":       c.Path(),
				"status":     appErr.Status,
			}
			span := trace.SpanFromContext(c.UserContext())
			span.RecordError(err)
			span.SetStatus(codes.Error, appErr.Code)
			if sc := span.SpanContext(); sc.IsValid() {
				fields["trace_id"] = sc.TraceID().String()
			}
			log.Error("request_failed", err, fields)
		}

		if isAPI(c) {
			return writeError(c, appErr, err, operational, opts.Production)
		}
		return renderError(c, appErr, operational, opts.Production)
	}
}

func writeError(c *fiber.Ctx, appErr *apperror.Error, cause error, operational, production bool) error {
	res := errorPayload{
		Status:    appErr.StatusText(),
		RequestID: middleware.RequestIDFrom(c),
		Code:      appErr.Code,
		Message:   appErr.Message,
	}
	if !production {
		res.Error = cause.Error()
		if !operational {
			res.Message = cause.Error()
		}
	}
	return c.Status(appErr.Status).JSON(res)
}

func renderError(c *fiber.Ctx, appErr *apperror.Error, operational, production bool) error {
	msg := appErr.Message
	if production && !operational {
		msg = "Please try again later."
	}
	c.Status(appErr.Status)
	return render(c, views.Page{Title: "Something went wrong!"}, views.ErrorPage(msg))
}

// classify maps known failures to operational errors.
func classify(err error) (*apperror.Error, bool) {
	if appErr, ok := apperror.As(err); ok {
		return appErr, true
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return apperror.New(fe.Code, fiberCode(fe.Code), fe.Message), true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifyPostgres(err, pgErr)
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return apperror.As(validation.Translate(err))
	}

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperror.Wrap(err, fiber.StatusUnauthorized, "TOKEN_EXPIRED", "Your token has expired! Please log in again."), true
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenInvalidClaims):
		return apperror.Wrap(err, fiber.StatusUnauthorized, "INVALID_TOKEN", "Invalid token. Please log in again!"), true
	case errors.Is(err, repository.ErrNotFound):
		return apperror.Wrap(err, fiber.StatusNotFound, "NOT_FOUND", "No document found with that ID"), true
	case errors.Is(err, storage.ErrNotFound):
		return apperror.Wrap(err, fiber.StatusNotFound, "NOT_FOUND", "Image not found"), true
	}
	return nil, false
}

func classifyPostgres(err error, pgErr *pgconn.PgError) (*apperror.Error, bool) {
	switch pgErr.Code {
	case "23505":
		msg := fmt.Sprintf("Duplicate field value: %s. Please use another value!", duplicateValue(pgErr))
		return apperror.Wrap(err, fiber.StatusBadRequest, "DUPLICATE_FIELD", msg), true
	case "22P02":
		return apperror.Wrap(err, fiber.StatusBadRequest, "INVALID_INPUT", "Invalid input: "+pgErr.Message+"."), true
	case "23503":
		return apperror.Wrap(err, fiber.StatusBadRequest, "INVALID_REFERENCE", "Referenced document does not exist."), true
	case "23514":
		return apperror.Wrap(err, fiber.StatusBadRequest, "VALIDATION_ERROR", "Invalid input data. "+pgErr.ConstraintName), true
	}
	return nil, false
}

// duplicateValue extracts the value from a detail like "Key (email)=(a@b.c) already exists.".
func duplicateValue(pgErr *pgconn.PgError) string {
	d := pgErr.Detail
	if i := strings.Index(d, ")=("); i >= 0 {
		rest := d[i+3:]
		if j := strings.LastIndex(rest, ")"); j >= 0 {
			return rest[:j]
		}
	}
	return pgErr.ConstraintName
}

func fiberCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "BODY_TOO_LARGE"
	case fiber.StatusTooManyRequests:
		return "TOO_MANY_REQUESTS"
	}
	if status >= fiber.StatusInternalServerError {
		return "INTERNAL_ERROR"
	}
	return "ERROR"
}

func isAPI(c *fiber.Ctx) bool {
	p := c.Path()
	return strings.HasPrefix(p, "/api") || strings.HasPrefix(p, "/webhook") || strings.HasPrefix(p, "/health")
}

// RouteNotFound ends the chain for unmatched paths.
func RouteNotFound() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return apperror.NotFound(fmt.Sprintf("Can't find %s on this server!", c.OriginalURL()))
	}
}
