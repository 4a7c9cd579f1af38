// Package service holds the business rules between the HTTP handlers and the repositories.
package service

import (
	"errors"
	"time"

	"go.opentelemetry.io/otel"

	"tourapi/internal/apperror"
	"tourapi/internal/repository"
)

var tracer = otel.Tracer("tourapi/internal/service")

// ErrNoDocument is the generic lookup failure for a resource id.
var ErrNoDocument = apperror.NotFound("No document found with that ID")

// notFound maps repository.ErrNotFound to a 404 carrying msg.
func notFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.Wrap(err, 404, "NOT_FOUND", msg)
	}
	return err
}

// clock returns the current time. Tests replace it.
type clock func() time.Time
