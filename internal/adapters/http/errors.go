package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/fleetspot/internal/core/domain"
	"github.com/samirrijal/fleetspot/internal/core/ports"
	"github.com/samirrijal/fleetspot/internal/pkg/geospatial"
	"github.com/samirrijal/fleetspot/internal/pkg/logging"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// errFromService maps a use case error onto an API error. Unexpected errors
// are logged and reported without detail.
func errFromService(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, geospatial.ErrInvalidGeometry):
		return errBadRequest(c, err.Error())
	case errors.Is(err, ports.ErrRegionNotFound):
		return newError(c, fiber.StatusBadRequest, "unknown_region", "invalid city or state")
	case errors.Is(err, geospatial.ErrTooManyPoints):
		return newError(c, fiber.StatusUnprocessableEntity, "too_many_points", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, err.Error())
	default:
		logging.FromContext(c.UserContext()).Error("request failed",
			"method", c.Method(), "path", c.Path(), "error", err)
		return errInternal(c, "internal server error")
	}
}
