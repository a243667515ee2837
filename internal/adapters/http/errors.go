package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/globetrotter/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // bad_request, not_found, unprocessable, internal_error, unavailable
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

func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

func errUnprocessable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusUnprocessableEntity, "unprocessable", msg)
}

func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusServiceUnavailable, "unavailable", msg)
}

// errFromDomain maps core errors onto HTTP responses.
func errFromDomain(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrInvalidInput) {
		return errUnprocessable(c, err.Error())
	}
	LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
	return errInternal(c, "internal error")
}

// validationMessage turns validator output into one readable line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, name+" is required")
		case "gte":
			parts = append(parts, fmt.Sprintf("%s must be >= %s", name, fe.Param()))
		case "lte":
			parts = append(parts, fmt.Sprintf("%s must be <= %s", name, fe.Param()))
		case "gt":
			parts = append(parts, fmt.Sprintf("%s must be > %s", name, fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", name, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// ErrorHandler is the Fiber app error handler: every error leaves as an APIError.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch {
		case fe.Code == fiber.StatusNotFound:
			return errNotFound(c, fe.Message)
		case fe.Code == fiber.StatusRequestTimeout, fe.Code == fiber.StatusServiceUnavailable:
			return errUnavailable(c, fe.Message)
		case fe.Code < fiber.StatusInternalServerError:
			return newError(c, fe.Code, "bad_request", fe.Message)
		}
	}
	return errFromDomain(c, err)
}
