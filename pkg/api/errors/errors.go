// Package errors writes JSON error responses without leaking internal details.
package errors

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/voltflow/crm/pkg/domain"
	"github.com/voltflow/crm/pkg/models"
)

// ValidationError returns a generic 400; err is only logged
func ValidationError(c echo.Context, err error) error {
	log.Printf("[VALIDATION ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "validation_error",
		Message: "Invalid request data. Please check your input and try again.",
	})
}

// BadRequest returns a 400 with a message that is safe to show
func BadRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

// DatabaseError returns a generic database error
func DatabaseError(c echo.Context, err error) error {
	log.Printf("[DATABASE ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "database_error",
		Message: "A database error occurred. Please try again later.",
	})
}

// InternalError returns a generic internal server error
func InternalError(c echo.Context, err error) error {
	log.Printf("[INTERNAL ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred. Please try again later.",
	})
}

// UnauthorizedError returns a 401 pointing the client at the login page
func UnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:    "unauthorized",
		Message:  "Authentication required",
		Redirect: "/login",
	})
}

// ForbiddenError returns a 403 pointing the client at the unauthorized page
func ForbiddenError(c echo.Context) error {
	return c.JSON(http.StatusForbidden, models.ErrorResponse{
		Error:    "forbidden",
		Message:  "You do not have permission to access this resource.",
		Redirect: "/unauthorized",
	})
}

// NotFoundError returns a 404 naming the missing resource
func NotFoundError(c echo.Context, message string) error {
	if message == "" {
		message = "The requested resource was not found."
	}
	return c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error:   "not_found",
		Message: message,
	})
}

// ConflictError returns a 409
func ConflictError(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, models.ErrorResponse{
		Error:   "conflict",
		Message: message,
	})
}

// ExternalServiceError returns a 502 carrying the user-facing provider message
func ExternalServiceError(c echo.Context, err error) error {
	log.Printf("[EXTERNAL SERVICE ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusBadGateway, models.ErrorResponse{
		Error:   "external_service_error",
		Message: domain.Message(err),
	})
}

// FromDomain maps a service error to its HTTP response
func FromDomain(c echo.Context, err error) error {
	switch {
	case domain.IsNotFound(err):
		return NotFoundError(c, domain.Message(err))
	case domain.IsValidation(err):
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: domain.Message(err),
		})
	case domain.IsMissingContactChannel(err):
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "missing_contact_channel",
			Message: domain.Message(err),
		})
	case domain.IsBadRequest(err):
		return BadRequest(c, domain.Message(err))
	case domain.IsConflict(err):
		return ConflictError(c, domain.Message(err))
	case domain.IsExternalService(err):
		return ExternalServiceError(c, err)
	case domain.IsUnauthorized(err):
		return UnauthorizedError(c)
	case domain.IsForbidden(err):
		return ForbiddenError(c)
	default:
		return InternalError(c, err)
	}
}
