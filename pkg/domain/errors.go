package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	ErrCodeNotFound              = "NOT_FOUND"
	ErrCodeValidation            = "VALIDATION_ERROR"
	ErrCodeMissingContactChannel = "MISSING_CONTACT_CHANNEL"
	ErrCodeExternalService       = "EXTERNAL_SERVICE_FAILURE"
	ErrCodeUnauthorized          = "UNAUTHORIZED"
	ErrCodeForbidden             = "FORBIDDEN"
	ErrCodeInternal              = "INTERNAL_ERROR"
	ErrCodeConflict              = "CONFLICT"
	ErrCodeBadRequest            = "BAD_REQUEST"
)

// ExternalServiceError is raised when an outbound provider (SMTP relay,
// SMS gateway, calendar API) rejects or fails a call.
type ExternalServiceError struct {
	Provider     string
	ProviderCode int
	Message      string
	Err          error
}

func (e *ExternalServiceError) Error() string {
	if e.ProviderCode != 0 {
		return fmt.Sprintf("%s: %s (%s code %d)", ErrCodeExternalService, e.Message, e.Provider, e.ProviderCode)
	}
	return fmt.Sprintf("%s: %s (%s)", ErrCodeExternalService, e.Message, e.Provider)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) error {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewValidationError creates a new validation error
func NewValidationError(msg string) error {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: msg,
	}
}

// NewMissingContactChannelError is returned when a client lacks the email or
// phone needed to deliver a notification
func NewMissingContactChannelError(msg string) error {
	return &DomainError{
		Code:    ErrCodeMissingContactChannel,
		Message: msg,
	}
}

// NewExternalServiceError wraps a provider failure
func NewExternalServiceError(provider string, code int, msg string, err error) error {
	return &ExternalServiceError{
		Provider:     provider,
		ProviderCode: code,
		Message:      msg,
		Err:          err,
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError() error {
	return &DomainError{
		Code:    ErrCodeUnauthorized,
		Message: "Authentication required",
	}
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(msg string) error {
	return &DomainError{
		Code:    ErrCodeForbidden,
		Message: msg,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(err error) error {
	return &DomainError{
		Code:    ErrCodeInternal,
		Message: "An internal error occurred",
		Err:     err,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(msg string) error {
	return &DomainError{
		Code:    ErrCodeConflict,
		Message: msg,
	}
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(msg string) error {
	return &DomainError{
		Code:    ErrCodeBadRequest,
		Message: msg,
	}
}

func hasCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

// IsMissingContactChannel checks if the error is a missing email/phone error
func IsMissingContactChannel(err error) bool {
	return hasCode(err, ErrCodeMissingContactChannel)
}

// IsExternalService checks if the error came from an outbound provider
func IsExternalService(err error) bool {
	var ee *ExternalServiceError
	return errors.As(err, &ee)
}

// IsUnauthorized checks if the error is an unauthorized error
func IsUnauthorized(err error) bool {
	return hasCode(err, ErrCodeUnauthorized)
}

// IsForbidden checks if the error is a forbidden error
func IsForbidden(err error) bool {
	return hasCode(err, ErrCodeForbidden)
}

// IsConflict checks if the error is a conflict error
func IsConflict(err error) bool {
	return hasCode(err, ErrCodeConflict)
}

// IsBadRequest checks if the error is a bad request error
func IsBadRequest(err error) bool {
	return hasCode(err, ErrCodeBadRequest)
}

// GetErrorCode extracts the error code from a domain error
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	if IsExternalService(err) {
		return ErrCodeExternalService
	}
	return ErrCodeInternal
}

// Message returns the user facing message carried by a domain error
func Message(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	var ee *ExternalServiceError
	if errors.As(err, &ee) {
		return ee.Message
	}
	return "An internal error occurred"
}
