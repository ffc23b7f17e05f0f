package handlers

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/voltflow/crm/pkg/domain"
	"github.com/voltflow/crm/pkg/reports"
)

// NewValidator returns a validator with the CRM's custom tags registered
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("month", func(fl validator.FieldLevel) bool {
		return reports.ValidMonth(fl.Field().String())
	})
	return v
}

// CustomValidator adapts the validator to echo.Validator
type CustomValidator struct {
	validator *validator.Validate
}

// NewCustomValidator creates the echo validator
func NewCustomValidator() *CustomValidator {
	return &CustomValidator{validator: NewValidator()}
}

// Validate implements echo.Validator
func (cv *CustomValidator) Validate(i any) error {
	return validationError(cv.validator.Struct(i))
}

// validationError turns validator output into a safe message
func validationError(err error) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return domain.NewValidationError("Invalid request data. Please check your input and try again.")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		case "month":
			msgs = append(msgs, fmt.Sprintf("%s must be formatted as YYYY-MM", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return domain.NewValidationError(strings.Join(msgs, "; "))
}
