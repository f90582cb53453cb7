package utils

import (
	"github.com/go-playground/validator/v10"

	"github.com/urbanwheels/urbanwheels/internal/pkg/apperr"
)

// RequestValidator adapts go-playground/validator to echo's Validator interface
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates a request validator
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

// Validate checks struct tags and classifies failures as validation errors
func (v *RequestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return apperr.Invalid(err.Error())
	}
	return nil
}
