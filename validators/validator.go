package validators

import (
	"github.com/go-playground/validator/v10"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/apperrors"
)

// RequestValidator adapts go-playground/validator to Echo's Validator
// interface. Failures come back as engine validation errors so handlers map
// them through the same error taxonomy as service failures.
type RequestValidator struct {
	validate *validator.Validate
}

// NewValidator creates a new RequestValidator
func NewValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

// Validate checks the given struct against its validate tags.
func (v *RequestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return apperrors.Validation(err.Error())
	}
	return nil
}
