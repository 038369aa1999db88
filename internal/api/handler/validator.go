package handler

import (
	"github.com/99minutos/storefront/internal/pkg/validate"
)

// echoValidator lets handlers call c.Validate(req); failures come back as
// field-keyed *domain.ValidationError values.
type echoValidator struct{}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	return &echoValidator{}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	return validate.Struct(i)
}
