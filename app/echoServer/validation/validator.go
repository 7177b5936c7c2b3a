// Package validation adapts go-playground/validator to echo so bound
// request bodies are checked against struct tags before a handler runs.
package validation

import (
	"github.com/go-playground/validator/v10"
)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate satisfies echo.Validator.
func (v *Validator) Validate(i any) error {
	return v.v.Struct(i)
}

// Raw returns the underlying validate, shared with the controllers.
func (v *Validator) Raw() *validator.Validate { return v.v }
