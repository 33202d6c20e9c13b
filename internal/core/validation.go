// AngelaMos | 2026
// validation.go

package core

import (
	"unicode"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns the request validator shared by every handler, with
// the "username" rule registered.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	//nolint:errcheck // tag name and func are static
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return ValidUsername(fl.Field().String())
	})

	return v
}

// ValidUsername reports whether s starts with a letter and continues with
// letters, digits, dots or underscores.
func ValidUsername(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || r == '.' || r == '_'):
		default:
			return false
		}
	}

	return true
}
