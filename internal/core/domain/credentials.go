package domain

import (
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

var fieldValidator = validator.New()

// ValidateCredentials checks a registration request before any store access.
func ValidateCredentials(email, password string) error {
	ve := &ValidationError{}
	if err := fieldValidator.Var(email, "required,email"); err != nil {
		ve.add("email", "must be a valid email address")
	}
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		ve.add("password", "must be at least 8 characters")
	} else if n > MaxPasswordLength {
		ve.add("password", "must be at most 128 characters")
	}
	return ve.orNil()
}
