package domain

import (
	"errors"
	"strings"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("incorrect email or password")
	ErrInvalidToken        = errors.New("could not validate credentials")
	ErrUserNotFound        = errors.New("user not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrForbidden           = errors.New("not permitted")
)

// FieldViolation describes a single failed constraint on an input field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every violation found while validating an input.
// It matches ErrInvalidInput under errors.Is.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Field+" "+v.Message)
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func (e *ValidationError) add(field, msg string) {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Message: msg})
}

// orNil returns e as an error only if it holds at least one violation.
func (e *ValidationError) orNil() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}
