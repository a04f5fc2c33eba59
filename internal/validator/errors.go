package validator

import (
	"github.com/teacherhub/quiz-service/internal/errors"
)

// The validator reports failures with the same field-error types the rest
// of the service layer uses, so handlers map them without caring whether a
// request failed tag validation or a domain check.
type ValidationError = errors.ValidationError
type ValidationErrors = errors.ValidationErrors

// ToValidationErrors flattens a validator.ValidationErrors value into the
// shared per-field representation.
func ToValidationErrors(err error) ValidationErrors {
	return errors.ToValidationErrors(err)
}
