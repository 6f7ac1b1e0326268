// Package apperr holds the error kinds shared by the generator and the dashboard.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports bad input caught before any sampling starts.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Invalid is shorthand for &ValidationError{...}.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ExternalServiceError wraps a text-generation failure for a single review.
type ExternalServiceError struct {
	Provider string
	ReviewID int
	Err      error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("review %d: %s: %v", e.ReviewID, e.Provider, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// DataIntegrityError reports dashboard input that cannot be aggregated:
// a missing column, an unparsable cell, or nothing left after filtering.
type DataIntegrityError struct {
	Reason string
	Err    error
}

func (e *DataIntegrityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data integrity: %s: %v", e.Reason, e.Err)
	}
	return "data integrity: " + e.Reason
}

func (e *DataIntegrityError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsExternalService(err error) bool {
	var e *ExternalServiceError
	return errors.As(err, &e)
}

func IsDataIntegrity(err error) bool {
	var d *DataIntegrityError
	return errors.As(err, &d)
}
