package entities

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	// ErrValidation marks malformed scalar input. Nothing is persisted when it is returned.
	ErrValidation = errors.New("validation error")

	// ErrInvalidReference marks a missing mandatory reference (the book format).
	ErrInvalidReference = errors.New("invalid reference")

	// ErrNotFound marks a requested entity that does not exist or is soft-deleted.
	ErrNotFound = errors.New("not found")
)

// ValidationError carries per-field reasons.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Fields.Error())
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// InvalidReferenceError names the mandatory reference that did not resolve.
type InvalidReferenceError struct {
	Field string
	ID    uint
}

func (e *InvalidReferenceError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("invalid reference: %s is required", e.Field)
	}
	return fmt.Sprintf("invalid reference: %s %d not found", e.Field, e.ID)
}

func (e *InvalidReferenceError) Is(target error) bool {
	return target == ErrInvalidReference
}

// AsValidationError converts the result of an ozzo-validation call into a
// *ValidationError, passing nil and internal rule errors through unchanged.
func AsValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		return &ValidationError{Fields: fields}
	}
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return err
	}
	return &ValidationError{Fields: validation.Errors{"value": err}}
}
