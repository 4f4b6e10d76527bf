package record

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a record does not exist in its variant's
// collection. Store-layer failures are returned as-is and never retried.
var ErrNotFound = errors.New("record not found")

// UnsupportedTypeError is raised when a caller names a record variant or
// imports a resource type outside the eight known variants.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported record type: %s", e.Type)
}

// IsUnsupportedType reports whether err is an UnsupportedTypeError.
func IsUnsupportedType(err error) bool {
	var ute *UnsupportedTypeError
	return errors.As(err, &ute)
}

// ValidationError reports a write rejected before it reached the store.
// Handlers map it to a client error; anything else from a write is a
// store failure.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
