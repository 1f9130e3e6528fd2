package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrSessionNotFound = fmt.Errorf("%w: session", ErrNotFound)
	ErrSourceNotFound  = fmt.Errorf("%w: source", ErrNotFound)

	// Lifecycle errors
	ErrSourceGone    = errors.New("source object no longer exists")
	ErrSessionClosed = errors.New("session closed")

	// Request errors
	ErrColumnOutOfRange = errors.New("column index out of range")
	ErrUnsupportedType  = errors.New("unsupported column type")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrUnknownMethod    = errors.New("unknown method")
	ErrNoData           = errors.New("no non-missing values")
)

// NewColumnOutOfRangeError reports a column index outside [0, numColumns).
func NewColumnOutOfRangeError(index, numColumns int) error {
	return fmt.Errorf("%w: %d (table has %d columns)", ErrColumnOutOfRange, index, numColumns)
}

// NewUnsupportedTypeError reports an operation that cannot run on a column type.
func NewUnsupportedTypeError(operation, typeLabel string) error {
	return fmt.Errorf("%w: %s is not supported for %s columns", ErrUnsupportedType, operation, typeLabel)
}

// NewInvalidRequestError wraps a malformed request description.
func NewInvalidRequestError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, reason)
}

// IsNotFoundError reports whether err is a not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTerminal reports whether err ends a session.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrSourceGone) || errors.Is(err, ErrSessionClosed)
}

// IsRequestError reports whether err was caused by caller input.
func IsRequestError(err error) bool {
	return errors.Is(err, ErrColumnOutOfRange) ||
		errors.Is(err, ErrUnsupportedType) ||
		errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrUnknownMethod)
}
