package trace

import "errors"

// Common index errors.
var (
	// ErrNotFound is returned when a requirement or document is not registered.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an identifier is already registered.
	ErrDuplicate = errors.New("already registered")
)
