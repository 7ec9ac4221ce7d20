package obituary

import "errors"

var (
	// ErrNotFound covers both a missing record and a record the caller does
	// not own; callers must not be able to tell the two apart.
	ErrNotFound = errors.New("obituary: not found")

	ErrInvalidInput = errors.New("obituary: invalid input")
)
