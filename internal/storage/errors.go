package storage

import "errors"

// Sentinel errors shared between the store and the HTTP layer. Handlers
// match them with errors.Is; anything else is treated as a storage failure.
var (
	// ErrConflict signals that a record with the same unique key exists.
	ErrConflict = errors.New("record already exists")

	// ErrNotFound signals that no record matched the given identifier.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidArgument signals a malformed identifier or a missing
	// required field.
	ErrInvalidArgument = errors.New("invalid argument")
)
