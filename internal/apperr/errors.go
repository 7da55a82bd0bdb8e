// Package apperr defines the sentinel errors shared across the archive.
// They are mapped to HTTP status codes at the API boundary only.
package apperr

import "errors"

var (
	// ErrNotFound marks a document that does not exist in the store (404).
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument marks malformed caller input (400).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrAlreadyExists marks a key produced twice by the partition run.
	ErrAlreadyExists = errors.New("already exists")
	// ErrMalformed marks a stored document that cannot be served as-is (500).
	ErrMalformed = errors.New("malformed document")
)
