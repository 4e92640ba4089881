package domain

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("domain: not found")
	// ErrAlreadyExists is returned when a uniqueness constraint would be
	// violated by the requested write (username, meeting id/code,
	// participant membership).
	ErrAlreadyExists = errors.New("domain: already exists")
)
