package catalog

import "errors"

var (
	// ErrNotFound is returned when no book has the requested ID.
	ErrNotFound = errors.New("book not found")
	// ErrPersistence is returned when the store cannot be read or written.
	ErrPersistence = errors.New("persistence failure")
	// ErrConflict is returned when the stored collection changed since it was read.
	ErrConflict = errors.New("collection was modified concurrently")
)
