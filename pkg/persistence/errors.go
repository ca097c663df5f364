package persistence

import "errors"

var (
	// ErrEntityNotFound is returned when an entity is not found in the repository.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrNoTransaction is returned by code that requires an active unit of work.
	ErrNoTransaction = errors.New("no active transaction in context")
)
