package repository

import "errors"

var (
	// ErrNotFound indicates an entity was not located.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict indicates a uniqueness or state conflict.
	ErrConflict = errors.New("repository: conflict")
	// ErrInvalidArgument indicates the store rejected the input.
	ErrInvalidArgument = errors.New("repository: invalid argument")
)
