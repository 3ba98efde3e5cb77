package store

import "errors"

var (
	// ErrNotFound is returned when no item exists for the requested id.
	ErrNotFound = errors.New("lattice: record not found")

	// ErrAlreadyExists is returned when creating a record whose id is
	// already present in the table.
	ErrAlreadyExists = errors.New("lattice: record already exists")

	// ErrMissingID is returned when a record has no usable id value.
	ErrMissingID = errors.New("lattice: record has no id")
)
