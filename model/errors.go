package model

import (
	"errors"
	"fmt"

	"github.com/jacentio/lattice/coerce"
)

// TypeCastError reports a value that cannot be coerced to a field's
// declared type. Raised at the offending read or write, never deferred
// to synchronization time.
type TypeCastError = coerce.CastError

// UnknownFieldError reports a read or write of a name absent from the
// field set. Always fatal to the operation.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("lattice: unknown field %q", e.Field)
}

// SerializationError reports a serialized-field codec failure. The codec
// error is propagated unchanged as the cause.
type SerializationError struct {
	Field string
	Err   error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("lattice: serializing field %q: %v", e.Field, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// fieldError annotates a coercion failure with the attribute name it
// occurred on.
func fieldError(name string, err error) error {
	var ce *coerce.CastError
	if errors.As(err, &ce) {
		return &coerce.CastError{Field: name, Type: ce.Type, Value: ce.Value}
	}
	return err
}
