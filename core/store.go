package core

import (
	"context"
	"fmt"
)

// RecordStore is the external key-ordered list store the engine persists
// conversation records to. Values are opaque serialized records. The engine
// relies on one ordering property only: the most recently pushed value is
// readable at index 0.
type RecordStore interface {
	// PushFront prepends values to the list under key. When multiple values
	// are supplied the last one ends up at index 0.
	PushFront(ctx context.Context, key string, values ...string) error

	// Range returns values between start and stop inclusive. Negative
	// indices count from the end of the list, -1 being the last element.
	Range(ctx context.Context, key string, start, stop int) ([]string, error)

	// Delete removes the list under key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error
}

// StoreError wraps a record store I/O failure with the operation and key.
type StoreError struct {
	Op  string
	Key string
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("record store %s failed for key %q: %v", e.Op, e.Key, e.Err)
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError creates a StoreError for the given operation and key.
func NewStoreError(op, key string, err error) *StoreError {
	return &StoreError{Op: op, Key: key, Err: err}
}
