package clips

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyContent: capture had no usable text.
	ErrEmptyContent = errors.New("empty content")
	// ErrDuplicateContent: identical content was captured inside the duplicate window.
	ErrDuplicateContent = errors.New("duplicate content")
	ErrNotFound         = errors.New("clip not found")
	// ErrStorageUnavailable wraps every failure of the persistence backend.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// storageError keeps both ErrStorageUnavailable and the backend cause
// reachable through errors.Is / errors.As.
type storageError struct {
	op  string
	err error
}

func (e *storageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorageUnavailable, e.op, e.err)
}

func (e *storageError) Unwrap() []error {
	return []error{ErrStorageUnavailable, e.err}
}

func storageErr(op string, err error) error {
	return &storageError{op: op, err: err}
}
