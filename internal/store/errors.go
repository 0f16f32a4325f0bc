package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the id was never created. It is an answer, not a
	// storage failure.
	ErrNotFound = errors.New("tournament not found")

	// ErrConflict means a conditional update saw a different revision than
	// the caller expected.
	ErrConflict = errors.New("tournament was modified concurrently")

	ErrUnknownTable = errors.New("unknown reference table")
)

// StorageError wraps any failure from the database itself.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
