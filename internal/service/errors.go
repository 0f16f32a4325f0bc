package service

import (
	"errors"
	"fmt"

	"github.com/AdamBeresnev/tournament-tracker/internal/bracket"
	"github.com/AdamBeresnev/tournament-tracker/internal/store"
)

var (
	ErrNotFound   = store.ErrNotFound
	ErrConflict   = store.ErrConflict
	ErrFieldBlank = errors.New("must not be blank")
)

// ValidationError reports caller input the engine refuses to store.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// CorruptRecordError means a stored row exists but cannot be decoded. It is
// never returned for a missing id.
type CorruptRecordError struct {
	ID  int64
	Err error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("tournament %d is corrupt: %v", e.ID, e.Err)
}

func (e *CorruptRecordError) Unwrap() error {
	return e.Err
}

// IsCorrupt reports whether err is or wraps a CorruptRecordError.
func IsCorrupt(err error) bool {
	var corrupt *CorruptRecordError
	return errors.As(err, &corrupt)
}

// IsValidation reports whether err came from rejected caller input,
// including an illegal status transition.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr) || errors.Is(err, bracket.ErrInvalidTransition)
}
