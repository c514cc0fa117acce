// AngelaMos | 2026
// errors.go

package submission

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyContent = errors.New("content is empty")
	ErrTooShort     = errors.New("content is too short")
	ErrTooLong      = errors.New("content is too long")
	ErrInvalidField = errors.New("invalid field")
	ErrInFlight     = errors.New("submission already in flight")
)

// ValidationError is a local, pre-network rejection.
type ValidationError struct {
	Field  string
	Err    error
	Length int
	Limit  int
	Detail string
}

func (e *ValidationError) Error() string {
	switch {
	case errors.Is(e.Err, ErrTooShort):
		return fmt.Sprintf("%s: %v (%d < %d)", e.Field, e.Err, e.Length, e.Limit)
	case errors.Is(e.Err, ErrTooLong):
		return fmt.Sprintf("%s: %v (%d > %d)", e.Field, e.Err, e.Length, e.Limit)
	case e.Detail != "":
		return fmt.Sprintf("%s: %v: %s", e.Field, e.Err, e.Detail)
	default:
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ReconcileError reports that the write succeeded but the follow-up fetch
// did not. The form has already been cleared.
type ReconcileError struct {
	DoubtID string
	Err     error
}

func (e *ReconcileError) Error() string {
	return fmt.Sprintf("submitted, but refreshing %s failed: %v", e.DoubtID, e.Err)
}

func (e *ReconcileError) Unwrap() error {
	return e.Err
}
