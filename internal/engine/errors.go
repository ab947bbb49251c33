package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel errors for engine operations.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidState = errors.New("invalid state")
	ErrSinkFailure  = errors.New("sink failure")
)

// SinkFailure describes a persistence notification that could not be delivered.
// It is only surfaced through diagnostics, never as the result of a session operation.
type SinkFailure struct {
	Op        Op
	SessionID uuid.UUID
	Err       error
}

func (f *SinkFailure) Error() string {
	return fmt.Sprintf("%s for session %s: %v", f.Op, f.SessionID, f.Err)
}

// Unwrap exposes both ErrSinkFailure and the underlying sink error to errors.Is.
func (f *SinkFailure) Unwrap() []error {
	return []error{ErrSinkFailure, f.Err}
}
