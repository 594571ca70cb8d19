package core

import (
	"context"
	"errors"
	"fmt"
)

// Capability labels used in CapabilityError.
const (
	CapabilityCompletion = "completion"
	CapabilityTool       = "tool"
	CapabilityStore      = "store"
)

// CapabilityError wraps a failure of an external capability (completion,
// tool, store). It is the only error kind that crosses component boundaries;
// the engine converts it into a well-formed TurnResult before it can reach a
// caller.
type CapabilityError struct {
	Capability string
	Err        error
}

// Error implements the error interface.
func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s capability failed: %v", e.Capability, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *CapabilityError) Unwrap() error { return e.Err }

// NewCapabilityError wraps err with its capability label.
func NewCapabilityError(capability string, err error) *CapabilityError {
	return &CapabilityError{Capability: capability, Err: err}
}

// IsTimeout reports whether err was caused by a per-call deadline. Timeouts
// are degraded-but-retryable, not hard failures.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
