package engine

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownVariant = errors.New("unknown variant")
	ErrHandStarted    = errors.New("hand already started")
	ErrSeatTaken      = errors.New("seat taken")
	ErrTableFull      = errors.New("table full")
	ErrUnknownPlayer  = errors.New("unknown player")
)

// RejectionError is returned in Result.Err when an action or transition is
// not legal in the current state. The engine state is left untouched.
type RejectionError struct {
	Seat   int
	Action ActionType
	Phase  Phase
	Reason string
}

func (e *RejectionError) Error() string {
	if e.Action == "" {
		return fmt.Sprintf("transition to %s rejected: %s", e.Phase, e.Reason)
	}
	return fmt.Sprintf("seat %d %s rejected during %s: %s", e.Seat, e.Action, e.Phase, e.Reason)
}
