package replay

import "fmt"

// DesyncError means a recorded action names a different seat than the one
// the engine says is to act. The history is corrupt or from an incompatible
// rules version.
type DesyncError struct {
	ActionIndex  int
	ExpectedSeat int // engine's current actor
	GotSeat      int // seat named by the history
}

func (e *DesyncError) Error() string {
	return fmt.Sprintf("replay desync at action %d: expected seat %d to act, history has seat %d",
		e.ActionIndex, e.ExpectedSeat, e.GotSeat)
}

// ValidationError means the engine rejected a recorded action.
type ValidationError struct {
	ActionIndex int
	Err         error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("replay action %d rejected: %v", e.ActionIndex, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ReplayError covers failures that are not about a single action's legality:
// bad input, setup failures, rejected transitions, and recovered panics.
type ReplayError struct {
	ActionIndex int
	Reason      string
	Message     string
	Err         error
}

const (
	ReasonBadInput         = "bad_input"
	ReasonEngineInit       = "engine_init_failed"
	ReasonSeatInit         = "seat_init_failed"
	ReasonTransitionFailed = "transition_failed"
	ReasonPanic            = "panic"
)

func (e *ReplayError) Error() string {
	return fmt.Sprintf("replay error(action=%d reason=%s): %s", e.ActionIndex, e.Reason, e.Message)
}

func (e *ReplayError) Unwrap() error {
	return e.Err
}
