package handhistory

import "fmt"

// DecodeError reports malformed encoded input.
type DecodeError struct {
	Offset int    // byte offset where decoding stopped
	Field  string // logical field being read
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("decode hand history: %s at byte %d: %s", e.Field, e.Offset, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ValidationError reports a structurally inconsistent HandHistory.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid hand history: %s: %s", e.Field, e.Reason)
}
