package speech

import (
	"errors"
	"fmt"
)

// Common coordination errors.
var (
	// ErrClosed indicates the coordinator has been shut down.
	ErrClosed = errors.New("speech coordinator is closed")

	// ErrNoSession indicates a previous speak failed and left the
	// coordinator without a valid session. The caller should retry by
	// calling Speak again.
	ErrNoSession = errors.New("no active synthesis session")
)

// EngineError wraps a failed platform TTS call with the operation that
// caused it. During steady state it is a recoverable failure surfaced
// to the caller; at startup a failed engine is fatal.
type EngineError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("speech engine: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *EngineError) Unwrap() error {
	return e.Err
}

func engineErr(op string, err error) error {
	return &EngineError{Op: op, Err: err}
}

// IsEngineError reports whether err originated from a platform TTS
// call.
func IsEngineError(err error) bool {
	var ee *EngineError
	return errors.As(err, &ee)
}
