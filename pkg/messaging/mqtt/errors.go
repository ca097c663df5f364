package mqtt

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectRetriesExhausted is returned by Manager.Run when the initial
	// connect failed on every attempt.
	ErrConnectRetriesExhausted = errors.New("mqtt connect retries exhausted")

	// ErrSkipMessage marks a message that was deliberately not processed.
	// The manager logs it at info level.
	ErrSkipMessage = errors.New("skip message")
)

// PanicError wraps a panic recovered from a Handler.
type PanicError struct {
	Panic any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Panic)
}
