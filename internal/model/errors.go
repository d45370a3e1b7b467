package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyApplied    = errors.New("this email has already applied for this position")
	ErrNotDispatched     = errors.New("call has not been dispatched yet")
	ErrNoTranscript      = errors.New("no transcript available for this call")
	ErrInvalidTransition = errors.New("invalid call status transition")
	ErrUnreadablePDF     = errors.New("failed to extract text from PDF")
	ErrAgentNotFound     = errors.New("agent not found")
)

// ValidationError carries a message safe to show the caller.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Invalid returns a ValidationError with a formatted message.
func Invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
