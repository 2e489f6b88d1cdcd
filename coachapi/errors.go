package coachapi

import (
	"errors"
	"fmt"
)

// ErrNotLoggedIn is returned by ChatHistory when the server has no session
// for the caller.
var ErrNotLoggedIn = errors.New("no user logged in")

// NetworkError covers transport failures, non-2xx statuses and 2xx bodies
// that carry an "error" field. Error returns the server's message as is.
type NetworkError struct {
	StatusCode int // 0 for transport failures
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	return e.Message
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// InvalidResponseError is a 2xx body that is not JSON or lacks the expected
// field.
type InvalidResponseError struct {
	Action string
	Reason string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid response from server for %s: %s", e.Action, e.Reason)
}

// TranscriptionError wraps any failure of the transcription step.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string {
	return e.Err.Error()
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}
