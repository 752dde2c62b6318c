package ansi

import (
	"errors"
	"fmt"
)

// Errors returned by the ansi package.
var (
	// ErrNilRequest is returned when a nil request is scheduled.
	ErrNilRequest = errors.New("nil request")

	// ErrNoTerminator is returned for a request without a terminator.
	ErrNoTerminator = errors.New("request has no terminator")

	// ErrNoSend is returned for a request without a Send action.
	ErrNoSend = errors.New("request has no send action")

	// ErrMalformedResponse indicates a reply could not be decoded.
	ErrMalformedResponse = errors.New("malformed response")
)

// SendError wraps an error returned by a request's Send action.
// Scheduler bookkeeping for the request is already committed when it is
// returned.
type SendError struct {
	RequestID  string
	Terminator string
	Err        error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send request %s (terminator %q): %v", e.RequestID, e.Terminator, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}
