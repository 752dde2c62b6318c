package ansi

import (
	"fmt"

	"github.com/google/uuid"
)

// Request is an outbound escape-sequence query.
type Request struct {
	// ID identifies the request in logs.
	ID string

	// Payload is the escape sequence Send transmits. The scheduler does
	// not read it.
	Payload []byte

	// Terminator is the trailing text of the expected reply.
	Terminator string

	// OnResponse receives the complete reply sequence.
	OnResponse func(resp string)

	// OnAbandoned, if set, is called when the request is evicted as stale
	// before a reply arrived.
	OnAbandoned func()

	// Send transmits the payload. It is called at most once, after the
	// request has been registered as outstanding.
	Send func() error
}

// NewRequest creates a request with a fresh ID.
func NewRequest(terminator string, onResponse func(string), send func() error) *Request {
	return &Request{
		ID:         uuid.NewString(),
		Terminator: terminator,
		OnResponse: onResponse,
		Send:       send,
	}
}

func (r *Request) validate() error {
	switch {
	case r == nil:
		return ErrNilRequest
	case r.Terminator == "":
		return ErrNoTerminator
	case r.Send == nil:
		return ErrNoSend
	}
	return nil
}

// String describes the request for diagnostics.
func (r *Request) String() string {
	return fmt.Sprintf("request %s %q", r.ID, r.Terminator)
}
