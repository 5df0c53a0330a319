package relay

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyJoined = errors.New("connection already joined a room")
	ErrNotJoined     = errors.New("connection has not joined a room")
	ErrUnknownEvent  = errors.New("unknown event type")
	ErrInvalidEvent  = errors.New("invalid event")
	ErrUnknownConn   = errors.New("unknown connection")
	ErrHubStopped    = errors.New("hub stopped")
)

// EventError records which inbound event a router operation rejected.
type EventError struct {
	Op   string
	Type string
	Err  error
}

func (e *EventError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s %q: %v", e.Op, e.Type, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *EventError) Unwrap() error {
	return e.Err
}

func newEventError(op, kind string, err error) *EventError {
	return &EventError{Op: op, Type: kind, Err: err}
}
