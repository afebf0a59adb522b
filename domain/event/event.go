// Package event defines the domain events a session emits to its sinks.
package event

import (
	"chat-client/domain"
)

// DomainEvent is anything a session can notify its subscribers about.
type DomainEvent interface {
	SessionID() string
}

// MessageReceived is emitted after an inbound message has been decoded and
// appended to the session log.
type MessageReceived struct {
	Session string
	Message domain.Message
}

func (e MessageReceived) SessionID() string {
	return e.Session
}

// StateChanged is emitted on every connection lifecycle transition.
type StateChanged struct {
	Session  string
	Previous domain.ConnectionState
	Current  domain.ConnectionState
}

func (e StateChanged) SessionID() string {
	return e.Session
}

// SendFailed is emitted when an outbound transmission failed. The message
// was not added to the log; the caller may retry.
type SendFailed struct {
	Session string
	Text    string
	Err     error
}

func (e SendFailed) SessionID() string {
	return e.Session
}
