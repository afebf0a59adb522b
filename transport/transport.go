//go:generate go run go.uber.org/mock/mockgen -source=transport.go -destination=../mocks/mock_transport.go -package=mocks
// Package transport carries chat frames over a bidirectional connection.
package transport

import (
	"context"
)

// Identity is the connection-scoped metadata presented at connect time.
// The backend uses it to route and authorize the session. It is an
// identity, not a credential: no secret-based authentication happens here.
type Identity struct {
	UserID      string
	OtherUserID string
	Username    string
}

// Transport is one bidirectional, message-oriented connection to the chat
// endpoint.
//
// Connect returns a channel yielding inbound frames in the exact order the
// wire delivers them; the channel is closed when the connection dies.
// Calling Connect again after a drop replaces the previous connection.
type Transport interface {
	Connect(ctx context.Context, identity Identity) (<-chan InboundFrame, error)
	Send(ctx context.Context, frame OutboundFrame) error
	Close() error
}
