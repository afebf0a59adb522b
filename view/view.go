// Package view is the boundary consumed by presentation code: a grouped,
// read-only projection of the live log, a send operation, and a stream of
// non-fatal notices.
package view

import (
	"context"
	"time"

	"chat-client/contract"
	"chat-client/domain"
	"chat-client/domain/event"
	"chat-client/projection"
	"chat-client/session"
)

const noticeBuffer = 16

// Notice reports a failed send. The message was not logged; the user may
// retry. Nothing stronger than a notice ever crosses this boundary.
type Notice struct {
	Text string
	Err  error
	At   time.Time
}

// Ensure *ChatView implements the contract.EventSink interface at compile time.
var _ contract.EventSink = (*ChatView)(nil)

// ChatView subscribes to a session and recomputes its grouped display
// state on demand. It holds no copy of the log and never mutates it.
type ChatView struct {
	session *session.Session
	notices chan Notice
	changes chan struct{}
}

func New(s *session.Session) *ChatView {
	v := &ChatView{
		session: s,
		notices: make(chan Notice, noticeBuffer),
		changes: make(chan struct{}, 1),
	}
	s.Subscribe(v)
	return v
}

// Consume reacts to session events: log growth and state transitions wake
// up the renderer, send failures become notices.
func (v *ChatView) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MessageReceived:
		v.signal()
	case event.StateChanged:
		v.signal()
	case event.SendFailed:
		select {
		case v.notices <- Notice{Text: evt.Text, Err: evt.Err, At: time.Now()}:
		default:
		}
	}
	return nil
}

// GroupedMessages returns the current log collapsed into same-sender runs,
// recomputed from a fresh snapshot on every call.
func (v *ChatView) GroupedMessages() []projection.MessageGroup {
	return projection.GroupBySender(v.session.Snapshot())
}

// Send forwards text to the session. Whitespace-only text is ignored.
func (v *ChatView) Send(text string) error {
	return v.session.Send(text)
}

// Changes signals that the grouped view may be stale. Signals coalesce: a
// slow consumer sees at least one wake-up, not one per event.
func (v *ChatView) Changes() <-chan struct{} {
	return v.changes
}

// Notices yields send-failure notices.
func (v *ChatView) Notices() <-chan Notice {
	return v.notices
}

// State exposes the session's connection state for rendering.
func (v *ChatView) State() domain.ConnectionState {
	return v.session.State()
}

func (v *ChatView) signal() {
	select {
	case v.changes <- struct{}{}:
	default:
	}
}
