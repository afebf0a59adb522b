// Package session owns the live state of one open chat: the connection,
// the send queue, and the append-only message log. One session is one
// logical actor; inbound frames and outbound sends are serialized through
// its Run loop.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"chat-client/codec"
	"chat-client/contract"
	"chat-client/domain"
	"chat-client/domain/event"
	"chat-client/errors"
	"chat-client/transport"
)

// sendQueueSize bounds how many sends may wait for the transport. Sends
// issued while the connection is still opening sit here until flushed.
const sendQueueSize = 256

// Ensure *Session implements the contract.Worker interface at compile time.
var _ contract.Worker = (*Session)(nil)

type Session struct {
	id            uuid.UUID
	identity      transport.Identity
	trans         transport.Transport
	log           *slog.Logger
	reconnectWait time.Duration
	sinkTimeout   time.Duration

	mu       sync.Mutex
	state    domain.ConnectionState
	messages []domain.Message
	sinks    []contract.EventSink

	sendReq   chan string
	done      chan struct{}
	closeOnce sync.Once

	// now is the clock used to stamp outbound messages.
	now func() time.Time
}

func New(log *slog.Logger, trans transport.Transport, identity transport.Identity,
	reconnectWait, sinkTimeout time.Duration) *Session {
	return &Session{
		id:            uuid.New(),
		identity:      identity,
		trans:         trans,
		log:           log,
		reconnectWait: reconnectWait,
		sinkTimeout:   sinkTimeout,
		state:         domain.Disconnected,
		sendReq:       make(chan string, sendQueueSize),
		done:          make(chan struct{}),
		now:           time.Now,
	}
}

// ID is the session's correlation identifier, carried on every event.
func (s *Session) ID() string {
	return s.id.String()
}

// Key is the unordered participant pair this session belongs to.
func (s *Session) Key() domain.ChatKey {
	return domain.NewChatKey(s.identity.UserID, s.identity.OtherUserID)
}

// Subscribe registers a sink for session events. Register before Run to
// observe the full lifecycle.
func (s *Session) Subscribe(sink contract.EventSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, sink)
}

// State returns the current lifecycle state.
func (s *Session) State() domain.ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a copy of the log in arrival order. Callers may keep or
// mutate it freely; the session's own log is never shared.
func (s *Session) Snapshot() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Send queues text for transmission. Whitespace-only text is a silent
// no-op. The call never waits for the network: the message shows up in the
// log only when the backend relays it back. A transmission failure surfaces
// later as a SendFailed event, never as an error here.
func (s *Session) Send(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if s.State() == domain.Closed {
		return errors.ErrSessionClosed
	}

	select {
	case s.sendReq <- text:
	default:
		s.log.Warn("Send queue full, dropping message", "session", s.id)
		s.fanout(context.Background(), event.SendFailed{
			Session: s.id.String(),
			Text:    text,
			Err:     errors.ErrSendFailure,
		})
	}
	return nil
}

// Run drives the connection state machine until the context is canceled or
// Close is called. Connection errors are absorbed: the session redials
// after reconnectWait and the log accumulated so far is preserved.
func (s *Session) Run(ctx context.Context) error {
	defer s.teardown()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.done:
			return nil
		default:
		}

		frames, err := s.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.Warn("Connect failed, retrying", "session", s.id, "err", err)
			if !s.sleep(ctx, s.reconnectWait) {
				return nil
			}
			continue
		}

		s.transition(ctx, domain.Authenticated)
		s.transition(ctx, domain.Receiving)

		if s.receive(ctx, frames) {
			return nil
		}

		// Transport dropped mid-session. Keep the log, go around again.
		s.log.Warn("Connection lost, reconnecting", "session", s.id)
		if !s.sleep(ctx, s.reconnectWait) {
			return nil
		}
	}
}

// Close disposes the session: terminal state, transport closed, pending
// connect attempts abandoned. Idempotent.
func (s *Session) Close() error {
	s.teardown()
	return nil
}

func (s *Session) teardown() {
	s.closeOnce.Do(func() {
		s.transition(context.Background(), domain.Closed)
		close(s.done)
		if err := s.trans.Close(); err != nil {
			s.log.Debug("Transport close", "session", s.id, "err", err)
		}
	})
}

func (s *Session) connect(ctx context.Context) (<-chan transport.InboundFrame, error) {
	s.transition(ctx, domain.Connecting)
	return s.trans.Connect(ctx, s.identity)
}

// receive is the steady-state loop: inbound frames are appended in arrival
// order, queued sends are transmitted in submission order. Returns true
// when the session is done for good, false on a connection drop.
func (s *Session) receive(ctx context.Context, frames <-chan transport.InboundFrame) bool {
	for {
		select {
		case <-ctx.Done():
			return true
		case <-s.done:
			return true
		case text := <-s.sendReq:
			s.transmit(ctx, text)
		case frame, ok := <-frames:
			if !ok {
				return false
			}
			s.appendInbound(ctx, frame)
		}
	}
}

func (s *Session) transmit(ctx context.Context, text string) {
	frame := transport.OutboundFrame{
		Message:   codec.Encode(text),
		From:      s.identity.UserID,
		To:        s.identity.OtherUserID,
		Username:  s.identity.Username,
		Timestamp: s.now().UnixMilli(),
	}
	if err := s.trans.Send(ctx, frame); err != nil {
		s.log.Warn("Send failed", "session", s.id, "err", err)
		s.fanout(ctx, event.SendFailed{Session: s.id.String(), Text: text, Err: err})
	}
}

func (s *Session) appendInbound(ctx context.Context, frame transport.InboundFrame) {
	msg := s.toMessage(frame)

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()

	s.fanout(ctx, event.MessageReceived{Session: s.id.String(), Message: msg})
}

// toMessage decodes a frame into a Message. The sender username decides
// which of the two participants the message belongs to.
func (s *Session) toMessage(frame transport.InboundFrame) domain.Message {
	from, to := s.identity.OtherUserID, s.identity.UserID
	if frame.SenderUsername == s.identity.Username {
		from, to = s.identity.UserID, s.identity.OtherUserID
	}
	return domain.Message{
		Text:           codec.Decode(frame.Msg.Message),
		FromUserID:     from,
		ToUserID:       to,
		SenderUsername: frame.SenderUsername,
		Timestamp:      frame.Msg.Timestamp,
	}
}

func (s *Session) transition(ctx context.Context, to domain.ConnectionState) {
	s.mu.Lock()
	from := s.state
	if from == to || from == domain.Closed {
		s.mu.Unlock()
		return
	}
	s.state = to
	s.mu.Unlock()

	s.log.Debug("Session state changed", "session", s.id, "from", from, "to", to)
	s.fanout(ctx, event.StateChanged{Session: s.id.String(), Previous: from, Current: to})
}

func (s *Session) fanout(ctx context.Context, evt event.DomainEvent) {
	s.mu.Lock()
	sinks := make([]contract.EventSink, len(s.sinks))
	copy(sinks, s.sinks)
	s.mu.Unlock()

	for _, sink := range sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, s.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			s.log.Warn("Sink rejected event", "session", s.id, "err", err)
		}
		cancel()
	}
}

// sleep waits for the reconnect delay, abandoning the wait on teardown.
func (s *Session) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-s.done:
		return false
	case <-time.After(d):
		return true
	}
}
