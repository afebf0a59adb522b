package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chat-client/codec"
	"chat-client/domain"
	"chat-client/domain/event"
	"chat-client/errors"
	"chat-client/mocks"
	"chat-client/transport"
)

// fakeTransport is an in-memory Transport. Each Connect hands out a fresh
// frame channel, like a real connection would.
type fakeTransport struct {
	mu        sync.Mutex
	frames    chan transport.InboundFrame
	sent      []transport.OutboundFrame
	dials     int
	failDials int
	sendErr   error
}

func (f *fakeTransport) Connect(_ context.Context, _ transport.Identity) (<-chan transport.InboundFrame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dials++
	if f.dials <= f.failDials {
		return nil, fmt.Errorf("dial refused")
	}
	f.frames = make(chan transport.InboundFrame, 16)
	return f.frames, nil
}

func (f *fakeTransport) Send(_ context.Context, frame transport.OutboundFrame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, frame)
	return nil
}

func (f *fakeTransport) Close() error {
	return nil
}

func (f *fakeTransport) emit(frame transport.InboundFrame) {
	f.mu.Lock()
	ch := f.frames
	f.mu.Unlock()
	ch <- frame
}

// drop simulates the connection dying: the current frame channel closes.
func (f *fakeTransport) drop() {
	f.mu.Lock()
	ch := f.frames
	f.mu.Unlock()
	close(ch)
}

func (f *fakeTransport) sentFrames() []transport.OutboundFrame {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]transport.OutboundFrame, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *fakeTransport) dialCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dials
}

func inbound(sender, text string, ts int64) transport.InboundFrame {
	return transport.InboundFrame{
		Msg:            transport.InboundBody{Message: codec.Encode(text), Timestamp: ts},
		SenderUsername: sender,
	}
}

var testIdentity = transport.Identity{UserID: "u1", OtherUserID: "u2", Username: "alice"}

func newTestSession(trans transport.Transport) *Session {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return New(log, trans, testIdentity, 10*time.Millisecond, 100*time.Millisecond)
}

func startSession(t *testing.T, s *Session) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Error("session Run never returned")
		}
	})
}

func TestSession_InboundAppendedInArrivalOrder(t *testing.T) {
	trans := &fakeTransport{}
	s := newTestSession(trans)
	startSession(t, s)

	require.Eventually(t, func() bool { return s.State() == domain.Receiving },
		time.Second, 5*time.Millisecond)

	// Timestamps arrive out of order on purpose: arrival order wins.
	trans.emit(inbound("bob", "first", 200))
	trans.emit(inbound("alice", "second", 100))
	trans.emit(inbound("bob", "third 😀", 300))

	require.Eventually(t, func() bool { return len(s.Snapshot()) == 3 },
		time.Second, 5*time.Millisecond)

	msgs := s.Snapshot()
	require.Equal(t, "first", msgs[0].Text)
	require.Equal(t, "second", msgs[1].Text)
	require.Equal(t, "third 😀", msgs[2].Text)

	// bob is the other participant, alice is local.
	require.Equal(t, "u2", msgs[0].FromUserID)
	require.Equal(t, "u1", msgs[0].ToUserID)
	require.Equal(t, "u1", msgs[1].FromUserID)
	require.Equal(t, "u2", msgs[1].ToUserID)
	require.EqualValues(t, 200, msgs[0].Timestamp)
}

func TestSession_SendEncodesAndStamps(t *testing.T) {
	trans := &fakeTransport{}
	s := newTestSession(trans)
	fixed := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	startSession(t, s)

	require.NoError(t, s.Send("  hola 😀  "))

	require.Eventually(t, func() bool { return len(trans.sentFrames()) == 1 },
		time.Second, 5*time.Millisecond)

	frame := trans.sentFrames()[0]
	require.Equal(t, "hola 😀", codec.Decode(frame.Message))
	require.NotEqual(t, "hola 😀", frame.Message)
	require.Equal(t, "u1", frame.From)
	require.Equal(t, "u2", frame.To)
	require.Equal(t, "alice", frame.Username)
	require.Equal(t, fixed.UnixMilli(), frame.Timestamp)

	// No optimistic local insert: the log stays empty until the backend
	// relays the message back.
	require.Empty(t, s.Snapshot())
}

func TestSession_EmptySendIsSilentNoop(t *testing.T) {
	trans := &fakeTransport{}
	s := newTestSession(trans)
	startSession(t, s)

	require.NoError(t, s.Send(""))
	require.NoError(t, s.Send("   "))
	require.NoError(t, s.Send("\n\t"))
	require.NoError(t, s.Send("real"))

	require.Eventually(t, func() bool { return len(trans.sentFrames()) == 1 },
		time.Second, 5*time.Millisecond)
	require.Equal(t, "real", codec.Decode(trans.sentFrames()[0].Message))
	require.Empty(t, s.Snapshot())
}

func TestSession_SendsQueuedWhileConnectingAreFlushed(t *testing.T) {
	trans := &fakeTransport{failDials: 2}
	s := newTestSession(trans)

	// Queued before Run even starts: never dropped.
	require.NoError(t, s.Send("one"))
	require.NoError(t, s.Send("two"))

	startSession(t, s)

	require.Eventually(t, func() bool { return len(trans.sentFrames()) == 2 },
		time.Second, 5*time.Millisecond)

	frames := trans.sentFrames()
	require.Equal(t, "one", codec.Decode(frames[0].Message))
	require.Equal(t, "two", codec.Decode(frames[1].Message))
	require.GreaterOrEqual(t, trans.dialCount(), 3)
}

func TestSession_ReconnectPreservesLog(t *testing.T) {
	trans := &fakeTransport{}
	s := newTestSession(trans)
	startSession(t, s)

	require.Eventually(t, func() bool { return s.State() == domain.Receiving },
		time.Second, 5*time.Millisecond)

	trans.emit(inbound("bob", "before-1", 1))
	trans.emit(inbound("bob", "before-2", 2))
	require.Eventually(t, func() bool { return len(s.Snapshot()) == 2 },
		time.Second, 5*time.Millisecond)

	trans.drop()

	require.Eventually(t, func() bool { return trans.dialCount() == 2 },
		time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return s.State() == domain.Receiving },
		time.Second, 5*time.Millisecond)

	trans.emit(inbound("alice", "after", 3))

	require.Eventually(t, func() bool { return len(s.Snapshot()) == 3 },
		time.Second, 5*time.Millisecond)

	// Reconnecting introduced no duplicates.
	msgs := s.Snapshot()
	require.Equal(t, "before-1", msgs[0].Text)
	require.Equal(t, "before-2", msgs[1].Text)
	require.Equal(t, "after", msgs[2].Text)
}

func TestSession_SendFailureSurfacesAsEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	trans := &fakeTransport{sendErr: fmt.Errorf("pipe broken")}
	s := newTestSession(trans)

	failed := make(chan event.SendFailed, 1)
	sink := mocks.NewMockEventSink(ctrl)
	sink.EXPECT().
		Consume(gomock.Any(), gomock.AssignableToTypeOf(event.StateChanged{})).
		Return(nil).
		AnyTimes()
	sink.EXPECT().
		Consume(gomock.Any(), gomock.AssignableToTypeOf(event.SendFailed{})).
		DoAndReturn(func(_ context.Context, e event.DomainEvent) error {
			failed <- e.(event.SendFailed)
			return nil
		}).
		Times(1)
	s.Subscribe(sink)

	startSession(t, s)
	require.NoError(t, s.Send("boom"))

	select {
	case evt := <-failed:
		require.Equal(t, "boom", evt.Text)
		require.Error(t, evt.Err)
	case <-time.After(time.Second):
		t.Fatal("SendFailed event never emitted")
	}

	// The failed message never reached the log and the session stays usable.
	require.Empty(t, s.Snapshot())
	require.NotEqual(t, domain.Closed, s.State())
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	trans := &fakeTransport{}
	s := newTestSession(trans)
	startSession(t, s)

	require.Eventually(t, func() bool { return s.State() == domain.Receiving },
		time.Second, 5*time.Millisecond)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	require.Equal(t, domain.Closed, s.State())
	require.ErrorIs(t, s.Send("late"), errors.ErrSessionClosed)
}
