package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chat-client/errors"
)

const (
	handshakeTimeout = 10 * time.Second
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingInterval     = pongWait * 9 / 10
	readLimit        = 64 * 1024
	frameBuffer      = 64
)

// Ensure *WebSocket implements the Transport interface at compile time.
var _ Transport = (*WebSocket)(nil)

// WebSocket is the gorilla/websocket implementation of Transport. One value
// manages at most one live connection; the identity travels as query
// parameters of the dial URL.
type WebSocket struct {
	endpoint string
	dialer   *websocket.Dialer
	log      *slog.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewWebSocket(endpoint string, log *slog.Logger) *WebSocket {
	return &WebSocket{
		endpoint: endpoint,
		dialer:   &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		log:      log,
	}
}

// Connect dials the chat endpoint. The returned channel is closed when the
// connection dies; the caller decides whether to redial.
func (w *WebSocket) Connect(ctx context.Context, identity Identity) (<-chan InboundFrame, error) {
	u, err := url.Parse(w.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid chat endpoint %q: %w", w.endpoint, err)
	}
	q := u.Query()
	q.Set("userId", identity.UserID)
	q.Set("otherUserId", identity.OtherUserID)
	q.Set("username", identity.Username)
	u.RawQuery = q.Encode()

	conn, _, err := w.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.Host, err)
	}

	w.mu.Lock()
	if w.conn != nil {
		_ = w.conn.Close()
	}
	w.conn = conn
	w.mu.Unlock()

	frames := make(chan InboundFrame, frameBuffer)
	go w.readPump(ctx, conn, frames)
	go w.pinger(ctx, conn)
	return frames, nil
}

// readPump delivers frames until the connection errors out, then closes the
// channel. A frame that fails to parse is dropped, not fatal.
func (w *WebSocket) readPump(ctx context.Context, conn *websocket.Conn, frames chan<- InboundFrame) {
	defer close(frames)

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				w.log.Debug("Connection read ended", "err", err)
			}
			return
		}

		var frame InboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			w.log.Warn("Dropping malformed frame", "err", err)
			continue
		}

		select {
		case frames <- frame:
		case <-ctx.Done():
			return
		}
	}
}

// pinger keeps the connection alive through firewalls and NATs that
// invalidate idle streams. WriteControl is safe to call concurrently with
// the frame writer.
func (w *WebSocket) pinger(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(writeWait)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

func (w *WebSocket) Send(_ context.Context, frame OutboundFrame) error {
	w.mu.Lock()
	conn := w.conn
	w.mu.Unlock()

	if conn == nil {
		return errors.ErrNotConnected
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Close tears down the live connection, announcing a normal closure first.
// Safe to call twice.
func (w *WebSocket) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil {
		return nil
	}
	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = w.conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(time.Second))
	err := w.conn.Close()
	w.conn = nil
	return err
}
