// Package domain contains core concepts of the chat client.
// This file defines Message values and related rules.
// Messages are immutable once appended to a session log.
package domain

// Message is one chat message as carried in a session log. Text holds the
// decoded payload; the encoded wire form is never stored here.
type Message struct {
	Text           string
	FromUserID     string
	ToUserID       string
	SenderUsername string
	// Timestamp is epoch milliseconds, assigned by the sender at send time.
	// It is display metadata only: log order is arrival order, because
	// sender clocks are not comparable.
	Timestamp int64
}
