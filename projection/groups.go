// Package projection derives display views from a session's message log.
// Handles grouping and timestamp labels.
// Does not emit events or interact with UI directly.
package projection

import (
	"time"

	"github.com/samber/lo"

	"chat-client/domain"
)

// MessageGroup is a maximal run of consecutive messages from one sender.
// All messages in a group share Username, and two adjacent groups in a
// grouped sequence never share it.
type MessageGroup struct {
	Username string
	Messages []domain.Message
}

// GroupBySender collapses a flat, arrival-ordered log into contiguous
// same-sender runs. Pure function: no memory between calls, safe to re-run
// on every render. The input slice is never mutated or aliased.
func GroupBySender(messages []domain.Message) []MessageGroup {
	var groups []MessageGroup
	for _, msg := range messages {
		n := len(groups)
		if n > 0 && groups[n-1].Username == msg.SenderUsername {
			groups[n-1].Messages = append(groups[n-1].Messages, msg)
			continue
		}
		groups = append(groups, MessageGroup{
			Username: msg.SenderUsername,
			Messages: []domain.Message{msg},
		})
	}
	return groups
}

// Flatten restores the arrival-ordered message sequence from its groups.
func Flatten(groups []MessageGroup) []domain.Message {
	return lo.FlatMap(groups, func(g MessageGroup, _ int) []domain.Message {
		return g.Messages
	})
}

// CountBySender returns the number of logged messages per sender username.
func CountBySender(messages []domain.Message) map[string]int {
	return lo.CountValuesBy(messages, func(m domain.Message) string {
		return m.SenderUsername
	})
}

// Label is the display timestamp of a group, always taken from the group's
// last message.
func (g MessageGroup) Label(now time.Time) string {
	if len(g.Messages) == 0 {
		return ""
	}
	last := g.Messages[len(g.Messages)-1]
	return FormatTimestamp(now, last.Timestamp)
}
