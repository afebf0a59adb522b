// Package domain contains core concepts of the chat client.
// This file defines Participant identities and the chat key invariant.
// No runtime, network, or UI logic should be added here.
package domain

// Participant is one side of a chat.
type Participant struct {
	UserID   string
	Username string
}

// ChatKey identifies a chat by its unordered pair of user IDs. Both sides
// of the same conversation produce the same key.
type ChatKey struct {
	A, B string
}

// NewChatKey normalizes the pair so that (x, y) and (y, x) compare equal.
func NewChatKey(userID, otherUserID string) ChatKey {
	if otherUserID < userID {
		userID, otherUserID = otherUserID, userID
	}
	return ChatKey{A: userID, B: otherUserID}
}
