package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chat-client/domain"
)

func msg(sender, text string, ts int64) domain.Message {
	return domain.Message{
		Text:           text,
		SenderUsername: sender,
		Timestamp:      ts,
	}
}

func TestGroupBySender_EmptyInput(t *testing.T) {
	require.Empty(t, GroupBySender(nil))
	require.Empty(t, GroupBySender([]domain.Message{}))
}

func TestGroupBySender_SingleMessage(t *testing.T) {
	groups := GroupBySender([]domain.Message{msg("alice", "hi", 1)})

	require.Len(t, groups, 1)
	require.Equal(t, "alice", groups[0].Username)
	require.Len(t, groups[0].Messages, 1)
}

func TestGroupBySender_RunsBrokenBySenderChange(t *testing.T) {
	log := []domain.Message{
		msg("alice", "one", 1),
		msg("alice", "two", 2),
		msg("alice", "three", 3),
		msg("bob", "hey", 4),
		msg("alice", "four", 5),
		msg("alice", "five", 6),
	}

	groups := GroupBySender(log)

	require.Len(t, groups, 3)
	require.Equal(t, "alice", groups[0].Username)
	require.Len(t, groups[0].Messages, 3)
	require.Equal(t, "bob", groups[1].Username)
	require.Len(t, groups[1].Messages, 1)
	require.Equal(t, "alice", groups[2].Username)
	require.Len(t, groups[2].Messages, 2)
}

func TestGroupBySender_LosslessAndOrderPreserving(t *testing.T) {
	log := []domain.Message{
		msg("alice", "a", 1),
		msg("bob", "b", 2),
		msg("bob", "c", 3),
		msg("clara", "d", 4),
		msg("alice", "e", 5),
	}

	groups := GroupBySender(log)

	// Concatenated groups equal the original sequence.
	require.Equal(t, log, Flatten(groups))

	// No two adjacent groups share a username.
	for i := 1; i < len(groups); i++ {
		require.NotEqual(t, groups[i-1].Username, groups[i].Username)
	}
}

func TestGroupBySender_DoesNotAliasInput(t *testing.T) {
	log := []domain.Message{
		msg("alice", "a", 1),
		msg("alice", "b", 2),
	}

	groups := GroupBySender(log)
	groups[0].Messages[0].Text = "mutated"

	require.Equal(t, "a", log[0].Text)
}

func TestCountBySender(t *testing.T) {
	log := []domain.Message{
		msg("alice", "a", 1),
		msg("bob", "b", 2),
		msg("alice", "c", 3),
	}

	require.Equal(t, map[string]int{"alice": 2, "bob": 1}, CountBySender(log))
}

func TestMessageGroup_LabelUsesLastMessage(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	now := time.Date(2026, 8, 29, 14, 0, 0, 0, loc)

	first := now.Add(-3 * time.Hour).UnixMilli()
	last := now.Add(-2 * time.Hour).UnixMilli()
	group := MessageGroup{
		Username: "alice",
		Messages: []domain.Message{msg("alice", "a", first), msg("alice", "b", last)},
	}

	require.Equal(t, "12:00", group.Label(now))
}
