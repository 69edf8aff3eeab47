package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewMessageTrimsAndStampsTime(t *testing.T) {
	msg, err := NewMessage(Message{
		ConversationID: "conv-1",
		SenderID:       "user-1",
		Content:        "  hello there  ",
	})

	require.NoError(t, err)
	require.Equal(t, "hello there", msg.Content)
	require.False(t, msg.CreatedAt.IsZero())
	require.Equal(t, time.UTC, msg.CreatedAt.Location())
}

func TestNewMessageKeepsExplicitTimestamp(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	msg, err := NewMessage(Message{
		ConversationID: "conv-1",
		SenderID:       "user-1",
		Content:        "pi day",
		CreatedAt:      at,
	})

	require.NoError(t, err)
	require.Equal(t, at, msg.CreatedAt)
}

func TestNewMessageRejectsBlankContent(t *testing.T) {
	_, err := NewMessage(Message{ConversationID: "conv-1", SenderID: "user-1", Content: "   \n\t "})
	require.ErrorIs(t, err, ErrEmptyContent)
}

func TestNewMessageRejectsOversizedContent(t *testing.T) {
	_, err := NewMessage(Message{
		ConversationID: "conv-1",
		SenderID:       "user-1",
		Content:        strings.Repeat("x", maxContentLength+1),
	})
	require.ErrorIs(t, err, ErrContentTooLong)
}

func TestNewMessageRequiresConversationAndSender(t *testing.T) {
	_, err := NewMessage(Message{SenderID: "user-1", Content: "hi"})
	require.ErrorIs(t, err, ErrInvalidConversation)

	_, err = NewMessage(Message{ConversationID: "conv-1", Content: "hi"})
	require.ErrorIs(t, err, ErrInvalidConversation)
}
