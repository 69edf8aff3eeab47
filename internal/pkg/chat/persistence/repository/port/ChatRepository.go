package repository

import (
	"context"
	"time"

	chat "minglemart/internal/pkg/chat/application/domain"
)

// ChatRepository defines the durable-store operations the messaging slice
// consumes. The server exclusively owns these records; clients only hold
// disposable copies reconciled from broadcasts.
type ChatRepository interface {
	CreateConversation(ctx context.Context, c chat.Conversation) (string, error)
	AddParticipant(ctx context.Context, p chat.Participant) error
	IsParticipant(ctx context.Context, conversationID string, userID string) (bool, error)
	ListParticipantIDs(ctx context.Context, conversationID string) ([]string, error)
	ConversationExists(ctx context.Context, conversationID string) (bool, error)

	// SaveMessage persists the message and returns the server-assigned id.
	SaveMessage(ctx context.Context, m chat.Message) (string, error)
	// GetMessagesByConversation returns messages newest-first, reactions
	// attached, honoring limit/offset.
	GetMessagesByConversation(ctx context.Context, conversationID string, limit int, offset int) ([]chat.Message, error)
	// GetMessage returns the message or chat.ErrNotFound.
	GetMessage(ctx context.Context, messageID string) (*chat.Message, error)
	// TouchConversation bumps the conversation's last-activity timestamp.
	TouchConversation(ctx context.Context, conversationID string, at time.Time) error

	// ToggleReaction inserts the (message, user, emoji) row if absent and
	// deletes it if present, reporting whether the row now exists.
	ToggleReaction(ctx context.Context, r chat.Reaction) (added bool, err error)
	// ListReactionsForMessage returns the full current reaction list with
	// public user fields attached.
	ListReactionsForMessage(ctx context.Context, messageID string) ([]chat.Reaction, error)

	// GetUser resolves public identity fields, or chat.ErrNotFound.
	GetUser(ctx context.Context, userID string) (*chat.User, error)

	// SaveNotification records an unread-message notification; duplicate
	// (user, message) pairs are ignored so the task handler stays idempotent.
	SaveNotification(ctx context.Context, userID string, conversationID string, messageID string) error
}
