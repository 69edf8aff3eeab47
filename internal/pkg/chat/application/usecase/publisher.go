package usecase

import (
	"context"

	chat "minglemart/internal/pkg/chat/application/domain"
)

// EventPublisher is the post-commit broadcast surface the mutation use cases
// call. Implementations must never fail the mutation: by the time these run
// the durable write has already committed.
type EventPublisher interface {
	PublishMessageCreated(ctx context.Context, conversationID string, msg chat.Message, participantIDs []string)
	PublishReactionUpdate(conversationID string, messageID string, reactions []chat.Reaction)
}
