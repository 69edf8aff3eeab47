package usecase

import (
	"context"
	"fmt"
	"log"

	chat "minglemart/internal/pkg/chat/application/domain"
	repository "minglemart/internal/pkg/chat/persistence/repository/port"
)

// SendMessageInput carries the data needed to send a new message. Sender is
// the identity resolved by the authentication collaborator; nil means no
// session.
type SendMessageInput struct {
	ConversationID string
	Sender         *chat.User
	Content        string
}

// SendMessageUseCase persists a message, bumps the conversation's
// last-activity timestamp and publishes the message-created event. The
// confirmed message (server-assigned id and timestamp) is returned to the
// caller directly, independent of the broadcast.
type SendMessageUseCase struct {
	Repo      repository.ChatRepository
	Publisher EventPublisher
}

func NewSendMessageUseCase(repo repository.ChatRepository, pub EventPublisher) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo, Publisher: pub}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*chat.Message, error) {
	if in.Sender == nil {
		return nil, chat.ErrUnauthorized
	}
	if in.ConversationID == "" {
		return nil, chat.ErrInvalidConversation
	}

	exists, err := uc.Repo.ConversationExists(ctx, in.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !exists {
		return nil, chat.ErrNotFound
	}

	isParticipant, err := uc.Repo.IsParticipant(ctx, in.ConversationID, in.Sender.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !isParticipant {
		return nil, chat.ErrNotParticipant
	}

	msg, err := chat.NewMessage(chat.Message{
		ConversationID: in.ConversationID,
		SenderID:       in.Sender.ID,
		Content:        in.Content,
		SenderName:     in.Sender.DisplayName,
		SenderImage:    in.Sender.AvatarURL,
	})
	if err != nil {
		return nil, err
	}

	id, err := uc.Repo.SaveMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	msg.ID = id

	if err := uc.Repo.TouchConversation(ctx, in.ConversationID, msg.CreatedAt); err != nil {
		// The message row is committed; a missed timestamp bump only skews
		// conversation ordering, so the send still succeeds.
		log.Printf("send message: touch conversation %s: %v", in.ConversationID, err)
	}

	if uc.Publisher != nil {
		participants, err := uc.Repo.ListParticipantIDs(ctx, in.ConversationID)
		if err != nil {
			log.Printf("send message: list participants %s: %v", in.ConversationID, err)
			participants = nil
		}
		uc.Publisher.PublishMessageCreated(ctx, in.ConversationID, *msg, participants)
	}

	return msg, nil
}
