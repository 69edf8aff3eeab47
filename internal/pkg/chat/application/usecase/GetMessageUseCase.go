package usecase

import (
	"context"
	"fmt"

	chat "minglemart/internal/pkg/chat/application/domain"
	repository "minglemart/internal/pkg/chat/persistence/repository/port"
)

// GetMessageInput carries parameters to fetch messages of a conversation.
type GetMessageInput struct {
	ConversationID string
	Requester      *chat.User
	Limit          int
	Offset         int
}

// GetMessageUseCase fetches recent history newest-first; rendering order is
// the client store's concern.
type GetMessageUseCase struct {
	Repo repository.ChatRepository
}

func NewGetMessageUseCase(repo repository.ChatRepository) *GetMessageUseCase {
	return &GetMessageUseCase{Repo: repo}
}

func (uc *GetMessageUseCase) Execute(ctx context.Context, in GetMessageInput) ([]chat.Message, error) {
	if in.Requester == nil {
		return nil, chat.ErrUnauthorized
	}
	if in.ConversationID == "" {
		return nil, chat.ErrInvalidConversation
	}

	isParticipant, err := uc.Repo.IsParticipant(ctx, in.ConversationID, in.Requester.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !isParticipant {
		return nil, chat.ErrNotParticipant
	}

	msgs, err := uc.Repo.GetMessagesByConversation(ctx, in.ConversationID, in.Limit, in.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return msgs, nil
}
