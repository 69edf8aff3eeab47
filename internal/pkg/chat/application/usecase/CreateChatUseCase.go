package usecase

import (
	"context"
	"fmt"
	"time"

	chat "minglemart/internal/pkg/chat/application/domain"
	repository "minglemart/internal/pkg/chat/persistence/repository/port"
)

// CreateChatInput opens a new conversation. ParticipantIDs excludes the
// creator, who is always registered as owner. A non-nil Name or more than
// one other participant makes it a group.
type CreateChatInput struct {
	Creator        *chat.User
	ParticipantIDs []string
	Name           *string
}

// CreateChatUseCase persists a conversation and registers its participants.
type CreateChatUseCase struct {
	Repo repository.ChatRepository
}

func NewCreateChatUseCase(repo repository.ChatRepository) *CreateChatUseCase {
	return &CreateChatUseCase{Repo: repo}
}

func (uc *CreateChatUseCase) Execute(ctx context.Context, in CreateChatInput) (*chat.Conversation, error) {
	if in.Creator == nil {
		return nil, chat.ErrUnauthorized
	}
	if len(in.ParticipantIDs) == 0 {
		return nil, fmt.Errorf("participant_ids must include at least one user id")
	}

	now := time.Now().UTC()
	conv := chat.Conversation{
		CreatedAt: now,
		IsGroup:   len(in.ParticipantIDs) > 1 || in.Name != nil,
		Name:      in.Name,
	}

	id, err := uc.Repo.CreateConversation(ctx, conv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	conv.ID = id

	owner := chat.Participant{ConversationID: id, UserID: in.Creator.ID, Role: chat.ParticipantRoleOwner}
	if err := uc.Repo.AddParticipant(ctx, owner); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	for _, uid := range in.ParticipantIDs {
		if uid == "" || uid == in.Creator.ID {
			continue
		}
		p := chat.Participant{
			ConversationID: id,
			UserID:         uid,
			Role:           chat.ParticipantRoleMember,
		}
		if err := uc.Repo.AddParticipant(ctx, p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	return &conv, nil
}
