package usecase

import (
	"context"
	"fmt"
	"strings"

	chat "minglemart/internal/pkg/chat/application/domain"
	repository "minglemart/internal/pkg/chat/persistence/repository/port"
)

// ToggleReactionInput identifies the (message, user, emoji) tuple to flip.
type ToggleReactionInput struct {
	MessageID string
	Emoji     string
	User      *chat.User
}

// ToggleReactionOutput reports the resulting state after the flip. Reactions
// is always the full recomputed list for the message, matching what gets
// broadcast.
type ToggleReactionOutput struct {
	Added     bool
	Reactions []chat.Reaction
}

// ToggleReactionUseCase flips a reaction: an existing row for the tuple is
// deleted, a missing one is inserted. The same action never accumulates
// duplicates. After the durable change the full reaction list is recomputed
// and published so clients replace wholesale.
type ToggleReactionUseCase struct {
	Repo      repository.ChatRepository
	Publisher EventPublisher
}

func NewToggleReactionUseCase(repo repository.ChatRepository, pub EventPublisher) *ToggleReactionUseCase {
	return &ToggleReactionUseCase{Repo: repo, Publisher: pub}
}

func (uc *ToggleReactionUseCase) Execute(ctx context.Context, in ToggleReactionInput) (*ToggleReactionOutput, error) {
	if in.User == nil {
		return nil, chat.ErrUnauthorized
	}
	if in.MessageID == "" || strings.TrimSpace(in.Emoji) == "" {
		return nil, chat.ErrEmptyContent
	}

	msg, err := uc.Repo.GetMessage(ctx, in.MessageID)
	if err != nil {
		if err == chat.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	isParticipant, err := uc.Repo.IsParticipant(ctx, msg.ConversationID, in.User.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !isParticipant {
		return nil, chat.ErrNotParticipant
	}

	added, err := uc.Repo.ToggleReaction(ctx, chat.Reaction{
		MessageID: in.MessageID,
		UserID:    in.User.ID,
		Emoji:     strings.TrimSpace(in.Emoji),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	reactions, err := uc.Repo.ListReactionsForMessage(ctx, in.MessageID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if uc.Publisher != nil {
		uc.Publisher.PublishReactionUpdate(msg.ConversationID, in.MessageID, reactions)
	}

	return &ToggleReactionOutput{Added: added, Reactions: reactions}, nil
}
