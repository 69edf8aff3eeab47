package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	chat "minglemart/internal/pkg/chat/application/domain"
)

func TestGetMessagesForParticipant(t *testing.T) {
	repo := newFakeChatRepo()
	repo.seedConversation("conv-1", "user-1", "user-2")
	seedMessage(t, repo, "conv-1")
	seedMessage(t, repo, "conv-1")
	uc := NewGetMessageUseCase(repo)

	msgs, err := uc.Execute(context.Background(), GetMessageInput{
		ConversationID: "conv-1",
		Requester:      testSender(),
		Limit:          50,
	})

	require.NoError(t, err)
	require.Len(t, msgs, 2)
}

func TestGetMessagesHonorsLimit(t *testing.T) {
	repo := newFakeChatRepo()
	repo.seedConversation("conv-1", "user-1")
	for i := 0; i < 5; i++ {
		seedMessage(t, repo, "conv-1")
	}
	uc := NewGetMessageUseCase(repo)

	msgs, err := uc.Execute(context.Background(), GetMessageInput{
		ConversationID: "conv-1",
		Requester:      testSender(),
		Limit:          3,
	})

	require.NoError(t, err)
	require.Len(t, msgs, 3)
}

func TestGetMessagesDeniesNonParticipant(t *testing.T) {
	repo := newFakeChatRepo()
	repo.seedConversation("conv-1", "user-2")
	uc := NewGetMessageUseCase(repo)

	_, err := uc.Execute(context.Background(), GetMessageInput{
		ConversationID: "conv-1",
		Requester:      testSender(),
	})
	require.ErrorIs(t, err, chat.ErrNotParticipant)
}

func TestGetMessagesRequiresSessionAndConversation(t *testing.T) {
	uc := NewGetMessageUseCase(newFakeChatRepo())

	_, err := uc.Execute(context.Background(), GetMessageInput{ConversationID: "conv-1"})
	require.ErrorIs(t, err, chat.ErrUnauthorized)

	_, err = uc.Execute(context.Background(), GetMessageInput{Requester: testSender()})
	require.ErrorIs(t, err, chat.ErrInvalidConversation)
}
