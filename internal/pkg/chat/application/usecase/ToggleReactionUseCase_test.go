package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	chat "minglemart/internal/pkg/chat/application/domain"
)

func seedMessage(t *testing.T, repo *fakeChatRepo, conversationID string) string {
	t.Helper()
	id, err := repo.SaveMessage(context.Background(), chat.Message{
		ConversationID: conversationID,
		SenderID:       "user-2",
		Content:        "hello",
	})
	require.NoError(t, err)
	return id
}

func TestToggleReactionAddsThenRemoves(t *testing.T) {
	repo := newFakeChatRepo()
	repo.seedConversation("conv-1", "user-1", "user-2")
	repo.users["user-1"] = chat.User{ID: "user-1", DisplayName: "Ana"}
	msgID := seedMessage(t, repo, "conv-1")
	pub := &capturingPublisher{}
	uc := NewToggleReactionUseCase(repo, pub)

	in := ToggleReactionInput{MessageID: msgID, Emoji: "👍", User: testSender()}

	out, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)
	require.True(t, out.Added)
	require.Len(t, out.Reactions, 1)
	require.Equal(t, "Ana", out.Reactions[0].User.Name)

	// The identical action undoes itself.
	out, err = uc.Execute(context.Background(), in)
	require.NoError(t, err)
	require.False(t, out.Added)
	require.Empty(t, out.Reactions)

	// Both flips broadcast the full resulting list.
	require.Len(t, pub.updates, 2)
	require.Len(t, pub.updates[0].Reactions, 1)
	require.Empty(t, pub.updates[1].Reactions)
}

func TestToggleReactionNeverDuplicates(t *testing.T) {
	repo := newFakeChatRepo()
	repo.seedConversation("conv-1", "user-1")
	msgID := seedMessage(t, repo, "conv-1")
	uc := NewToggleReactionUseCase(repo, nil)

	in := ToggleReactionInput{MessageID: msgID, Emoji: "👍", User: testSender()}
	for i := 0; i < 5; i++ {
		_, err := uc.Execute(context.Background(), in)
		require.NoError(t, err)
	}

	// Odd number of flips: exactly one row, never an accumulation.
	reactions, err := repo.ListReactionsForMessage(context.Background(), msgID)
	require.NoError(t, err)
	require.Len(t, reactions, 1)
}

func TestToggleReactionDistinctEmojisCoexist(t *testing.T) {
	repo := newFakeChatRepo()
	repo.seedConversation("conv-1", "user-1")
	msgID := seedMessage(t, repo, "conv-1")
	uc := NewToggleReactionUseCase(repo, nil)

	_, err := uc.Execute(context.Background(), ToggleReactionInput{MessageID: msgID, Emoji: "👍", User: testSender()})
	require.NoError(t, err)
	out, err := uc.Execute(context.Background(), ToggleReactionInput{MessageID: msgID, Emoji: "❤️", User: testSender()})
	require.NoError(t, err)

	require.True(t, out.Added)
	require.Len(t, out.Reactions, 2)
}

func TestToggleReactionUnknownMessage(t *testing.T) {
	repo := newFakeChatRepo()
	uc := NewToggleReactionUseCase(repo, nil)

	_, err := uc.Execute(context.Background(), ToggleReactionInput{MessageID: "ghost", Emoji: "👍", User: testSender()})
	require.ErrorIs(t, err, chat.ErrNotFound)
}

func TestToggleReactionRejectsNonParticipant(t *testing.T) {
	repo := newFakeChatRepo()
	repo.seedConversation("conv-1", "user-2")
	msgID := seedMessage(t, repo, "conv-1")
	uc := NewToggleReactionUseCase(repo, nil)

	_, err := uc.Execute(context.Background(), ToggleReactionInput{MessageID: msgID, Emoji: "👍", User: testSender()})
	require.ErrorIs(t, err, chat.ErrNotParticipant)
}

func TestToggleReactionRejectsAnonymousAndBlankEmoji(t *testing.T) {
	repo := newFakeChatRepo()
	repo.seedConversation("conv-1", "user-1")
	msgID := seedMessage(t, repo, "conv-1")
	uc := NewToggleReactionUseCase(repo, nil)

	_, err := uc.Execute(context.Background(), ToggleReactionInput{MessageID: msgID, Emoji: "👍"})
	require.ErrorIs(t, err, chat.ErrUnauthorized)

	_, err = uc.Execute(context.Background(), ToggleReactionInput{MessageID: msgID, Emoji: "  ", User: testSender()})
	require.ErrorIs(t, err, chat.ErrEmptyContent)
}

func TestToggleReactionWrapsPersistenceFailure(t *testing.T) {
	repo := newFakeChatRepo()
	repo.seedConversation("conv-1", "user-1")
	msgID := seedMessage(t, repo, "conv-1")
	repo.failWith = errors.New("connection reset")
	uc := NewToggleReactionUseCase(repo, nil)

	_, err := uc.Execute(context.Background(), ToggleReactionInput{MessageID: msgID, Emoji: "👍", User: testSender()})
	require.ErrorIs(t, err, ErrPersistence)
}
