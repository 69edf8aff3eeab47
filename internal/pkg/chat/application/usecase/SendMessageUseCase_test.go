package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	chat "minglemart/internal/pkg/chat/application/domain"
)

// fakeChatRepo is an in-memory ChatRepository for use case tests.
type fakeChatRepo struct {
	mu            sync.Mutex
	conversations map[string]chat.Conversation
	participants  map[string]map[string]chat.ParticipantRole // conversationID -> userID -> role
	messages      map[string]chat.Message
	reactions     map[string][]chat.Reaction // messageID -> rows
	users         map[string]chat.User
	notifications map[string]struct{} // userID|messageID
	touched       map[string]time.Time

	failWith error // every call errors when set
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		conversations: make(map[string]chat.Conversation),
		participants:  make(map[string]map[string]chat.ParticipantRole),
		messages:      make(map[string]chat.Message),
		reactions:     make(map[string][]chat.Reaction),
		users:         make(map[string]chat.User),
		notifications: make(map[string]struct{}),
		touched:       make(map[string]time.Time),
	}
}

func (r *fakeChatRepo) seedConversation(id string, participantIDs ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conversations[id] = chat.Conversation{ID: id}
	r.participants[id] = make(map[string]chat.ParticipantRole)
	for _, uid := range participantIDs {
		r.participants[id][uid] = chat.ParticipantRoleMember
	}
}

func (r *fakeChatRepo) CreateConversation(_ context.Context, c chat.Conversation) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return "", r.failWith
	}
	id := uuid.NewString()
	c.ID = id
	r.conversations[id] = c
	r.participants[id] = make(map[string]chat.ParticipantRole)
	return id, nil
}

func (r *fakeChatRepo) AddParticipant(_ context.Context, p chat.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	set := r.participants[p.ConversationID]
	if set == nil {
		set = make(map[string]chat.ParticipantRole)
		r.participants[p.ConversationID] = set
	}
	set[p.UserID] = p.Role
	return nil
}

func (r *fakeChatRepo) IsParticipant(_ context.Context, conversationID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return false, r.failWith
	}
	_, ok := r.participants[conversationID][userID]
	return ok, nil
}

func (r *fakeChatRepo) ListParticipantIDs(_ context.Context, conversationID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	var ids []string
	for id := range r.participants[conversationID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *fakeChatRepo) ConversationExists(_ context.Context, conversationID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return false, r.failWith
	}
	_, ok := r.conversations[conversationID]
	return ok, nil
}

func (r *fakeChatRepo) SaveMessage(_ context.Context, m chat.Message) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return "", r.failWith
	}
	m.ID = uuid.NewString()
	r.messages[m.ID] = m
	return m.ID, nil
}

func (r *fakeChatRepo) GetMessagesByConversation(_ context.Context, conversationID string, limit, offset int) ([]chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	var msgs []chat.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			msgs = append(msgs, m)
		}
	}
	if offset >= len(msgs) {
		return nil, nil
	}
	msgs = msgs[offset:]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (r *fakeChatRepo) GetMessage(_ context.Context, messageID string) (*chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	m, ok := r.messages[messageID]
	if !ok {
		return nil, chat.ErrNotFound
	}
	return &m, nil
}

func (r *fakeChatRepo) TouchConversation(_ context.Context, conversationID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.touched[conversationID] = at
	return nil
}

func (r *fakeChatRepo) ToggleReaction(_ context.Context, reaction chat.Reaction) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return false, r.failWith
	}
	rows := r.reactions[reaction.MessageID]
	for i, row := range rows {
		if row.UserID == reaction.UserID && row.Emoji == reaction.Emoji {
			r.reactions[reaction.MessageID] = append(rows[:i], rows[i+1:]...)
			return false, nil
		}
	}
	if user, ok := r.users[reaction.UserID]; ok {
		reaction.User = chat.ReactionUser{ID: user.ID, Name: user.DisplayName}
	}
	r.reactions[reaction.MessageID] = append(rows, reaction)
	return true, nil
}

func (r *fakeChatRepo) ListReactionsForMessage(_ context.Context, messageID string) ([]chat.Reaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	return append([]chat.Reaction(nil), r.reactions[messageID]...), nil
}

func (r *fakeChatRepo) GetUser(_ context.Context, userID string) (*chat.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	u, ok := r.users[userID]
	if !ok {
		return nil, chat.ErrNotFound
	}
	return &u, nil
}

func (r *fakeChatRepo) SaveNotification(_ context.Context, userID, conversationID, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.notifications[userID+"|"+messageID] = struct{}{}
	return nil
}

// capturingPublisher records published events for assertions.
type capturingPublisher struct {
	mu       sync.Mutex
	messages []chat.Message
	updates  []chat.ReactionUpdateEvent
}

func (p *capturingPublisher) PublishMessageCreated(_ context.Context, _ string, msg chat.Message, _ []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
}

func (p *capturingPublisher) PublishReactionUpdate(_ string, messageID string, reactions []chat.Reaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, chat.ReactionUpdateEvent{MessageID: messageID, Reactions: reactions})
}

func testSender() *chat.User {
	return &chat.User{ID: "user-1", DisplayName: "Ana", AvatarURL: "https://cdn.example/u1.png"}
}

func TestSendMessageConfirmsWithServerID(t *testing.T) {
	repo := newFakeChatRepo()
	repo.seedConversation("conv-1", "user-1", "user-2")
	pub := &capturingPublisher{}
	uc := NewSendMessageUseCase(repo, pub)

	msg, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: "conv-1",
		Sender:         testSender(),
		Content:        "  hello there  ",
	})

	require.NoError(t, err)
	require.NotEmpty(t, msg.ID)
	require.Equal(t, "hello there", msg.Content)
	require.Equal(t, "Ana", msg.SenderName)
	require.False(t, msg.CreatedAt.IsZero())

	// The conversation's activity timestamp moved with the message.
	require.Equal(t, msg.CreatedAt, repo.touched["conv-1"])

	// The broadcast carries the same confirmed record.
	require.Len(t, pub.messages, 1)
	require.Equal(t, msg.ID, pub.messages[0].ID)
}

func TestSendMessageRejectsAnonymous(t *testing.T) {
	uc := NewSendMessageUseCase(newFakeChatRepo(), nil)

	_, err := uc.Execute(context.Background(), SendMessageInput{ConversationID: "conv-1", Content: "hi"})
	require.ErrorIs(t, err, chat.ErrUnauthorized)
}

func TestSendMessageRejectsNonParticipant(t *testing.T) {
	repo := newFakeChatRepo()
	repo.seedConversation("conv-1", "user-2", "user-3")
	uc := NewSendMessageUseCase(repo, nil)

	_, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: "conv-1",
		Sender:         testSender(),
		Content:        "hi",
	})
	require.ErrorIs(t, err, chat.ErrNotParticipant)
	require.Empty(t, repo.messages)
}

func TestSendMessageUnknownConversation(t *testing.T) {
	repo := newFakeChatRepo()
	uc := NewSendMessageUseCase(repo, nil)

	_, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: "conv-ghost",
		Sender:         testSender(),
		Content:        "hi",
	})
	require.ErrorIs(t, err, chat.ErrNotFound)
}

func TestSendMessageRejectsBlankContent(t *testing.T) {
	repo := newFakeChatRepo()
	repo.seedConversation("conv-1", "user-1")
	uc := NewSendMessageUseCase(repo, nil)

	_, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: "conv-1",
		Sender:         testSender(),
		Content:        "   ",
	})
	require.ErrorIs(t, err, chat.ErrEmptyContent)
}

func TestSendMessageWrapsPersistenceFailure(t *testing.T) {
	repo := newFakeChatRepo()
	repo.seedConversation("conv-1", "user-1")
	repo.failWith = errors.New("connection reset")
	uc := NewSendMessageUseCase(repo, nil)

	_, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: "conv-1",
		Sender:         testSender(),
		Content:        "hi",
	})
	require.ErrorIs(t, err, ErrPersistence)
}

func TestSendMessageConcurrentSendsAllPersist(t *testing.T) {
	repo := newFakeChatRepo()
	repo.seedConversation("conv-1", "user-1", "user-2")
	pub := &capturingPublisher{}
	uc := NewSendMessageUseCase(repo, pub)

	const n = 16
	var wg sync.WaitGroup
	ids := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg, err := uc.Execute(context.Background(), SendMessageInput{
				ConversationID: "conv-1",
				Sender:         testSender(),
				Content:        "hello",
			})
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = msg.ID
		}(i)
	}
	wg.Wait()

	// Every send got its own id; none were coalesced or lost.
	seen := make(map[string]struct{}, n)
	for i, id := range ids {
		require.NoError(t, errs[i])
		require.NotEmpty(t, id)
		seen[id] = struct{}{}
	}
	require.Len(t, seen, n)
	require.Len(t, repo.messages, n)
	require.Len(t, pub.messages, n)
}
