package client

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	chat "minglemart/internal/pkg/chat/application/domain"
)

// API is the client's view of the server command surface. Implementations
// perform the authenticated HTTP round-trips.
type API interface {
	// SendMessage persists the message and returns the confirmed record
	// with the server-assigned id and timestamp.
	SendMessage(ctx context.Context, conversationID, content string) (chat.Message, error)
	// ToggleReaction flips the caller's reaction and returns the full
	// resulting reaction list for the message.
	ToggleReaction(ctx context.Context, messageID, emoji string) ([]chat.Reaction, error)
}

// Authenticator is the client-side authentication collaborator; nil means
// no session.
type Authenticator interface {
	CurrentUser() *chat.User
}

// SendResult is the structured outcome of a send. On failure RestoredContent
// carries the typed text back so the view can refill the input instead of
// losing it.
type SendResult struct {
	Message         *chat.Message
	Err             error
	RestoredContent string
}

// ReactionResult is the structured outcome of a reaction toggle.
type ReactionResult struct {
	Reactions []chat.Reaction
	Err       error
}

// Commands issues mutations with optimistic local updates and reconciles the
// store against the direct server responses. Broadcast echoes are handled
// independently by the ConversationChannel; id-based de-duplication in the
// store absorbs whichever arrives first.
type Commands struct {
	api   API
	auth  Authenticator
	store *MessageStore
}

func NewCommands(api API, auth Authenticator, store *MessageStore) *Commands {
	return &Commands{api: api, auth: auth, store: store}
}

const tempIDPrefix = "temp-"

// SendMessage inserts an optimistic entry under a client-generated temporary
// id, then swaps it for the confirmed message from the direct response. The
// swap uses the response, never the broadcast, so it works even when the
// echo is lost. On failure the optimistic entry is removed.
func (c *Commands) SendMessage(ctx context.Context, conversationID, content string) SendResult {
	user := c.auth.CurrentUser()
	if user == nil {
		return SendResult{Err: chat.ErrUnauthorized, RestoredContent: content}
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return SendResult{Err: chat.ErrEmptyContent, RestoredContent: content}
	}

	tempID := tempIDPrefix + uuid.NewString()
	c.store.Insert(chat.Message{
		ID:             tempID,
		ConversationID: conversationID,
		SenderID:       user.ID,
		Content:        trimmed,
		CreatedAt:      time.Now().UTC(),
		SenderName:     user.DisplayName,
		SenderImage:    user.AvatarURL,
	})

	confirmed, err := c.api.SendMessage(ctx, conversationID, trimmed)
	if err != nil {
		c.store.Remove(tempID)
		return SendResult{Err: err, RestoredContent: content}
	}

	c.store.Replace(tempID, confirmed)
	return SendResult{Message: &confirmed}
}

// reactionFlip is the reversible command wrapping an optimistic toggle: it
// captures the pre-toggle list so a failed round-trip can reapply it.
type reactionFlip struct {
	messageID string
	before    []chat.Reaction
}

func (f reactionFlip) revert(store *MessageStore) {
	store.ReplaceReactions(f.messageID, f.before)
}

// ToggleReaction applies the flip locally before the network round-trip
// completes, reverts the pre-state on failure and replaces the list with the
// server's authoritative result on success.
func (c *Commands) ToggleReaction(ctx context.Context, messageID, emoji string) ReactionResult {
	user := c.auth.CurrentUser()
	if user == nil {
		return ReactionResult{Err: chat.ErrUnauthorized}
	}
	if _, ok := c.store.Get(messageID); !ok {
		return ReactionResult{Err: chat.ErrNotFound}
	}

	flip := reactionFlip{messageID: messageID, before: c.store.Reactions(messageID)}
	c.store.ReplaceReactions(messageID, toggleLocal(flip.before, messageID, *user, emoji))

	reactions, err := c.api.ToggleReaction(ctx, messageID, emoji)
	if err != nil {
		flip.revert(c.store)
		return ReactionResult{Err: err}
	}

	// The server list is authoritative over the optimistic guess.
	c.store.ReplaceReactions(messageID, reactions)
	return ReactionResult{Reactions: reactions}
}

// toggleLocal computes the optimistic flip: remove the caller's existing
// (emoji) row or append a new one. Same action, opposite effect, never a
// duplicate.
func toggleLocal(reactions []chat.Reaction, messageID string, user chat.User, emoji string) []chat.Reaction {
	out := make([]chat.Reaction, 0, len(reactions)+1)
	removed := false
	for _, r := range reactions {
		if r.UserID == user.ID && r.Emoji == emoji {
			removed = true
			continue
		}
		out = append(out, r)
	}
	if removed {
		return out
	}
	return append(out, chat.Reaction{
		MessageID: messageID,
		UserID:    user.ID,
		Emoji:     emoji,
		User:      chat.ReactionUser{ID: user.ID, Name: user.DisplayName},
	})
}
