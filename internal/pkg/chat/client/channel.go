package client

import (
	"context"
	"fmt"
	"log"
	"sync"

	chat "minglemart/internal/pkg/chat/application/domain"
)

// ConversationChannel subscribes to one conversation's topic and feeds
// validated events into the MessageStore. Lifecycle per open conversation
// view: Unsubscribed -> Subscribing -> Subscribed on mount, back to
// Unsubscribed on unmount. Nothing is buffered while unsubscribed; a
// reconnecting view re-fetches history from the durable store instead of
// replaying missed broadcasts.
type ConversationChannel struct {
	transport      Transport
	conversationID string
	store          *MessageStore

	mu     sync.Mutex
	state  SubscriptionState
	handle Handle
}

func NewConversationChannel(transport Transport, conversationID string, store *MessageStore) *ConversationChannel {
	return &ConversationChannel{
		transport:      transport,
		conversationID: conversationID,
		store:          store,
	}
}

// Subscribe runs the channel handshake and binds the event handlers. It is
// a no-op when already subscribed or mid-handshake.
func (c *ConversationChannel) Subscribe(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateUnsubscribed {
		c.mu.Unlock()
		return nil
	}
	c.state = StateSubscribing
	c.mu.Unlock()

	handle, err := c.transport.Subscribe(ctx, chat.ConversationChannel(c.conversationID))
	if err != nil {
		c.mu.Lock()
		c.state = StateUnsubscribed
		c.mu.Unlock()
		return fmt.Errorf("subscribe %s: %w", chat.ConversationChannel(c.conversationID), err)
	}

	c.transport.Bind(handle, chat.EventMessageCreated, c.onEvent(chat.EventMessageCreated))
	c.transport.Bind(handle, chat.EventReactionUpdate, c.onEvent(chat.EventReactionUpdate))

	c.mu.Lock()
	c.state = StateSubscribed
	c.handle = handle
	c.mu.Unlock()
	return nil
}

// Unsubscribe unconditionally tears the subscription down.
func (c *ConversationChannel) Unsubscribe() {
	c.mu.Lock()
	handle := c.handle
	c.handle = nil
	c.state = StateUnsubscribed
	c.mu.Unlock()

	if handle != nil {
		c.transport.Unsubscribe(handle)
	}
}

// State reports the current lifecycle state.
func (c *ConversationChannel) State() SubscriptionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// onEvent validates the payload at the subscriber boundary before it may
// touch the store, and drops events that race past an unmount.
func (c *ConversationChannel) onEvent(name string) func(payload []byte) {
	return func(payload []byte) {
		if c.State() != StateSubscribed {
			return
		}
		decoded, err := chat.DecodeEvent(name, payload)
		if err != nil {
			log.Printf("conversation channel %s: drop event: %v", c.conversationID, err)
			return
		}
		switch e := decoded.(type) {
		case chat.MessageCreatedEvent:
			// Insert is idempotent by id, which absorbs the sender's own
			// broadcast echo colliding with its optimistic entry.
			c.store.Insert(e.Message(c.conversationID))
		case chat.ReactionUpdateEvent:
			c.store.ReplaceReactions(e.MessageID, e.Reactions)
		}
	}
}
