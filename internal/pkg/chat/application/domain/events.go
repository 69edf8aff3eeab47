package chat

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Event names carried over the channel transport.
const (
	EventMessageCreated        = "message-created"
	EventReactionUpdate        = "message-reaction-update"
	EventMemberAdded           = "member_added"
	EventMemberRemoved         = "member_removed"
	EventSubscriptionSucceeded = "subscription_succeeded"
)

// PresenceChannel is the single shared "who is online" topic.
const PresenceChannel = "presence-online"

const conversationChannelPrefix = "conversation-"

// ConversationChannel returns the per-conversation topic name.
func ConversationChannel(conversationID string) string {
	return conversationChannelPrefix + conversationID
}

// ParseConversationChannel extracts the conversation id from a channel name.
// The second return is false for the presence channel or any foreign topic.
func ParseConversationChannel(channel string) (string, bool) {
	if !strings.HasPrefix(channel, conversationChannelPrefix) {
		return "", false
	}
	id := channel[len(conversationChannelPrefix):]
	if id == "" {
		return "", false
	}
	return id, true
}

// MessageCreatedEvent is the message-created wire payload.
type MessageCreatedEvent struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	SenderID    string    `json:"senderId"`
	CreatedAt   time.Time `json:"createdAt"`
	SenderName  string    `json:"senderName"`
	SenderImage string    `json:"senderImage"`
}

// NewMessageCreatedEvent projects a persisted message onto the wire shape.
func NewMessageCreatedEvent(m Message) MessageCreatedEvent {
	return MessageCreatedEvent{
		ID:          m.ID,
		Content:     m.Content,
		SenderID:    m.SenderID,
		CreatedAt:   m.CreatedAt,
		SenderName:  m.SenderName,
		SenderImage: m.SenderImage,
	}
}

// Message converts the event back into a store entry on the client side.
func (e MessageCreatedEvent) Message(conversationID string) Message {
	return Message{
		ID:             e.ID,
		ConversationID: conversationID,
		SenderID:       e.SenderID,
		Content:        e.Content,
		CreatedAt:      e.CreatedAt,
		SenderName:     e.SenderName,
		SenderImage:    e.SenderImage,
	}
}

// ReactionUpdateEvent carries the full resulting reaction list, never a
// delta, so receivers replace wholesale instead of merging.
type ReactionUpdateEvent struct {
	MessageID string     `json:"messageId"`
	Reactions []Reaction `json:"reactions"`
}

// PresenceMemberEvent is the member_added / member_removed payload.
type PresenceMemberEvent struct {
	ID string `json:"id"`
}

// PresenceMember is one entry of the subscription_succeeded snapshot.
type PresenceMember struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// PresenceSnapshotEvent seeds a fresh presence subscriber with the members
// already online.
type PresenceSnapshotEvent struct {
	Members []PresenceMember `json:"members"`
}

// DecodeEvent validates a raw payload against the schema for the named event
// before it may touch client state. Unknown event names are rejected.
func DecodeEvent(name string, payload []byte) (any, error) {
	switch name {
	case EventMessageCreated:
		var e MessageCreatedEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("chat: decode %s: %w", name, err)
		}
		if e.ID == "" {
			return nil, fmt.Errorf("chat: %s event without message id", name)
		}
		return e, nil
	case EventReactionUpdate:
		var e ReactionUpdateEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("chat: decode %s: %w", name, err)
		}
		if e.MessageID == "" {
			return nil, fmt.Errorf("chat: %s event without message id", name)
		}
		return e, nil
	case EventMemberAdded, EventMemberRemoved:
		var e PresenceMemberEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("chat: decode %s: %w", name, err)
		}
		if e.ID == "" {
			return nil, fmt.Errorf("chat: %s event without member id", name)
		}
		return e, nil
	case EventSubscriptionSucceeded:
		var e PresenceSnapshotEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("chat: decode %s: %w", name, err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("chat: unknown event %q", name)
	}
}
