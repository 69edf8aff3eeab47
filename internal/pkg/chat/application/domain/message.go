package chat

import (
	"strings"
	"time"
)

const maxContentLength = 4000

// Message is an immutable log entry in a conversation. Content never changes
// after creation; Reactions are the only mutable sub-structure.
type Message struct {
	ID             string     `db:"id"`
	ConversationID string     `db:"conversation_id"`
	SenderID       string     `db:"sender_id"`
	Content        string     `db:"content"`
	CreatedAt      time.Time  `db:"created_at"`
	SenderName     string     `db:"sender_name"`
	SenderImage    string     `db:"sender_image"`
	Reactions      []Reaction `db:"-"`
}

// NewMessage trims and validates content and normalizes the timestamp.
func NewMessage(m Message) (*Message, error) {
	if m.ConversationID == "" || m.SenderID == "" {
		return nil, ErrInvalidConversation
	}

	m.Content = strings.TrimSpace(m.Content)
	if m.Content == "" {
		return nil, ErrEmptyContent
	}
	if len(m.Content) > maxContentLength {
		return nil, ErrContentTooLong
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	return &m, nil
}
