package chat

import "time"

// Conversation is a 1:1 or group thread. LastMessageAt is bumped whenever a
// message is appended; conversations are never hard-deleted.
type Conversation struct {
	ID            string     `db:"id"`
	IsGroup       bool       `db:"is_group"`
	Name          *string    `db:"name"` // display name, groups only
	CreatedAt     time.Time  `db:"created_at"`
	LastMessageAt *time.Time `db:"last_message_at"`
}
