package chat

// ReactionUser is the public slice of the reacting user embedded in
// broadcast payloads so clients can render names without a lookup.
type ReactionUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Reaction is the (message, user, emoji) tuple. At most one row exists per
// tuple; toggling the same emoji again removes it.
type Reaction struct {
	MessageID string       `json:"messageId" db:"message_id"`
	UserID    string       `json:"userId" db:"user_id"`
	Emoji     string       `json:"emoji" db:"emoji"`
	User      ReactionUser `json:"user" db:"-"`
}
