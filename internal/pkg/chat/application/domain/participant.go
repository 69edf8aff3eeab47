package chat

// ParticipantRole expresses the role within a conversation
// 0 = member (default); extra values reserved for future group roles
type ParticipantRole int16

const (
	ParticipantRoleMember ParticipantRole = 0
	ParticipantRoleOwner  ParticipantRole = 1
)

// Participant captures conversation membership.
// Primary key: (ConversationID, UserID)
type Participant struct {
	ConversationID string          `db:"conversation_id"`
	UserID         string          `db:"user_id"`
	Role           ParticipantRole `db:"role"`
}
