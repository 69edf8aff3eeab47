package chat

// User is the identity shape handed over by the authentication collaborator.
// Only the fields the messaging slice needs are modeled.
type User struct {
	ID          string `db:"id"`
	DisplayName string `db:"display_name"`
	AvatarURL   string `db:"avatar_url"`
}
