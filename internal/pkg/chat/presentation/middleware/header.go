package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	chat "minglemart/internal/pkg/chat/application/domain"
)

// UserResolver looks up public identity fields for a user id.
type UserResolver interface {
	GetUser(ctx context.Context, userID string) (*chat.User, error)
}

// HeaderAuthenticator trusts the X-Auth-User header set by the session
// gateway in front of this service and resolves the id against the store.
// Session issuance itself lives outside this slice.
type HeaderAuthenticator struct {
	Users UserResolver
}

func NewHeaderAuthenticator(users UserResolver) *HeaderAuthenticator {
	return &HeaderAuthenticator{Users: users}
}

func (a *HeaderAuthenticator) CurrentUser(ctx context.Context, r *http.Request) (*chat.User, error) {
	id := strings.TrimSpace(r.Header.Get("X-Auth-User"))
	if id == "" {
		return nil, nil
	}
	user, err := a.Users.GetUser(ctx, id)
	if errors.Is(err, chat.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
