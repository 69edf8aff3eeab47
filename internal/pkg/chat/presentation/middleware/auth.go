package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	chat "minglemart/internal/pkg/chat/application/domain"
)

// Authenticator is the narrow surface of the session layer this slice
// consumes. A nil user with a nil error means "no session".
type Authenticator interface {
	CurrentUser(ctx context.Context, r *http.Request) (*chat.User, error)
}

const userContextKey = "chat.currentUser"

// RequireUser resolves the caller's identity and aborts with 401 when there
// is none. Handlers behind it read the identity via CurrentUser.
func RequireUser(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c.Request.Context(), c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve session"})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the identity stored by RequireUser, or nil.
func CurrentUser(c *gin.Context) *chat.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := v.(*chat.User)
	return user
}
