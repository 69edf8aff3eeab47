package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	chat "minglemart/internal/pkg/chat/application/domain"
	"minglemart/internal/pkg/chat/application/usecase"
)

// replyError maps domain and use-case errors onto HTTP statuses with a
// structured {"error": ...} body so the UI layer can render inline feedback.
func replyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, chat.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": "user is not a participant in this conversation"})
	case errors.Is(err, chat.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, usecase.ErrPersistence):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected persistence error"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
