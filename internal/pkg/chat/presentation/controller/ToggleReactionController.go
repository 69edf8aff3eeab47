package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"minglemart/internal/pkg/chat/application/usecase"
	"minglemart/internal/pkg/chat/persistence/repository/adapter"
	"minglemart/internal/pkg/chat/presentation/middleware"
)

// ToggleReactionController handles the reaction toggle endpoint (one controller per endpoint)
type ToggleReactionController struct {
	UC *usecase.ToggleReactionUseCase
}

func NewToggleReactionController(pool *pgxpool.Pool, pub usecase.EventPublisher) *ToggleReactionController {
	repo := adapter.NewPgChatRepository(pool)
	return &ToggleReactionController{UC: usecase.NewToggleReactionUseCase(repo, pub)}
}

type toggleReactionRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}

func (h *ToggleReactionController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		messageID := c.Param("messageId")
		if messageID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "messageId is required"})
			return
		}

		var req toggleReactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		out, err := h.UC.Execute(ctx, usecase.ToggleReactionInput{
			MessageID: messageID,
			Emoji:     req.Emoji,
			User:      middleware.CurrentUser(c),
		})
		if err != nil {
			replyError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message_id": messageID,
			"added":      out.Added,
			"reactions":  out.Reactions,
		})
	}
}
