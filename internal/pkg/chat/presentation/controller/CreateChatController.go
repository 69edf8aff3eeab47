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

// CreateChatController handles the conversation creation endpoint (one controller per endpoint)
type CreateChatController struct {
	UC *usecase.CreateChatUseCase
}

func NewCreateChatController(pool *pgxpool.Pool) *CreateChatController {
	repo := adapter.NewPgChatRepository(pool)
	return &CreateChatController{UC: usecase.NewCreateChatUseCase(repo)}
}

type createChatRequest struct {
	ParticipantIDs []string `json:"participant_ids" binding:"required"`
	Name           *string  `json:"name"`
}

func (h *CreateChatController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		conv, err := h.UC.Execute(ctx, usecase.CreateChatInput{
			Creator:        middleware.CurrentUser(c),
			ParticipantIDs: req.ParticipantIDs,
			Name:           req.Name,
		})
		if err != nil {
			replyError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":         conv.ID,
			"created_at": conv.CreatedAt,
			"is_group":   conv.IsGroup,
			"name":       conv.Name,
		})
	}
}
