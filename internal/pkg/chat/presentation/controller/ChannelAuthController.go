package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "minglemart/internal/infrastructure/cache/port"
	"minglemart/internal/pkg/chat/application/usecase"
	"minglemart/internal/pkg/chat/persistence/repository/adapter"
	"minglemart/internal/pkg/chat/presentation/middleware"
)

// ChannelAuthController implements the server side of the channel
// transport's authorization handshake (one controller per endpoint)
type ChannelAuthController struct {
	UC *usecase.AuthorizeChannelUseCase
}

func NewChannelAuthController(pool *pgxpool.Pool, signer usecase.GrantSigner, cache cacheport.Cache) *ChannelAuthController {
	repo := adapter.NewPgChatRepository(pool)
	return &ChannelAuthController{UC: usecase.NewAuthorizeChannelUseCase(repo, signer, cache)}
}

type channelAuthRequest struct {
	SocketID    string `json:"socket_id" form:"socket_id" binding:"required"`
	ChannelName string `json:"channel_name" form:"channel_name" binding:"required"`
}

func (h *ChannelAuthController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req channelAuthRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		out, err := h.UC.Execute(ctx, usecase.AuthorizeChannelInput{
			User:     middleware.CurrentUser(c),
			SocketID: req.SocketID,
			Channel:  req.ChannelName,
		})
		if err != nil {
			replyError(c, err)
			return
		}

		c.JSON(http.StatusOK, out)
	}
}
