package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "minglemart/internal/infrastructure/cache/port"
	"minglemart/internal/infrastructure/realtime"
	"minglemart/internal/pkg/chat/application/usecase"
	"minglemart/internal/pkg/chat/presentation/controller"
	"minglemart/internal/pkg/chat/presentation/middleware"
)

// RegisterRoutes registers chat-related HTTP endpoints under the given router
// group. It constructs per-endpoint controllers and binds them directly to
// routes; everything requires an authenticated caller.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, hub *realtime.Hub, signer usecase.GrantSigner, cache cacheport.Cache, auth middleware.Authenticator, pub usecase.EventPublisher) {
	createCtl := controller.NewCreateChatController(pool)
	sendMsgCtl := controller.NewSendMessageController(pool, pub)
	reactCtl := controller.NewToggleReactionController(pool, pub)
	getMsgCtl := controller.NewGetMessageController(pool)
	channelAuthCtl := controller.NewChannelAuthController(pool, signer, cache)
	socketCtl := controller.NewChatSocketController(pool, hub, signer, cache)

	authed := g.Group("", middleware.RequireUser(auth))

	// POST /api/v1/chat -> create a conversation
	authed.POST("/chat", createCtl.Handle())

	// POST /api/v1/chat/:conversationId/messages -> send a message
	authed.POST("/chat/:conversationId/messages", sendMsgCtl.Handle())

	// GET /api/v1/chat/:conversationId/messages -> fetch history (newest-first)
	authed.GET("/chat/:conversationId/messages", getMsgCtl.Handle())

	// POST /api/v1/messages/:messageId/reactions -> toggle a reaction
	authed.POST("/messages/:messageId/reactions", reactCtl.Handle())

	// POST /api/v1/broadcasting/auth -> channel authorization gate
	authed.POST("/broadcasting/auth", channelAuthCtl.Handle())

	// GET /api/v1/chat/ws -> websocket endpoint for channel subscriptions
	authed.GET("/chat/ws", socketCtl.Handle())
}
