package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "minglemart/internal/infrastructure/cache/port"
	"minglemart/internal/infrastructure/realtime"
	"minglemart/internal/pkg/chat/application/usecase"
	httpHandler "minglemart/internal/pkg/chat/presentation/http"
	"minglemart/internal/pkg/chat/presentation/middleware"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1
func RegisterRoutes(r *gin.Engine, pool *pgxpool.Pool, hub *realtime.Hub, signer usecase.GrantSigner, cache cacheport.Cache, auth middleware.Authenticator, pub usecase.EventPublisher) {
	v1 := r.Group("/api/v1")
	// Pass the shared infrastructure down to the HTTP layer
	httpHandler.RegisterRoutes(v1, pool, hub, signer, cache, auth, pub)
}
