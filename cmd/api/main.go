package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	cacheadapter "minglemart/internal/infrastructure/cache/adapter"
	"minglemart/internal/infrastructure/database"
	queueadapter "minglemart/internal/infrastructure/queue/adapter"
	"minglemart/internal/infrastructure/realtime"
	"minglemart/internal/pkg/chat/application/broadcast"
	"minglemart/internal/pkg/chat/application/task"
	repoadapter "minglemart/internal/pkg/chat/persistence/repository/adapter"
	"minglemart/internal/pkg/chat/presentation/middleware"

	v1 "minglemart/cmd/api/router/v1"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// Connect to the database on startup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := database.NewPoolFromEnv(ctx)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	cache, err := cacheadapter.NewRedisAdapter()
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer cache.Close()

	queueClient, err := queueadapter.NewAsynqClientFromEnv()
	if err != nil {
		log.Fatalf("failed to create queue client: %v", err)
	}
	defer queueClient.Close()

	queueServer, err := queueadapter.NewAsynqServer()
	if err != nil {
		log.Fatalf("failed to create queue server: %v", err)
	}

	repo := repoadapter.NewPgChatRepository(pool)
	task.RegisterNotifyOfflineTask(queueServer, repo)

	// The worker shares the process with the HTTP server; a dedicated
	// worker binary can run the same registration if load requires it.
	go func() {
		if err := queueServer.Run(context.Background()); err != nil {
			log.Printf("queue server stopped: %v", err)
		}
	}()

	signer, err := realtime.NewGrantSignerFromEnv()
	if err != nil {
		log.Fatalf("failed to configure channel signer: %v", err)
	}

	hub := realtime.NewHub()
	defer hub.Close()

	dispatcher := broadcast.NewDispatcher(hub, hub, queueClient)
	auth := middleware.NewHeaderAuthenticator(repo)

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "OK",
		})
	})

	v1.RegisterRoutes(r, pool, hub, signer, cache, auth, dispatcher)

	// Start HTTP server (blocks until shutdown)
	_ = r.Run()
}
