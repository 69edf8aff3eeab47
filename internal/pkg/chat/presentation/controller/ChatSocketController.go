package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "minglemart/internal/infrastructure/cache/port"
	"minglemart/internal/infrastructure/realtime"
	chat "minglemart/internal/pkg/chat/application/domain"
	"minglemart/internal/pkg/chat/application/usecase"
	"minglemart/internal/pkg/chat/persistence/repository/adapter"
	"minglemart/internal/pkg/chat/presentation/middleware"
)

// ChatSocketController owns the websocket endpoint: it runs the connection
// handshake, admits channel subscriptions against signed grants and tears
// everything down when the socket drops.
type ChatSocketController struct {
	hub    *realtime.Hub
	signer usecase.GrantSigner
	gate   *usecase.AuthorizeChannelUseCase
}

func NewChatSocketController(pool *pgxpool.Pool, hub *realtime.Hub, signer usecase.GrantSigner, cache cacheport.Cache) *ChatSocketController {
	repo := adapter.NewPgChatRepository(pool)
	return &ChatSocketController{
		hub:    hub,
		signer: signer,
		gate:   usecase.NewAuthorizeChannelUseCase(repo, signer, cache),
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Same-origin policy is enforced by the session gateway in front.
		return true
	},
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades the connection and processes frames until the client
// disconnects. Detach on exit drops every subscription, which is what emits
// member_removed on presence channels for a vanished client.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response.
			return
		}

		conn := realtime.NewConnection(user.ID, ws)
		ctl.hub.Attach(conn)
		defer func() {
			ctl.hub.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 20)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		if payload, err := realtime.EncodeFrame("", realtime.EventConnectionEstablished,
			realtime.ConnectionEstablished{SocketID: conn.SocketID}); err == nil {
			_ = conn.Send(payload)
		}

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				return
			}

			var frame realtime.Frame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replySubscriptionError(conn, "", "bad_request", "invalid frame")
				continue
			}

			switch frame.Event {
			case realtime.EventSubscribe:
				ctl.handleSubscribe(c.Request.Context(), conn, frame.Data)
			case realtime.EventUnsubscribe:
				ctl.handleUnsubscribe(conn, frame.Channel)
			default:
				ctl.replySubscriptionError(conn, frame.Channel, "unsupported_event", "unknown frame event")
			}
		}
	}
}

func (ctl *ChatSocketController) handleSubscribe(ctx context.Context, conn *realtime.Connection, data json.RawMessage) {
	var req realtime.SubscribeRequest
	if err := json.Unmarshal(data, &req); err != nil || req.Channel == "" {
		ctl.replySubscriptionError(conn, req.Channel, "bad_request", "channel is required")
		return
	}

	if !ctl.signer.Verify(req.Auth, conn.SocketID, req.Channel, req.ChannelData) {
		ctl.replySubscriptionError(conn, req.Channel, "forbidden", "invalid channel grant")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	fresh, err := ctl.gate.Consume(ctx, req.Auth)
	if err != nil {
		ctl.replySubscriptionError(conn, req.Channel, "internal_error", "grant check failed")
		return
	}
	if !fresh {
		ctl.replySubscriptionError(conn, req.Channel, "forbidden", "channel grant already used")
		return
	}

	if req.Channel == chat.PresenceChannel {
		memberID, memberName, err := usecase.VerifyPresenceData(req.ChannelData)
		if err != nil || memberID != conn.UserID {
			ctl.replySubscriptionError(conn, req.Channel, "forbidden", "presence identity mismatch")
			return
		}
		snapshot := ctl.hub.Subscribe(req.Channel, conn, &realtime.Member{ID: memberID, Name: memberName})
		members := make([]chat.PresenceMember, 0, len(snapshot)+1)
		for _, m := range snapshot {
			members = append(members, chat.PresenceMember{ID: m.ID, Name: m.Name})
		}
		members = append(members, chat.PresenceMember{ID: memberID, Name: memberName})
		ctl.reply(conn, req.Channel, chat.EventSubscriptionSucceeded, chat.PresenceSnapshotEvent{Members: members})
		return
	}

	ctl.hub.Subscribe(req.Channel, conn, nil)
	ctl.reply(conn, req.Channel, chat.EventSubscriptionSucceeded, nil)
}

func (ctl *ChatSocketController) handleUnsubscribe(conn *realtime.Connection, channel string) {
	if channel == "" {
		ctl.replySubscriptionError(conn, channel, "bad_request", "channel is required")
		return
	}
	ctl.hub.Unsubscribe(channel, conn)
}

func (ctl *ChatSocketController) reply(conn *realtime.Connection, channel, event string, data any) {
	if payload, err := realtime.EncodeFrame(channel, event, data); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *ChatSocketController) replySubscriptionError(conn *realtime.Connection, channel, code, reason string) {
	ctl.reply(conn, channel, realtime.EventSubscriptionError, realtime.SubscriptionError{
		Channel: channel,
		Code:    code,
		Reason:  reason,
	})
}
