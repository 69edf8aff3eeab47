package task

import (
	"context"
	"encoding/json"
	"time"

	qport "minglemart/internal/infrastructure/queue/port"
	repository "minglemart/internal/pkg/chat/persistence/repository/port"
)

// NotifyOfflineTaskType is the queue task name for recording unread-message
// notifications for participants who were offline at broadcast time.
const NotifyOfflineTaskType = "chat:notify_offline"

// NotifyOfflinePayload is the JSON payload transported via the queue.
type NotifyOfflinePayload struct {
	ConversationID string   `json:"conversationId"`
	MessageID      string   `json:"messageId"`
	RecipientIDs   []string `json:"recipientIds"`
}

// RegisterNotifyOfflineTask binds the task handler to the provided server.
// The handler persists one notification row per recipient; the repository
// ignores duplicate (user, message) pairs so retries stay idempotent.
func RegisterNotifyOfflineTask(srv qport.Server, repo repository.ChatRepository) {
	srv.Register(NotifyOfflineTaskType, func(ctx context.Context, t qport.Task) error {
		var p NotifyOfflinePayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: retrying will not help
			return err
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		for _, userID := range p.RecipientIDs {
			if err := repo.SaveNotification(ctx, userID, p.ConversationID, p.MessageID); err != nil {
				return err
			}
		}
		return nil
	})
}
