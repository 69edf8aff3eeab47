package broadcast

import (
	"context"
	"encoding/json"
	"log"
	"time"

	qport "minglemart/internal/infrastructure/queue/port"
	chat "minglemart/internal/pkg/chat/application/domain"
	"minglemart/internal/pkg/chat/application/task"
)

// Trigger is the server-side channel transport surface the dispatcher needs.
type Trigger interface {
	Trigger(channel, event string, data any) (int, error)
}

// PresenceReader answers whether a user currently holds a presence
// subscription, read-only.
type PresenceReader interface {
	IsMemberOnline(channel, memberID string) bool
}

// Dispatcher publishes structured events to conversation channels after a
// mutation has been durably committed. Publish failures are logged and
// swallowed: the durable write already succeeded and the sender's own
// optimistic state keeps their UI consistent, so a lost broadcast only costs
// liveness for other subscribers.
type Dispatcher struct {
	channels Trigger
	presence PresenceReader
	queue    qport.Client // nil disables offline notifications
}

func NewDispatcher(channels Trigger, presence PresenceReader, queue qport.Client) *Dispatcher {
	return &Dispatcher{channels: channels, presence: presence, queue: queue}
}

// PublishMessageCreated fans the full message payload out on the
// conversation's channel, then queues notification rows for participants who
// are not online. Must only be called after the message row has committed.
func (d *Dispatcher) PublishMessageCreated(ctx context.Context, conversationID string, msg chat.Message, participantIDs []string) {
	event := chat.NewMessageCreatedEvent(msg)
	if _, err := d.channels.Trigger(chat.ConversationChannel(conversationID), chat.EventMessageCreated, event); err != nil {
		log.Printf("broadcast: publish %s conversation=%s: %v", chat.EventMessageCreated, conversationID, err)
	}

	d.notifyOffline(ctx, conversationID, msg, participantIDs)
}

// PublishReactionUpdate broadcasts the full resulting reaction list, never a
// delta, so subscribers replace their local list wholesale.
func (d *Dispatcher) PublishReactionUpdate(conversationID string, messageID string, reactions []chat.Reaction) {
	event := chat.ReactionUpdateEvent{MessageID: messageID, Reactions: reactions}
	if _, err := d.channels.Trigger(chat.ConversationChannel(conversationID), chat.EventReactionUpdate, event); err != nil {
		log.Printf("broadcast: publish %s conversation=%s: %v", chat.EventReactionUpdate, conversationID, err)
	}
}

func (d *Dispatcher) notifyOffline(ctx context.Context, conversationID string, msg chat.Message, participantIDs []string) {
	if d.queue == nil {
		return
	}

	var recipients []string
	for _, id := range participantIDs {
		if id == msg.SenderID {
			continue
		}
		if d.presence != nil && d.presence.IsMemberOnline(chat.PresenceChannel, id) {
			continue
		}
		recipients = append(recipients, id)
	}
	if len(recipients) == 0 {
		return
	}

	payload, err := json.Marshal(task.NotifyOfflinePayload{
		ConversationID: conversationID,
		MessageID:      msg.ID,
		RecipientIDs:   recipients,
	})
	if err != nil {
		log.Printf("broadcast: encode notify task: %v", err)
		return
	}
	opts := qport.EnqueueOption{Queue: "notify", MaxRetry: 5, UniqueTTL: time.Minute}
	if _, err := d.queue.Enqueue(ctx, qport.Task{Type: task.NotifyOfflineTaskType, Payload: payload}, opts); err != nil {
		log.Printf("broadcast: enqueue notify task message=%s: %v", msg.ID, err)
	}
}
