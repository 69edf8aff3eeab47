package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	qport "minglemart/internal/infrastructure/queue/port"
	chat "minglemart/internal/pkg/chat/application/domain"
	"minglemart/internal/pkg/chat/application/task"
)

type triggeredEvent struct {
	channel string
	event   string
	data    any
}

type fakeTrigger struct {
	err    error
	events []triggeredEvent
}

func (f *fakeTrigger) Trigger(channel, event string, data any) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.events = append(f.events, triggeredEvent{channel: channel, event: event, data: data})
	return 1, nil
}

type fakePresence struct {
	online map[string]bool
}

func (f *fakePresence) IsMemberOnline(_ string, memberID string) bool {
	return f.online[memberID]
}

type fakeQueue struct {
	err   error
	tasks []qport.Task
	opts  []qport.EnqueueOption
}

func (f *fakeQueue) Enqueue(_ context.Context, t qport.Task, opts ...qport.EnqueueOption) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.tasks = append(f.tasks, t)
	f.opts = append(f.opts, opts...)
	return "task-1", nil
}

func (f *fakeQueue) Close() error { return nil }

func sampleMessage() chat.Message {
	return chat.Message{
		ID:             "m1",
		ConversationID: "conv-1",
		SenderID:       "user-1",
		Content:        "hello",
		CreatedAt:      time.Now().UTC(),
		SenderName:     "Ana",
	}
}

func TestPublishMessageCreatedTriggersConversationChannel(t *testing.T) {
	trigger := &fakeTrigger{}
	d := NewDispatcher(trigger, &fakePresence{}, nil)

	d.PublishMessageCreated(context.Background(), "conv-1", sampleMessage(), []string{"user-1", "user-2"})

	require.Len(t, trigger.events, 1)
	require.Equal(t, "conversation-conv-1", trigger.events[0].channel)
	require.Equal(t, chat.EventMessageCreated, trigger.events[0].event)
	event, ok := trigger.events[0].data.(chat.MessageCreatedEvent)
	require.True(t, ok)
	require.Equal(t, "m1", event.ID)
}

func TestPublishMessageCreatedSwallowsTriggerFailure(t *testing.T) {
	trigger := &fakeTrigger{err: errors.New("socket storm")}
	queue := &fakeQueue{}
	d := NewDispatcher(trigger, &fakePresence{}, queue)

	// Must not panic or propagate; offline notifications still run.
	d.PublishMessageCreated(context.Background(), "conv-1", sampleMessage(), []string{"user-1", "user-2"})

	require.Len(t, queue.tasks, 1)
}

func TestPublishMessageCreatedQueuesOfflineRecipients(t *testing.T) {
	trigger := &fakeTrigger{}
	presence := &fakePresence{online: map[string]bool{"user-2": true}}
	queue := &fakeQueue{}
	d := NewDispatcher(trigger, presence, queue)

	d.PublishMessageCreated(context.Background(), "conv-1", sampleMessage(), []string{"user-1", "user-2", "user-3"})

	require.Len(t, queue.tasks, 1)
	require.Equal(t, task.NotifyOfflineTaskType, queue.tasks[0].Type)

	var payload task.NotifyOfflinePayload
	require.NoError(t, json.Unmarshal(queue.tasks[0].Payload, &payload))
	require.Equal(t, "conv-1", payload.ConversationID)
	require.Equal(t, "m1", payload.MessageID)
	// The sender and the online participant are excluded.
	require.Equal(t, []string{"user-3"}, payload.RecipientIDs)

	require.Len(t, queue.opts, 1)
	require.Equal(t, "notify", queue.opts[0].Queue)
	require.Equal(t, 5, queue.opts[0].MaxRetry)
	require.Equal(t, time.Minute, queue.opts[0].UniqueTTL)
}

func TestPublishMessageCreatedSkipsQueueWhenAllOnline(t *testing.T) {
	presence := &fakePresence{online: map[string]bool{"user-2": true, "user-3": true}}
	queue := &fakeQueue{}
	d := NewDispatcher(&fakeTrigger{}, presence, queue)

	d.PublishMessageCreated(context.Background(), "conv-1", sampleMessage(), []string{"user-1", "user-2", "user-3"})

	require.Empty(t, queue.tasks)
}

func TestPublishMessageCreatedWithoutQueue(t *testing.T) {
	trigger := &fakeTrigger{}
	d := NewDispatcher(trigger, &fakePresence{}, nil)

	d.PublishMessageCreated(context.Background(), "conv-1", sampleMessage(), []string{"user-1", "user-2"})

	require.Len(t, trigger.events, 1)
}

func TestPublishReactionUpdateCarriesFullList(t *testing.T) {
	trigger := &fakeTrigger{}
	d := NewDispatcher(trigger, &fakePresence{}, nil)

	reactions := []chat.Reaction{
		{MessageID: "m1", UserID: "user-2", Emoji: "👍", User: chat.ReactionUser{ID: "user-2", Name: "Bea"}},
	}
	d.PublishReactionUpdate("conv-1", "m1", reactions)

	require.Len(t, trigger.events, 1)
	require.Equal(t, "conversation-conv-1", trigger.events[0].channel)
	require.Equal(t, chat.EventReactionUpdate, trigger.events[0].event)
	event, ok := trigger.events[0].data.(chat.ReactionUpdateEvent)
	require.True(t, ok)
	require.Equal(t, reactions, event.Reactions)
}
