package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	chat "minglemart/internal/pkg/chat/application/domain"
)

func TestPresenceClientSnapshotSeedsOnlineSet(t *testing.T) {
	transport := newFakeTransport()
	p := NewPresenceClient(transport)
	require.NoError(t, p.Subscribe(context.Background()))
	require.Equal(t, []string{chat.PresenceChannel}, transport.subscribed)

	transport.emit(t, chat.EventSubscriptionSucceeded, chat.PresenceSnapshotEvent{
		Members: []chat.PresenceMember{{ID: "user-2", Name: "Bea"}, {ID: "user-3", Name: "Cyn"}},
	})

	require.True(t, p.IsOnline("user-2"))
	require.True(t, p.IsOnline("user-3"))
	require.False(t, p.IsOnline("user-9"))

	online := p.Online()
	require.Len(t, online, 2)
	require.Equal(t, "user-2", online[0].ID)
	require.Equal(t, "Bea", online[0].Name)
}

func TestPresenceClientMemberAddedAndRemoved(t *testing.T) {
	transport := newFakeTransport()
	p := NewPresenceClient(transport)
	require.NoError(t, p.Subscribe(context.Background()))

	transport.emit(t, chat.EventMemberAdded, chat.PresenceMemberEvent{ID: "user-2"})
	require.True(t, p.IsOnline("user-2"))

	// Symmetric leave returns the set to its prior state.
	transport.emit(t, chat.EventMemberRemoved, chat.PresenceMemberEvent{ID: "user-2"})
	require.False(t, p.IsOnline("user-2"))
	require.Empty(t, p.Online())
}

func TestPresenceClientRemoveUnknownMemberIsNoop(t *testing.T) {
	transport := newFakeTransport()
	p := NewPresenceClient(transport)
	require.NoError(t, p.Subscribe(context.Background()))

	transport.emit(t, chat.EventMemberRemoved, chat.PresenceMemberEvent{ID: "user-9"})
	require.Empty(t, p.Online())
}

func TestPresenceClientUnsubscribeClearsSet(t *testing.T) {
	transport := newFakeTransport()
	p := NewPresenceClient(transport)
	require.NoError(t, p.Subscribe(context.Background()))
	transport.emit(t, chat.EventMemberAdded, chat.PresenceMemberEvent{ID: "user-2"})

	p.Unsubscribe()

	require.Equal(t, StateUnsubscribed, p.State())
	require.Equal(t, 1, transport.unsubscribed)
	require.False(t, p.IsOnline("user-2"))

	// Stale events after unmount must not repopulate the set.
	transport.emit(t, chat.EventMemberAdded, chat.PresenceMemberEvent{ID: "user-3"})
	require.Empty(t, p.Online())
}

func TestPresenceClientSnapshotReplacesWholesale(t *testing.T) {
	transport := newFakeTransport()
	p := NewPresenceClient(transport)
	require.NoError(t, p.Subscribe(context.Background()))

	transport.emit(t, chat.EventSubscriptionSucceeded, chat.PresenceSnapshotEvent{
		Members: []chat.PresenceMember{{ID: "user-2"}},
	})
	transport.emit(t, chat.EventSubscriptionSucceeded, chat.PresenceSnapshotEvent{
		Members: []chat.PresenceMember{{ID: "user-3"}},
	})

	require.False(t, p.IsOnline("user-2"))
	require.True(t, p.IsOnline("user-3"))
}
