package client

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	chat "minglemart/internal/pkg/chat/application/domain"
)

// PresenceClient joins the shared "who is online" channel and maintains the
// local online set. The set is ephemeral UI state: it is seeded by the
// subscription_succeeded snapshot and kept current by member_added /
// member_removed events, and cleared on unsubscribe.
type PresenceClient struct {
	transport Transport

	mu     sync.Mutex
	state  SubscriptionState
	handle Handle
	online map[string]chat.PresenceMember
}

func NewPresenceClient(transport Transport) *PresenceClient {
	return &PresenceClient{
		transport: transport,
		online:    make(map[string]chat.PresenceMember),
	}
}

// Subscribe joins the presence channel and binds the membership handlers.
func (p *PresenceClient) Subscribe(ctx context.Context) error {
	p.mu.Lock()
	if p.state != StateUnsubscribed {
		p.mu.Unlock()
		return nil
	}
	p.state = StateSubscribing
	p.mu.Unlock()

	handle, err := p.transport.Subscribe(ctx, chat.PresenceChannel)
	if err != nil {
		p.mu.Lock()
		p.state = StateUnsubscribed
		p.mu.Unlock()
		return fmt.Errorf("subscribe %s: %w", chat.PresenceChannel, err)
	}

	p.transport.Bind(handle, chat.EventSubscriptionSucceeded, p.onEvent(chat.EventSubscriptionSucceeded))
	p.transport.Bind(handle, chat.EventMemberAdded, p.onEvent(chat.EventMemberAdded))
	p.transport.Bind(handle, chat.EventMemberRemoved, p.onEvent(chat.EventMemberRemoved))

	p.mu.Lock()
	p.state = StateSubscribed
	p.handle = handle
	p.mu.Unlock()
	return nil
}

// Unsubscribe drops the subscription and clears the online set.
func (p *PresenceClient) Unsubscribe() {
	p.mu.Lock()
	handle := p.handle
	p.handle = nil
	p.state = StateUnsubscribed
	p.online = make(map[string]chat.PresenceMember)
	p.mu.Unlock()

	if handle != nil {
		p.transport.Unsubscribe(handle)
	}
}

// State reports the current lifecycle state.
func (p *PresenceClient) State() SubscriptionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// IsOnline reports whether the user currently appears in the presence set.
func (p *PresenceClient) IsOnline(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.online[userID]
	return ok
}

// Online returns the current members sorted by id.
func (p *PresenceClient) Online() []chat.PresenceMember {
	p.mu.Lock()
	defer p.mu.Unlock()
	members := make([]chat.PresenceMember, 0, len(p.online))
	for _, m := range p.online {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members
}

func (p *PresenceClient) onEvent(name string) func(payload []byte) {
	return func(payload []byte) {
		decoded, err := chat.DecodeEvent(name, payload)
		if err != nil {
			log.Printf("presence channel: drop event: %v", err)
			return
		}

		p.mu.Lock()
		defer p.mu.Unlock()
		if p.state != StateSubscribed {
			return
		}
		switch e := decoded.(type) {
		case chat.PresenceSnapshotEvent:
			p.online = make(map[string]chat.PresenceMember, len(e.Members))
			for _, m := range e.Members {
				p.online[m.ID] = m
			}
		case chat.PresenceMemberEvent:
			if name == chat.EventMemberAdded {
				p.online[e.ID] = chat.PresenceMember{ID: e.ID}
			} else {
				delete(p.online, e.ID)
			}
		}
	}
}
