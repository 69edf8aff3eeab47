package realtime

import (
	"sort"
	"sync"
)

// Member is the public identity attached to a presence-channel subscription.
type Member struct {
	ID   string
	Name string
}

type subscription struct {
	conn   *Connection
	member *Member // nil on plain channels
}

// Hub tracks connections and named channel topics and fans events out to
// subscribers. Presence channels additionally keep an observable member set:
// the first socket of a member joining emits member_added to the remaining
// subscribers, the last socket leaving emits member_removed. Application
// code only reads that set; it is mutated exclusively through the
// subscribe/unsubscribe/detach paths here.
type Hub struct {
	mu           sync.RWMutex
	conns        map[string]*Connection             // socketID -> connection
	channels     map[string]map[string]subscription // channel -> socketID -> subscription
	connChannels map[string]map[string]struct{}     // socketID -> set of channels
	memberCounts map[string]map[string]int          // presence channel -> memberID -> socket count
	memberNames  map[string]map[string]string       // presence channel -> memberID -> display name
}

// NewHub constructs an initialized Hub.
func NewHub() *Hub {
	return &Hub{
		conns:        make(map[string]*Connection),
		channels:     make(map[string]map[string]subscription),
		connChannels: make(map[string]map[string]struct{}),
		memberCounts: make(map[string]map[string]int),
		memberNames:  make(map[string]map[string]string),
	}
}

// Attach registers a connection and starts its write loop.
func (h *Hub) Attach(conn *Connection) {
	h.mu.Lock()
	h.conns[conn.SocketID] = conn
	h.connChannels[conn.SocketID] = make(map[string]struct{})
	h.mu.Unlock()

	conn.Start()
}

// Detach drops the connection from every channel it joined. Presence
// channels emit member_removed for members whose last socket left.
func (h *Hub) Detach(conn *Connection) {
	h.mu.Lock()
	var removals []memberChange
	for channel := range h.connChannels[conn.SocketID] {
		if change, ok := h.leaveLocked(channel, conn.SocketID); ok {
			removals = append(removals, change)
		}
	}
	delete(h.connChannels, conn.SocketID)
	delete(h.conns, conn.SocketID)
	h.mu.Unlock()

	for _, r := range removals {
		h.broadcastMemberChange(r)
	}
}

// Subscribe adds the connection to the channel. member must be non-nil for
// presence channels and nil otherwise. For presence channels the returned
// slice is the member snapshot before this join, which the caller forwards to
// the new subscriber as its subscription_succeeded seed.
func (h *Hub) Subscribe(channel string, conn *Connection, member *Member) []Member {
	h.mu.Lock()
	if _, tracked := h.conns[conn.SocketID]; !tracked {
		h.mu.Unlock()
		return nil
	}

	var snapshot []Member
	var added *memberChange
	if member != nil {
		snapshot = h.membersLocked(channel)
		counts := h.memberCounts[channel]
		if counts == nil {
			counts = make(map[string]int)
			h.memberCounts[channel] = counts
			h.memberNames[channel] = make(map[string]string)
		}
		counts[member.ID]++
		h.memberNames[channel][member.ID] = member.Name
		if counts[member.ID] == 1 {
			added = &memberChange{channel: channel, memberID: member.ID, joined: true, skipSocket: conn.SocketID}
		}
	}

	room := h.channels[channel]
	if room == nil {
		room = make(map[string]subscription)
		h.channels[channel] = room
	}
	room[conn.SocketID] = subscription{conn: conn, member: member}
	h.connChannels[conn.SocketID][channel] = struct{}{}
	h.mu.Unlock()

	if added != nil {
		h.broadcastMemberChange(*added)
	}
	return snapshot
}

// Unsubscribe removes the connection from the channel.
func (h *Hub) Unsubscribe(channel string, conn *Connection) {
	h.mu.Lock()
	change, ok := h.leaveLocked(channel, conn.SocketID)
	if set := h.connChannels[conn.SocketID]; set != nil {
		delete(set, channel)
	}
	h.mu.Unlock()

	if ok {
		h.broadcastMemberChange(change)
	}
}

// Trigger publishes an event to every current subscriber of the channel and
// reports how many sockets accepted the payload. Delivery is best-effort; a
// full or closed subscriber is skipped, not retried.
func (h *Hub) Trigger(channel, event string, data any) (int, error) {
	payload, err := EncodeFrame(channel, event, data)
	if err != nil {
		return 0, err
	}

	h.mu.RLock()
	room := h.channels[channel]
	subs := make([]*Connection, 0, len(room))
	for _, sub := range room {
		subs = append(subs, sub.conn)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, conn := range subs {
		if conn.Send(payload) == nil {
			delivered++
		}
	}
	return delivered, nil
}

// Members returns the current member set of a presence channel, sorted by id.
func (h *Hub) Members(channel string) []Member {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.membersLocked(channel)
}

// IsMemberOnline reports whether the member currently holds a presence
// subscription on the channel.
func (h *Hub) IsMemberOnline(channel, memberID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.memberCounts[channel][memberID] > 0
}

// Close terminates all tracked connections and clears hub state.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*Connection, 0, len(h.conns))
	for _, conn := range h.conns {
		conns = append(conns, conn)
	}
	h.conns = make(map[string]*Connection)
	h.channels = make(map[string]map[string]subscription)
	h.connChannels = make(map[string]map[string]struct{})
	h.memberCounts = make(map[string]map[string]int)
	h.memberNames = make(map[string]map[string]string)
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close(1001, "hub shutdown")
	}
}

type memberChange struct {
	channel    string
	memberID   string
	joined     bool
	skipSocket string
}

func (h *Hub) membersLocked(channel string) []Member {
	counts := h.memberCounts[channel]
	if len(counts) == 0 {
		return nil
	}
	names := h.memberNames[channel]
	members := make([]Member, 0, len(counts))
	for id := range counts {
		members = append(members, Member{ID: id, Name: names[id]})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members
}

func (h *Hub) leaveLocked(channel, socketID string) (memberChange, bool) {
	room := h.channels[channel]
	sub, ok := room[socketID]
	if !ok {
		return memberChange{}, false
	}
	delete(room, socketID)
	if len(room) == 0 {
		delete(h.channels, channel)
	}

	if sub.member == nil {
		return memberChange{}, false
	}
	counts := h.memberCounts[channel]
	counts[sub.member.ID]--
	if counts[sub.member.ID] > 0 {
		return memberChange{}, false
	}
	delete(counts, sub.member.ID)
	delete(h.memberNames[channel], sub.member.ID)
	if len(counts) == 0 {
		delete(h.memberCounts, channel)
		delete(h.memberNames, channel)
	}
	return memberChange{channel: channel, memberID: sub.member.ID, joined: false}, true
}

func (h *Hub) broadcastMemberChange(change memberChange) {
	event := "member_removed"
	if change.joined {
		event = "member_added"
	}
	payload, err := EncodeFrame(change.channel, event, map[string]string{"id": change.memberID})
	if err != nil {
		return
	}

	h.mu.RLock()
	subs := make([]*Connection, 0, len(h.channels[change.channel]))
	for socketID, sub := range h.channels[change.channel] {
		if socketID == change.skipSocket {
			continue
		}
		subs = append(subs, sub.conn)
	}
	h.mu.RUnlock()

	for _, conn := range subs {
		_ = conn.Send(payload)
	}
}
