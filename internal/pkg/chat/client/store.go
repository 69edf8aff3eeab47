package client

import (
	"sync"

	chat "minglemart/internal/pkg/chat/application/domain"
)

// MessageStore holds the client's disposable copy of one conversation's
// messages, merged from the initial history fetch, the local user's
// optimistic sends and broadcast events. It is never the source of truth.
//
// Entries are kept newest-first, matching how the history fetch delivers
// them; DisplayOrder reverses for rendering. No two entries ever share a
// message id.
type MessageStore struct {
	mu       sync.RWMutex
	messages []chat.Message
	index    map[string]int
}

func NewMessageStore() *MessageStore {
	return &MessageStore{index: make(map[string]int)}
}

// Load replaces the store contents with a history fetch (newest-first).
// Duplicate ids within the batch are dropped after the first occurrence.
func (s *MessageStore) Load(msgs []chat.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = s.messages[:0]
	s.index = make(map[string]int, len(msgs))
	for _, m := range msgs {
		if _, ok := s.index[m.ID]; ok {
			continue
		}
		s.index[m.ID] = len(s.messages)
		s.messages = append(s.messages, m)
	}
}

// Insert adds a new message at the newest end unless its id is already
// present: the first arrival wins the slot, which makes the optimistic
// insert and the broadcast echo idempotent against each other.
func (s *MessageStore) Insert(m chat.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[m.ID]; ok {
		return false
	}
	s.messages = append([]chat.Message{m}, s.messages...)
	s.reindexLocked()
	return true
}

// Replace swaps the optimistic entry under tempID for the server-confirmed
// message. If the confirmed id already landed via broadcast, the temporary
// entry is simply dropped; either way the confirmed record ends up stored
// exactly once.
func (s *MessageStore) Replace(tempID string, confirmed chat.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[confirmed.ID]; ok && confirmed.ID != tempID {
		s.removeLocked(tempID)
		return
	}
	i, ok := s.index[tempID]
	if !ok {
		s.messages = append([]chat.Message{confirmed}, s.messages...)
		s.reindexLocked()
		return
	}
	s.messages[i] = confirmed
	delete(s.index, tempID)
	s.index[confirmed.ID] = i
}

// Remove deletes the entry with the given id, if present.
func (s *MessageStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(id)
}

// ReplaceReactions swaps the reaction list of the matching message wholesale.
// Broadcast payloads always carry the full resulting list, so no merging.
func (s *MessageStore) ReplaceReactions(messageID string, reactions []chat.Reaction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[messageID]
	if !ok {
		return false
	}
	s.messages[i].Reactions = append([]chat.Reaction(nil), reactions...)
	return true
}

// Reactions returns a copy of the current reaction list for the message.
func (s *MessageStore) Reactions(messageID string) []chat.Reaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[messageID]
	if !ok {
		return nil
	}
	return append([]chat.Reaction(nil), s.messages[i].Reactions...)
}

// Get returns the stored message with the given id.
func (s *MessageStore) Get(id string) (chat.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return chat.Message{}, false
	}
	return s.messages[i], true
}

// Len reports the number of stored messages.
func (s *MessageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// DisplayOrder returns the messages oldest-first for rendering (chat
// convention: newest at the bottom).
func (s *MessageStore) DisplayOrder() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]chat.Message, len(s.messages))
	for i, m := range s.messages {
		out[len(s.messages)-1-i] = m
	}
	return out
}

func (s *MessageStore) removeLocked(id string) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.messages = append(s.messages[:i], s.messages[i+1:]...)
	s.reindexLocked()
	return true
}

func (s *MessageStore) reindexLocked() {
	s.index = make(map[string]int, len(s.messages))
	for i, m := range s.messages {
		s.index[m.ID] = i
	}
}
