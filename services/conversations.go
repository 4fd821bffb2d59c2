package services

import "sync"

// ConversationStore keeps chat history per conversation id for the life of
// the process. Nothing is evicted, so memory grows with every conversation.
type ConversationStore struct {
	mu    sync.RWMutex
	convo map[string][]ChatMessage
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{convo: make(map[string][]ChatMessage)}
}

var conversations = NewConversationStore()

func GetConversationStore() *ConversationStore {
	return conversations
}

// Append adds messages to a conversation, creating it if needed.
func (s *ConversationStore) Append(id string, msgs ...ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convo[id] = append(s.convo[id], msgs...)
}

// History returns a copy of a conversation's messages.
func (s *ConversationStore) History(id string) []ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := s.convo[id]
	out := make([]ChatMessage, len(h))
	copy(out, h)
	return out
}

// Len is the number of conversations held.
func (s *ConversationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.convo)
}
