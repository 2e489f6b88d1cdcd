package storage

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// HistoryStore maps a coach id to its ordered conversation. It is the single
// source of truth that the visible transcript is projected from.
type HistoryStore struct {
	mu            sync.RWMutex
	conversations map[string][]Message
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		conversations: make(map[string][]Message),
	}
}

// Get returns a copy of the conversation. Unknown ids yield an empty slice.
func (h *HistoryStore) Get(partnerID string) []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	msgs := h.conversations[partnerID]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// Len returns the number of messages held for partnerID.
func (h *HistoryStore) Len(partnerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conversations[partnerID])
}

// Append adds msg to the end of the conversation, assigning an id when
// missing, and returns the stored message.
func (h *HistoryStore) Append(partnerID string, msg Message) Message {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}

	h.mu.Lock()
	h.conversations[partnerID] = append(h.conversations[partnerID], msg)
	h.mu.Unlock()

	return msg
}

// Replace swaps the whole conversation. Messages without ids get one.
func (h *HistoryStore) Replace(partnerID string, msgs []Message) {
	cp := withIDs(msgs)

	h.mu.Lock()
	h.conversations[partnerID] = cp
	h.mu.Unlock()
}

// Update rewrites partnerID's conversation with fn's result while holding the
// write lock, so no Append can land between the read and the write. fn gets a
// copy and must not call back into the store.
func (h *HistoryStore) Update(partnerID string, fn func([]Message) []Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cur := make([]Message, len(h.conversations[partnerID]))
	copy(cur, h.conversations[partnerID])
	h.conversations[partnerID] = withIDs(fn(cur))
}

// Remove drops the message with id from partnerID's conversation and reports
// whether it was there.
func (h *HistoryStore) Remove(partnerID, id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	msgs := h.conversations[partnerID]
	for i, m := range msgs {
		if m.ID == id {
			h.conversations[partnerID] = append(msgs[:i:i], msgs[i+1:]...)
			return true
		}
	}
	return false
}

// KnownIDs returns the message ids currently held, per partner.
func (h *HistoryStore) KnownIDs() map[string]map[string]bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]map[string]bool, len(h.conversations))
	for partner, msgs := range h.conversations {
		ids := make(map[string]bool, len(msgs))
		for _, m := range msgs {
			ids[m.ID] = true
		}
		out[partner] = ids
	}
	return out
}

func withIDs(msgs []Message) []Message {
	cp := make([]Message, len(msgs))
	for i, m := range msgs {
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		cp[i] = m
	}
	return cp
}

// Partners returns the ids that have a conversation, sorted.
func (h *HistoryStore) Partners() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.conversations))
	for id := range h.conversations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
