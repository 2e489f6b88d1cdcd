package storage

import (
	"strings"
	"time"
)

// MessageMatch is one search hit within a conversation.
type MessageMatch struct {
	CoachID      string
	MessageIndex int
	IsUser       bool
	Preview      string
	Timestamp    time.Time
}

const previewLen = 100

// SearchMessages returns the messages whose text contains query,
// case-insensitively. Error notices are skipped.
func SearchMessages(coachID string, messages []Message, query string) []MessageMatch {
	if query == "" {
		return []MessageMatch{}
	}

	queryLower := strings.ToLower(query)
	var matches []MessageMatch

	for i, msg := range messages {
		if msg.IsError || msg.IsAudio {
			continue
		}

		content := msg.PlainText()
		if !strings.Contains(strings.ToLower(content), queryLower) {
			continue
		}

		preview := content
		if len(preview) > previewLen {
			preview = strings.ToValidUTF8(preview[:previewLen], "") + "..."
		}

		matches = append(matches, MessageMatch{
			CoachID:      coachID,
			MessageIndex: i,
			IsUser:       msg.IsUser,
			Preview:      preview,
			Timestamp:    msg.Time(),
		})
	}

	return matches
}

// SearchAll searches every conversation in the store, grouped by coach id
// in sorted order.
func (h *HistoryStore) SearchAll(query string) []MessageMatch {
	var matches []MessageMatch
	for _, id := range h.Partners() {
		matches = append(matches, SearchMessages(id, h.Get(id), query)...)
	}
	return matches
}
