package model

import (
	"sync"
	"time"

	"coachtui/config"
	"coachtui/storage"
)

// Token identifies the conversation a lifecycle task was started for. Gen
// changes every time the visible transcript is rebuilt.
type Token struct {
	PartnerID string
	Gen       uint64
}

// Switcher owns the active conversation and its visible transcript. The
// transcript is a projection of the HistoryStore.
type Switcher struct {
	mu         sync.Mutex
	history    *storage.HistoryStore
	active     string
	gen        uint64
	transcript []Message
	rendered   map[string]bool
}

func NewSwitcher(history *storage.HistoryStore) *Switcher {
	return &Switcher{
		history:  history,
		rendered: make(map[string]bool),
	}
}

// SwitchTo makes partnerID the active conversation and returns its token.
// The outgoing conversation is reconciled first: what the user saw, followed
// by anything that reached the store without being shown.
func (s *Switcher) SwitchTo(partnerID string) Token {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != "" {
		s.reconcileLocked()
	}

	s.active = partnerID
	s.gen++
	s.transcript = s.history.Get(partnerID)
	s.rendered = make(map[string]bool, len(s.transcript))
	for _, m := range s.transcript {
		s.rendered[m.ID] = true
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Switcher] active=%s gen=%d messages=%d", partnerID, s.gen, len(s.transcript))
	}

	return Token{PartnerID: partnerID, Gen: s.gen}
}

// reconcileLocked writes the outgoing transcript back to the store. Shown
// messages keep their on-screen order; anything stored but never shown follows.
// Shown messages that have since left the store stay gone.
func (s *Switcher) reconcileLocked() {
	transcript := s.transcript
	rendered := s.rendered

	s.history.Update(s.active, func(stored []Message) []Message {
		inStore := make(map[string]bool, len(stored))
		for _, m := range stored {
			inStore[m.ID] = true
		}

		out := make([]Message, 0, len(stored))
		for _, m := range transcript {
			if inStore[m.ID] {
				out = append(out, m)
			}
		}
		for _, m := range stored {
			if !rendered[m.ID] {
				out = append(out, m)
			}
		}
		return out
	})
}

// Active returns the token of the active conversation. PartnerID is empty
// when nothing is selected.
func (s *Switcher) Active() Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Token{PartnerID: s.active, Gen: s.gen}
}

// IsActive reports whether tok's conversation is the one on screen.
func (s *Switcher) IsActive(tok Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tok.PartnerID != "" && tok.PartnerID == s.active
}

// RenderIfActive appends msg to the visible transcript iff tok's conversation
// is active. If the transcript was rebuilt since tok was issued, messages the
// rebuild already showed are not shown twice. The return value reports
// whether msg is visible.
func (s *Switcher) RenderIfActive(tok Token, msg Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tok.PartnerID == "" || tok.PartnerID != s.active {
		return false
	}
	if tok.Gen != s.gen && s.rendered[msg.ID] {
		return true
	}

	s.transcript = append(s.transcript, msg)
	s.rendered[msg.ID] = true
	return true
}

// Transcript returns a copy of the visible messages.
func (s *Switcher) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Refresh rebuilds the visible transcript from the store without
// reconciling. Used after the store was replaced from the server.
func (s *Switcher) Refresh() Token {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.transcript = s.history.Get(s.active)
	s.rendered = make(map[string]bool, len(s.transcript))
	for _, m := range s.transcript {
		s.rendered[m.ID] = true
	}
	return Token{PartnerID: s.active, Gen: s.gen}
}

// RemoveFromTranscript deletes one of the user's own messages from the active
// conversation, both on screen and in the store. The id stays marked as shown
// so a later reconcile or late render cannot bring it back.
func (s *Switcher) RemoveFromTranscript(msgID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, m := range s.transcript {
		if m.ID == msgID {
			idx = i
			break
		}
	}
	if idx < 0 || !s.transcript[idx].IsUser {
		return false
	}

	s.transcript = append(s.transcript[:idx:idx], s.transcript[idx+1:]...)
	s.rendered[msgID] = true
	s.gen++
	s.history.Remove(s.active, msgID)

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Switcher] removed message %s from %s", msgID, s.active)
	}
	return true
}

// LastUserMessage returns the newest message the user sent in the visible
// transcript.
func (s *Switcher) LastUserMessage() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.transcript) - 1; i >= 0; i-- {
		if s.transcript[i].IsUser {
			return s.transcript[i], true
		}
	}
	return Message{}, false
}

// Reset clears partnerID's history and, when it is on screen, its transcript.
func (s *Switcher) Reset(partnerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history.Replace(partnerID, nil)
	if partnerID == s.active {
		s.gen++
		s.transcript = nil
		s.rendered = make(map[string]bool)
	}
}

// RowKind distinguishes transcript rows.
type RowKind int

const (
	RowMessage RowKind = iota
	RowSeparator
)

// Row is one line item of the rendered transcript.
type Row struct {
	Kind    RowKind
	Label   string // separator label
	Message Message
	Display Display
}

// Rows projects the transcript into display rows, inserting a date separator
// whenever a message's calendar day differs from the last separated day.
// Messages without a timestamp neither add nor reset separators.
func (s *Switcher) Rows(now time.Time) []Row {
	return BuildRows(s.Transcript(), now)
}

// BuildRows is the projection used by Rows.
func BuildRows(msgs []Message, now time.Time) []Row {
	rows := make([]Row, 0, len(msgs))
	var lastDay time.Time

	for _, m := range msgs {
		if ts := m.Time(); !ts.IsZero() {
			day := startOfDay(ts.In(now.Location()))
			if lastDay.IsZero() || !day.Equal(lastDay) {
				rows = append(rows, Row{Kind: RowSeparator, Label: DateLabel(day, now)})
				lastDay = day
			}
		}
		rows = append(rows, Row{Kind: RowMessage, Message: m, Display: Render(m)})
	}
	return rows
}

// DateLabel names a calendar day relative to now.
func DateLabel(day, now time.Time) string {
	day = startOfDay(day.In(now.Location()))
	today := startOfDay(now)
	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	}
	return day.Format("Jan 2, 2006")
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
