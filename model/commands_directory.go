package model

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"coachtui/coachapi"
	"coachtui/config"
	"coachtui/directory"
	"coachtui/storage"
)

// HistoryLoadError means stored conversations could not be fetched for a
// reason other than a missing login.
type HistoryLoadError struct {
	Err error
}

func (e *HistoryLoadError) Error() string {
	return fmt.Sprintf("failed to load chat history: %v", e.Err)
}

func (e *HistoryLoadError) Unwrap() error {
	return e.Err
}

// LoadDirectory fetches coaches and stored history. With focus set, only that
// coach's history is requested and it becomes the active conversation.
func (m *Model) LoadDirectory(focus string) tea.Cmd {
	return func() tea.Msg {
		return m.loadDirectory(focus)
	}
}

func (m *Model) loadDirectory(focus string) DirectoryLoadedMsg {
	coaches, err := m.Directory.Coaches(m.ctx)
	if err != nil {
		return DirectoryLoadedMsg{Focus: focus, Err: err}
	}

	notLoggedIn := false
	known := m.History.KnownIDs()
	records, err := m.Backend.ChatHistory(m.ctx, focus)
	switch {
	case errors.Is(err, coachapi.ErrNotLoggedIn):
		notLoggedIn = true
		records = nil
	case err != nil:
		return DirectoryLoadedMsg{Focus: focus, Err: &HistoryLoadError{Err: err}}
	}

	grouped := make(map[string][]storage.Message)
	var order []string
	for _, r := range records {
		id := r.CoachID
		if focus != "" {
			id = focus
		}
		if _, seen := grouped[id]; !seen {
			order = append(order, id)
		}
		grouped[id] = append(grouped[id], r.Message)
	}
	for _, id := range order {
		server, seen := grouped[id], known[id]
		m.History.Update(id, func(local []storage.Message) []storage.Message {
			// Local messages that showed up while the request was out are not
			// on the server yet.
			for _, msg := range local {
				if !seen[msg.ID] {
					server = append(server, msg)
				}
			}
			return server
		})
	}

	for _, c := range coaches {
		m.Presence.Ensure(c.ID, c.Status)
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Model] loaded %d coaches, %d history records (focus=%q notLoggedIn=%v)",
			len(coaches), len(records), focus, notLoggedIn)
	}

	return DirectoryLoadedMsg{
		Coaches:     coaches,
		Focus:       focus,
		NotLoggedIn: notLoggedIn,
	}
}

// ApplyDirectory stores a successful load and activates the focus coach, or
// the first visible coach when focus is unknown. It returns false when no
// coach could be activated.
func (m *Model) ApplyDirectory(msg DirectoryLoadedMsg) bool {
	if msg.Err != nil {
		return false
	}
	m.Coaches = msg.Coaches

	// The load replaced stored history; what is on screen is stale.
	if m.Switcher.Active().PartnerID != "" {
		m.Switcher.Refresh()
	}

	if msg.Focus != "" {
		if _, ok := directory.Find(m.Coaches, msg.Focus); ok {
			m.SelectCoach(msg.Focus)
			return true
		}
	}

	// Keep the current conversation across a reload.
	if active := m.Switcher.Active().PartnerID; active != "" {
		if _, ok := directory.Find(m.Coaches, active); ok {
			return true
		}
	}

	visible := m.VisibleCoaches()
	if len(visible) == 0 {
		return false
	}
	m.SelectCoach(visible[0].ID)
	return true
}

// ReloadDirectory drops the cached coach list and loads everything again.
func (m *Model) ReloadDirectory() tea.Cmd {
	m.Directory.Refresh()
	return m.LoadDirectory("")
}

// DeleteHistory removes the coach's stored conversation on the server and
// locally.
func (m *Model) DeleteHistory(coachID string) tea.Cmd {
	backend, switcher, ctx := m.Backend, m.Switcher, m.ctx
	return func() tea.Msg {
		if err := backend.DeleteChatHistory(ctx, coachID); err != nil {
			return HistoryDeletedMsg{CoachID: coachID, Err: err}
		}
		switcher.Reset(coachID)
		return HistoryDeletedMsg{CoachID: coachID}
	}
}

// ExportHistory writes the coach's conversation as JSON. An empty path uses
// the default export location.
func (m *Model) ExportHistory(coachID, coachName, path string) tea.Cmd {
	if path == "" {
		path = storage.GenerateExportPath(coachName)
	}
	history := m.History
	return func() tea.Msg {
		if err := history.ExportToJSON(coachID, coachName, path); err != nil {
			return HistoryExportedMsg{Path: path, Err: err}
		}
		return HistoryExportedMsg{Path: path}
	}
}
