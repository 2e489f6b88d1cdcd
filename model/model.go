package model

import (
	"context"

	"coachtui/coachapi"
	"coachtui/config"
	"coachtui/directory"
	"coachtui/presence"
	"coachtui/storage"
)

// Model holds the core application data and business logic state
type Model struct {
	// Core dependencies
	Config    *config.Config
	Backend   coachapi.Backend
	Directory *directory.Directory
	History   *storage.HistoryStore
	Presence  *presence.Tracker
	Switcher  *Switcher
	Lifecycle *Lifecycle

	// Updates receives a signal whenever a background task changed what is
	// on screen. Buffered; signals coalesce.
	Updates chan struct{}

	// Application data
	Coaches []coachapi.Coach // full directory as loaded
	Game    string           // active game filter key, empty for all

	// Runtime state (not UI)
	Pending  int // sends in flight
	Quitting bool

	// Application metadata
	Version string

	ctx    context.Context
	cancel context.CancelFunc
}

// NewModel wires the session state around backend. The presence store decides
// where concrete presence is kept for this run.
func NewModel(cfg *config.Config, backend coachapi.Backend, presenceStore storage.PresenceStore, version string) *Model {
	ctx, cancel := context.WithCancel(context.Background())

	history := storage.NewHistoryStore()
	sim := presence.NewSimulator(nil)
	tracker := presence.NewTracker(presenceStore, sim)
	switcher := NewSwitcher(history)
	updates := make(chan struct{}, 1)

	m := &Model{
		Config:    cfg,
		Backend:   backend,
		Directory: directory.New(backend),
		History:   history,
		Presence:  tracker,
		Switcher:  switcher,
		Updates:   updates,
		Game:      cfg.DefaultGame,
		Version:   version,
		ctx:       ctx,
		cancel:    cancel,
	}

	m.Lifecycle = NewLifecycle(LifecycleDeps{
		Backend:   backend,
		History:   history,
		Tracker:   tracker,
		Switcher:  switcher,
		Simulator: sim,
		Notify:    m.signal,
	})

	return m
}

func (m *Model) signal() {
	select {
	case m.Updates <- struct{}{}:
	default:
	}
}

// Shutdown cancels every in-flight task.
func (m *Model) Shutdown() {
	m.Quitting = true
	m.cancel()
}

// VisibleCoaches is the directory after the game filter, sorted by role.
func (m *Model) VisibleCoaches() []coachapi.Coach {
	return directory.SortByRole(directory.FilterByGame(m.Coaches, m.Game))
}

// ActiveCoach returns the coach on screen.
func (m *Model) ActiveCoach() (coachapi.Coach, bool) {
	tok := m.Switcher.Active()
	if tok.PartnerID == "" {
		return coachapi.Coach{}, false
	}
	return directory.Find(m.Coaches, tok.PartnerID)
}

// SelectCoach switches the conversation on screen.
func (m *Model) SelectCoach(coachID string) Token {
	if config.DebugLog != nil {
		config.DebugLog.Printf("[Model] select coach %s", coachID)
	}
	return m.Switcher.SwitchTo(coachID)
}

// CycleCoach moves the selection delta steps through the visible coaches,
// wrapping around. It returns false when there is nothing to select.
func (m *Model) CycleCoach(delta int) bool {
	coaches := m.VisibleCoaches()
	if len(coaches) == 0 {
		return false
	}

	idx := -1
	active := m.Switcher.Active().PartnerID
	for i, c := range coaches {
		if c.ID == active {
			idx = i
			break
		}
	}

	next := 0
	if idx >= 0 {
		next = ((idx+delta)%len(coaches) + len(coaches)) % len(coaches)
	}
	m.SelectCoach(coaches[next].ID)
	return true
}

// SetGame changes the game filter. An unknown key clears it.
func (m *Model) SetGame(key string) (directory.Game, bool) {
	g, ok := directory.FindGame(key)
	if !ok {
		m.Game = ""
		return directory.Game{}, false
	}
	m.Game = g.Key
	return g, true
}

// LastCoachReply returns the text of the most recent coach message on screen.
func (m *Model) LastCoachReply() (string, bool) {
	msgs := m.Switcher.Transcript()
	for i := len(msgs) - 1; i >= 0; i-- {
		if !msgs[i].IsUser && !msgs[i].IsError && !msgs[i].IsAudio {
			return msgs[i].PlainText(), true
		}
	}
	return "", false
}
