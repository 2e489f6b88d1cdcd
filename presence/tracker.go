package presence

import (
	"sync"

	"coachtui/config"
	"coachtui/storage"
)

// Tracker holds each coach's presence. Concrete states go to the store;
// responding is kept as an overlay on top of them.
type Tracker struct {
	mu         sync.Mutex
	store      storage.PresenceStore
	sim        *Simulator
	responding map[string]bool
	cache      map[string]State
}

func NewTracker(store storage.PresenceStore, sim *Simulator) *Tracker {
	return &Tracker{
		store:      store,
		sim:        sim,
		responding: make(map[string]bool),
		cache:      make(map[string]State),
	}
}

// Ensure seeds a coach's presence: the stored value, else the server hint,
// else a random concrete state. The result is stored immediately.
func (t *Tracker) Ensure(coachID, serverStatus string) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentLocked(coachID, serverStatus)
}

// Current returns the persisted concrete state, seeding it if needed.
func (t *Tracker) Current(coachID string) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentLocked(coachID, "")
}

func (t *Tracker) currentLocked(coachID, serverStatus string) State {
	if st, ok := t.cache[coachID]; ok {
		return st
	}

	if raw, ok, err := t.store.Get(coachID); err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Presence] read failed for %s: %v", coachID, err)
		}
	} else if ok {
		if st, perr := ParseState(raw); perr == nil && st.Concrete() {
			t.cache[coachID] = st
			return st
		}
	}

	st, err := ParseState(serverStatus)
	if err != nil || !st.Concrete() {
		st = t.sim.RandomState()
	}
	t.persistLocked(coachID, st)
	return st
}

// Display is what the UI shows: responding while a reply is in flight,
// otherwise the persisted state.
func (t *Tracker) Display(coachID string) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.responding[coachID] {
		return Responding
	}
	return t.currentLocked(coachID, "")
}

// IsResponding reports whether the responding overlay is set.
func (t *Tracker) IsResponding(coachID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.responding[coachID]
}

// Set applies a state change. Responding only sets the overlay; a concrete
// state clears the overlay and is persisted.
func (t *Tracker) Set(coachID string, st State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if st == Responding {
		t.responding[coachID] = true
		return
	}
	if !st.Concrete() {
		return
	}
	delete(t.responding, coachID)
	t.persistLocked(coachID, st)
}

// ClearResponding drops the overlay and leaves the persisted state alone.
func (t *Tracker) ClearResponding(coachID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.responding, coachID)
}

func (t *Tracker) persistLocked(coachID string, st State) {
	t.cache[coachID] = st
	if err := t.store.Set(coachID, string(st)); err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("[Presence] write failed for %s: %v", coachID, err)
	}
}
