package presence

import (
	"fmt"
	"strings"
)

// State is a coach's simulated availability.
type State string

const (
	Online     State = "online"
	Away       State = "away"
	Offline    State = "offline"
	Responding State = "responding"
)

// Concrete reports whether s can be persisted. Responding is display only.
func (s State) Concrete() bool {
	switch s {
	case Online, Away, Offline:
		return true
	}
	return false
}

// Label returns the human-readable presence text.
func (s State) Label() string {
	switch s {
	case Online:
		return "Online"
	case Away:
		return "Away"
	case Offline:
		return "Offline"
	case Responding:
		return "Typing..."
	}
	return string(s)
}

// ParseState accepts any case and surrounding whitespace.
func ParseState(s string) (State, error) {
	st := State(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case Online, Away, Offline, Responding:
		return st, nil
	}
	return "", fmt.Errorf("unknown presence state %q", s)
}
