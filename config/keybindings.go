package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// KeyBindingsConfig holds modifier customization and optional per-action overrides
type KeyBindingsConfig struct {
	Modifiers ModifierConfig    `toml:"modifiers"`
	Actions   map[string]string `toml:"actions"` // Optional overrides for specific actions
}

type ModifierConfig struct {
	Primary   string `toml:"primary"`   // e.g., "alt", "ctrl", "meta", "super"
	Secondary string `toml:"secondary"` // e.g., "alt+shift", "ctrl+shift"
}

// actionDef defines the default modifier and key for an action
type actionDef struct {
	modifier string // "primary", "secondary", or "none"
	key      string // "j", "k", "enter", etc.
}

// actionRegistry maps action names to their default keybindings
// Users can override any of these in the [actions] section of keybindings.toml
var actionRegistry = map[string]actionDef{
	// Main view - Modals
	"help":            {"primary", "h"},
	"filter_coaches":  {"primary", "/"},
	"about":           {"secondary", "a"},
	"search_messages": {"primary", "f"},

	// Main view - Conversations
	"next_coach":        {"primary", "j"},
	"prev_coach":        {"primary", "k"},
	"delete_history":    {"primary", "d"},
	"export_history":    {"primary", "x"},
	"export_history_to": {"secondary", "x"},
	"attach_file":       {"primary", "o"},
	"delete_message":    {"primary", "r"},

	// Main view - Scrolling
	"page_down":        {"primary", "pgdown"},
	"page_up":          {"primary", "pgup"},
	"scroll_to_top":    {"primary", "g"},
	"scroll_to_bottom": {"secondary", "g"},

	// Main view - Actions
	"quit":               {"primary", "q"},
	"yank_last_response": {"primary", "y"},

	// Coach filter - navigation while typing (modifier required)
	"filter_down": {"primary", "j"},
	"filter_up":   {"primary", "k"},

	// Universal clear input action
	"clear_input": {"primary", "u"},
}

func DefaultKeybindings() *KeyBindingsConfig {
	return &KeyBindingsConfig{
		Modifiers: ModifierConfig{
			Primary:   "alt",
			Secondary: "alt+shift",
		},
	}
}

// LoadKeybindings reads <dataDir>/keybindings.toml, writing the template on
// first run. Modifiers that would eat typed text are rejected.
func LoadKeybindings(dataDir string) (*KeyBindingsConfig, error) {
	kb := DefaultKeybindings()
	if err := decodeOrCreate(filepath.Join(dataDir, "keybindings.toml"), GenerateKeybindingsTemplate(), kb); err != nil {
		return nil, err
	}
	kb.Modifiers.Primary = kb.Primary()
	kb.Modifiers.Secondary = kb.Secondary()

	valid, msg := kb.Validate()
	if !valid {
		return nil, fmt.Errorf("keybindings.toml: %s", msg)
	}
	if msg != "" && DebugLog != nil {
		DebugLog.Printf("[Config] %s", msg)
	}
	return kb, nil
}

// GenerateKeybindingsTemplate returns the default TOML template
func GenerateKeybindingsTemplate() string {
	return `# coachtui Keybindings Configuration
# Location: <data_directory>/keybindings.toml
# This file uses TOML format: https://toml.io

[modifiers]
primary = "alt"          # Default: alt (Options: alt, ctrl, meta, super)
secondary = "alt+shift"  # Default: alt+shift

# For tmux users (Alt may conflict):
#   primary = "ctrl"
#   secondary = "ctrl+shift"

[actions]
# Per-action overrides, for example:
#   next_coach = "ctrl+n"
#   prev_coach = "ctrl+p"
#   quit = "ctrl+shift+q"
#
# Actions: help, filter_coaches, about, search_messages, next_coach, prev_coach,
# delete_history, export_history, export_history_to, attach_file,
# delete_message, page_down, page_up, scroll_to_top, scroll_to_bottom, quit,
# yank_last_response, filter_down, filter_up, clear_input
`
}

// Primary returns the primary modifier, alt when unset.
func (kb *KeyBindingsConfig) Primary() string {
	return orDefault(kb.Modifiers.Primary, "alt")
}

// Secondary returns the secondary modifier, alt+shift when unset.
func (kb *KeyBindingsConfig) Secondary() string {
	return orDefault(kb.Modifiers.Secondary, "alt+shift")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// PrimaryKey joins the primary modifier and key, e.g. "alt+j".
func (kb *KeyBindingsConfig) PrimaryKey(key string) string {
	return kb.Primary() + "+" + key
}

// SecondaryKey joins the secondary modifier and key. Terminals report
// shift+letter as the uppercase letter, so "alt+shift" + "g" becomes "alt+G".
// Named keys keep the explicit shift ("alt+shift+f1").
func (kb *KeyBindingsConfig) SecondaryKey(key string) string {
	mods := strings.Split(kb.Secondary(), "+")
	if len(key) != 1 || key[0] < 'a' || key[0] > 'z' {
		return kb.Secondary() + "+" + key
	}

	kept := mods[:0:0]
	for _, m := range mods {
		if !strings.EqualFold(m, "shift") {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(mods) {
		return kb.Secondary() + "+" + key
	}

	kept = append(kept, strings.ToUpper(key))
	return strings.Join(kept, "+")
}

// GetActionKey resolves an action to its key string: a user override from
// [actions] wins, then the registry default. Unknown actions return "".
func (kb *KeyBindingsConfig) GetActionKey(action string) string {
	if override := kb.Actions[action]; override != "" {
		return override
	}

	def, ok := actionRegistry[action]
	if !ok {
		return ""
	}
	switch def.modifier {
	case "primary":
		return kb.PrimaryKey(def.key)
	case "secondary":
		return kb.SecondaryKey(def.key)
	default:
		return def.key
	}
}

// DisplayActionKey formats an action's key for help text and footers:
// "alt+G" is shown as "Alt+Shift+G".
func (kb *KeyBindingsConfig) DisplayActionKey(action string) string {
	key := kb.GetActionKey(action)
	if key == "" {
		return ""
	}
	return capitalizeKeybinding(key)
}

func capitalizeKeybinding(key string) string {
	parts := strings.Split(key, "+")
	hasShift := false
	for _, p := range parts {
		if strings.EqualFold(p, "shift") {
			hasShift = true
		}
	}

	out := make([]string, 0, len(parts)+1)
	for i, p := range parts {
		if p == "" {
			continue
		}
		upperLetter := len(p) == 1 && p[0] >= 'A' && p[0] <= 'Z'
		if upperLetter && !hasShift && i > 0 {
			out = append(out, "Shift")
		}
		out = append(out, strings.ToUpper(p[:1])+p[1:])
	}
	return strings.Join(out, "+")
}

// Validate rejects modifier setups that would swallow typed text. The
// message is a warning when valid is true.
func (kb *KeyBindingsConfig) Validate() (valid bool, message string) {
	primary, secondary := kb.Primary(), kb.Secondary()

	switch {
	case primary == "shift" || secondary == "shift":
		return false, "Shift alone conflicts with typing"
	case strings.Contains(primary, "ctrl") || strings.Contains(secondary, "ctrl"):
		return true, "Warning: Ctrl may conflict with terminal shortcuts (Ctrl+C, Ctrl+Z, Ctrl+D)"
	}
	return true, ""
}
