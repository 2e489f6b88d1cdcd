package model

import (
	"regexp"
	"strings"
)

// LineBreak separates lines in filtered coach text.
const LineBreak = "<br>"

var (
	headingMarkers = regexp.MustCompile(`#+\s*`)
	boldMarkup     = regexp.MustCompile(`(?s)\*\*(.*?)\*\*`)
	lineSplit      = regexp.MustCompile(`\r?\n`)
)

// FilterCoachText strips heading markers and asterisk emphasis from coach
// replies, trims every line and joins lines with LineBreak.
func FilterCoachText(text string) string {
	text = headingMarkers.ReplaceAllString(text, "")
	text = boldMarkup.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, "*", "")

	lines := lineSplit.Split(text, -1)
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.Join(lines, LineBreak)
}

// DisplayKind is the shape a message is drawn in.
type DisplayKind int

const (
	DisplayText DisplayKind = iota
	DisplayAudio
	DisplayImage
)

// Display is the normalized, presentation-ready form of a message.
type Display struct {
	Kind     DisplayKind
	Text     string // body text, or image caption
	Ref      string // audio or image reference
	Filtered bool   // Text went through FilterCoachText
	IsUser   bool
	IsError  bool
}

// Lines splits Text into display lines.
func (d Display) Lines() []string {
	if d.Text == "" {
		return nil
	}
	if d.Filtered {
		return strings.Split(d.Text, LineBreak)
	}
	return strings.Split(d.Text, "\n")
}

// Render maps a message to its display form. It is pure.
func Render(msg Message) Display {
	d := Display{IsUser: msg.IsUser, IsError: msg.IsError}

	switch {
	case msg.IsAudio:
		d.Kind = DisplayAudio
		d.Ref = msg.Text
	case msg.IsMixed():
		if img, ok := msg.ImagePart(); ok {
			d.Kind = DisplayImage
			d.Ref = img.Value
		}
		// Captions are filtered for both sides.
		d.Text = FilterCoachText(msg.PlainText())
		d.Filtered = true
	case msg.IsUser || msg.IsError:
		d.Kind = DisplayText
		d.Text = msg.Text
	default:
		d.Kind = DisplayText
		d.Text = FilterCoachText(msg.Text)
		d.Filtered = true
	}
	return d
}
