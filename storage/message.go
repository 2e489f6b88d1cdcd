package storage

import (
	"strings"
	"time"
)

// PartKind identifies one piece of a mixed image+text message.
type PartKind string

const (
	PartText  PartKind = "text"
	PartImage PartKind = "image"
)

// Part is one ordered piece of a mixed message. For images Value is a data
// URL or a remote URL.
type Part struct {
	Kind  PartKind `json:"kind"`
	Value string   `json:"value"`
}

// Message is one entry of a conversation.
type Message struct {
	ID        string `json:"id"`
	Text      string `json:"text,omitempty"`  // plain text, or audio reference when IsAudio
	Parts     []Part `json:"parts,omitempty"` // set only for mixed image+text content
	IsUser    bool   `json:"is_user"`
	IsAudio   bool   `json:"is_audio,omitempty"`
	IsError   bool   `json:"is_error,omitempty"` // inline failure notice
	Timestamp int64  `json:"timestamp,omitempty"`
}

// secondsCutoff separates epoch seconds from epoch milliseconds. Anything
// below it is far too early to be a millisecond timestamp of a real message.
const secondsCutoff = 2_000_000_000

// NormalizeTimestamp converts epoch seconds or milliseconds to a time.
// Non-positive values mean "no timestamp" and return the zero time.
func NormalizeTimestamp(ts int64) time.Time {
	switch {
	case ts <= 0:
		return time.Time{}
	case ts < secondsCutoff:
		return time.Unix(ts, 0)
	default:
		return time.UnixMilli(ts)
	}
}

// Time returns the normalized timestamp of the message.
func (m Message) Time() time.Time {
	return NormalizeTimestamp(m.Timestamp)
}

// IsMixed reports whether the message carries image+text parts.
func (m Message) IsMixed() bool {
	return len(m.Parts) > 0
}

// PlainText returns the textual content regardless of shape.
func (m Message) PlainText() string {
	if !m.IsMixed() {
		return m.Text
	}
	var texts []string
	for _, p := range m.Parts {
		if p.Kind == PartText {
			texts = append(texts, p.Value)
		}
	}
	return strings.Join(texts, "\n")
}

// ImagePart returns the first image part, if any.
func (m Message) ImagePart() (Part, bool) {
	for _, p := range m.Parts {
		if p.Kind == PartImage {
			return p, true
		}
	}
	return Part{}, false
}
