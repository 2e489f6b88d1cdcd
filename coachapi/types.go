package coachapi

import (
	"context"
	"strings"

	"github.com/tidwall/gjson"

	"coachtui/storage"
)

// DefaultAvatar is used when a coach has no avatar url.
const DefaultAvatar = "assets/images/default-avatar.png"

// Coach is one entry of the directory.
type Coach struct {
	ID        string
	Name      string
	Role      string
	Avatar    string
	Status    string // optional presence hint
	Languages []string
}

// HistoryRecord is one stored message as returned by chat_history.
type HistoryRecord struct {
	CoachID string
	Message storage.Message
}

// Backend is the remote coaching service.
type Backend interface {
	Chat(ctx context.Context, coachID, message string) (string, error)
	TranscribeAudio(ctx context.Context, coachID, filename string, audio []byte) (string, error)
	Vision(ctx context.Context, coachID, text string, jpeg []byte) (string, error)
	ListCoaches(ctx context.Context) ([]Coach, error)
	ChatHistory(ctx context.Context, coachID string) ([]HistoryRecord, error)
	DeleteChatHistory(ctx context.Context, coachID string) error
}

func parseCoach(r gjson.Result) Coach {
	c := Coach{
		ID:     r.Get("id").String(),
		Name:   r.Get("name").String(),
		Role:   r.Get("role").String(),
		Avatar: r.Get("avatar").String(),
		Status: r.Get("status").String(),
	}
	if c.Avatar == "" {
		c.Avatar = DefaultAvatar
	}

	langs := r.Get("languages")
	switch {
	case langs.IsArray():
		for _, l := range langs.Array() {
			if s := strings.TrimSpace(l.String()); s != "" {
				c.Languages = append(c.Languages, s)
			}
		}
	case langs.Type == gjson.String:
		for _, l := range strings.Split(langs.String(), ",") {
			if s := strings.TrimSpace(l); s != "" {
				c.Languages = append(c.Languages, s)
			}
		}
	}

	return c
}

// parseHistoryRecord accepts both field spellings the server has used
// (content|text, isUser|user) and the array-of-parts content shape.
func parseHistoryRecord(r gjson.Result) HistoryRecord {
	msg := storage.Message{
		IsAudio:   r.Get("isAudio").Bool(),
		Timestamp: r.Get("timestamp").Int(),
	}

	if isUser := r.Get("isUser"); isUser.Exists() {
		msg.IsUser = isUser.Bool()
	} else {
		msg.IsUser = r.Get("user").Bool()
	}

	content := r.Get("content")
	if !content.Exists() || content.Type == gjson.Null || content.String() == "" {
		content = r.Get("text")
	}

	if content.IsArray() {
		for _, part := range content.Array() {
			switch part.Get("type").String() {
			case "text":
				if t := part.Get("text").String(); t != "" {
					msg.Parts = append(msg.Parts, storage.Part{Kind: storage.PartText, Value: fixEncoding(t)})
				}
			case "image_url":
				if u := part.Get("image_url.url").String(); u != "" {
					msg.Parts = append(msg.Parts, storage.Part{Kind: storage.PartImage, Value: u})
				}
			}
		}
	} else {
		msg.Text = fixEncoding(content.String())
	}

	// Legacy image rows store only the url in content.
	if r.Get("isImage").Bool() && !msg.IsMixed() && msg.Text != "" {
		msg.Parts = []storage.Part{{Kind: storage.PartImage, Value: msg.Text}}
		msg.Text = ""
	}

	return HistoryRecord{
		CoachID: r.Get("coachId").String(),
		Message: msg,
	}
}

// fixEncoding drops byte sequences that are not valid UTF-8.
func fixEncoding(s string) string {
	return strings.ToValidUTF8(s, "")
}
