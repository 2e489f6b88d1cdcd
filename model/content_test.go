package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"coachtui/storage"
)

func TestFilterCoachText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bold heading newline", "**Bold** # Heading\nline2", "Bold Heading<br>line2"},
		{"multiple hashes", "### Plan\n- step", "Plan<br>- step"},
		{"italic stars", "*careful* now", "careful now"},
		{"bold across lines", "**a\nb**", "a<br>b"},
		{"crlf and trim", "  one  \r\n  two ", "one<br>two"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterCoachText(tt.in))
		})
	}
}

func TestRender(t *testing.T) {
	t.Run("coach text is filtered", func(t *testing.T) {
		d := Render(Message{Text: "**Hi**\nthere"})
		assert.Equal(t, DisplayText, d.Kind)
		assert.Equal(t, "Hi<br>there", d.Text)
		assert.Equal(t, []string{"Hi", "there"}, d.Lines())
	})

	t.Run("user text passes through", func(t *testing.T) {
		d := Render(Message{Text: "**raw**\nsecond", IsUser: true})
		assert.Equal(t, "**raw**\nsecond", d.Text)
		assert.Equal(t, []string{"**raw**", "second"}, d.Lines())
		assert.True(t, d.IsUser)
	})

	t.Run("error notice flagged and unfiltered", func(t *testing.T) {
		d := Render(Message{Text: "Server returned 500: *", IsError: true})
		assert.True(t, d.IsError)
		assert.Equal(t, "Server returned 500: *", d.Text)
	})

	t.Run("audio", func(t *testing.T) {
		d := Render(Message{Text: "file:///tmp/a.ogg", IsAudio: true, IsUser: true})
		assert.Equal(t, DisplayAudio, d.Kind)
		assert.Equal(t, "file:///tmp/a.ogg", d.Ref)
	})

	t.Run("image with caption", func(t *testing.T) {
		d := Render(Message{IsUser: true, Parts: []storage.Part{
			{Kind: storage.PartText, Value: "**my** build"},
			{Kind: storage.PartImage, Value: "data:image/jpeg;base64,AA"},
		}})
		assert.Equal(t, DisplayImage, d.Kind)
		assert.Equal(t, "data:image/jpeg;base64,AA", d.Ref)
		assert.Equal(t, "my build", d.Text)
	})

	t.Run("pure", func(t *testing.T) {
		msg := Message{Text: "# same"}
		assert.Equal(t, Render(msg), Render(msg))
	})
}
