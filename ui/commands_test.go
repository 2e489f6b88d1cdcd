package ui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  inputCommand
	}{
		{"plain text", "  how do I last-hit?  ", inputCommand{Kind: cmdText, Text: "how do I last-hit?"}},
		{"escaped slash", "//shrug", inputCommand{Kind: cmdText, Text: "/shrug"}},
		{"image without caption", "/image shot.png", inputCommand{Kind: cmdImage, Path: "shot.png"}},
		{"image with caption", "/image shot.png what went wrong here", inputCommand{Kind: cmdImage, Path: "shot.png", Text: "what went wrong here"}},
		{"image quoted path", `/img "my shots/late game.png" thoughts?`, inputCommand{Kind: cmdImage, Path: "my shots/late game.png", Text: "thoughts?"}},
		{"audio", "/audio clip.mp3", inputCommand{Kind: cmdAudio, Path: "clip.mp3"}},
		{"audio ignores trailing text", "/audio clip.mp3 extra", inputCommand{Kind: cmdAudio, Path: "clip.mp3"}},
		{"game key", "/game LoL", inputCommand{Kind: cmdGame, Game: "lol"}},
		{"game all", "/game all", inputCommand{Kind: cmdGame}},
		{"game bare", "/game", inputCommand{Kind: cmdGame}},
		{"refresh", "/refresh", inputCommand{Kind: cmdRefresh}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseInput(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseInputErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"image needs path", "/image", "usage: /image"},
		{"audio needs path", "/audio   ", "usage: /audio"},
		{"unknown command", "/dance now", "unknown command /dance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseInput(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseInputEmpty(t *testing.T) {
	_, err := parseInput(" \n\t ")
	assert.ErrorIs(t, err, errEmptyInput)
}

func TestSplitPathArg(t *testing.T) {
	path, rest := splitPathArg(`"unterminated path`)
	assert.Equal(t, "unterminated path", path)
	assert.Empty(t, rest)

	path, rest = splitPathArg("")
	assert.Empty(t, path)
	assert.Empty(t, rest)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "pics", "a.png"), expandHome("~/pics/a.png"))
	assert.Equal(t, "relative/a.png", expandHome("relative/a.png"))
	assert.Equal(t, "~user/a.png", expandHome("~user/a.png"))
}
