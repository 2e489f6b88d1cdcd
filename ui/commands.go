package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type commandKind int

const (
	cmdText commandKind = iota
	cmdImage
	cmdAudio
	cmdGame
	cmdRefresh
)

// inputCommand is what the user typed into the input area.
type inputCommand struct {
	Kind commandKind
	Text string // message text, or image caption
	Path string // attachment path
	Game string // game key, empty for all games
}

var errEmptyInput = errors.New("nothing to send")

// parseInput turns the input area contents into a command. Lines starting
// with "/" are commands; "//" escapes a literal slash.
func parseInput(input string) (inputCommand, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return inputCommand{}, errEmptyInput
	}

	if strings.HasPrefix(trimmed, "//") {
		return inputCommand{Kind: cmdText, Text: trimmed[1:]}, nil
	}
	if !strings.HasPrefix(trimmed, "/") {
		return inputCommand{Kind: cmdText, Text: trimmed}, nil
	}

	name, rest, _ := strings.Cut(trimmed[1:], " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(name) {
	case "image", "img":
		path, caption := splitPathArg(rest)
		if path == "" {
			return inputCommand{}, errors.New("usage: /image <path> [caption]")
		}
		return inputCommand{Kind: cmdImage, Path: expandHome(path), Text: caption}, nil

	case "audio":
		path, _ := splitPathArg(rest)
		if path == "" {
			return inputCommand{}, errors.New("usage: /audio <path>")
		}
		return inputCommand{Kind: cmdAudio, Path: expandHome(path)}, nil

	case "game":
		key := strings.ToLower(rest)
		if key == "" || key == "all" {
			key = ""
		}
		return inputCommand{Kind: cmdGame, Game: key}, nil

	case "refresh":
		return inputCommand{Kind: cmdRefresh}, nil
	}

	return inputCommand{}, fmt.Errorf("unknown command /%s", name)
}

// splitPathArg takes the first argument, which may be double-quoted to
// contain spaces, and returns it along with the remaining text.
func splitPathArg(s string) (string, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}

	if s[0] == '"' {
		if end := strings.IndexByte(s[1:], '"'); end >= 0 {
			return s[1 : end+1], strings.TrimSpace(s[end+2:])
		}
		return strings.Trim(s, `"`), ""
	}

	path, rest, _ := strings.Cut(s, " ")
	return path, strings.TrimSpace(rest)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
