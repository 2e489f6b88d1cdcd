package media

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxAudioBytes caps uploads to what the transcription service accepts.
const MaxAudioBytes = 25 << 20

var audioExtensions = map[string]bool{
	".webm": true,
	".ogg":  true,
	".oga":  true,
	".mp3":  true,
	".m4a":  true,
	".mp4":  true,
	".wav":  true,
	".flac": true,
}

// AudioExtensions lists the file extensions accepted as recordings, sorted.
func AudioExtensions() []string {
	return sortedKeys(audioExtensions)
}

// IsAudioFile reports whether path has a recording extension.
func IsAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// Audio is a recording loaded from disk.
type Audio struct {
	Path string
	Name string
	Data []byte
}

// Ref is the local reference shown in the transcript.
func (a Audio) Ref() string {
	return "file://" + a.Path
}

// LoadAudio reads a recording and checks that it looks like audio.
func LoadAudio(path string) (Audio, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Audio{}, fmt.Errorf("invalid audio path: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(abs))
	if !audioExtensions[ext] {
		return Audio{}, fmt.Errorf("unsupported audio format %q", ext)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return Audio{}, fmt.Errorf("failed to read audio: %w", err)
	}
	if info.Size() > MaxAudioBytes {
		return Audio{}, fmt.Errorf("audio file too large (%d MB max)", MaxAudioBytes>>20)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return Audio{}, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(data) == 0 {
		return Audio{}, fmt.Errorf("audio file is empty")
	}

	// Sniffing catches obvious mistakes like a text file renamed to .mp3.
	if ct := http.DetectContentType(data); strings.HasPrefix(ct, "text/") {
		return Audio{}, fmt.Errorf("%s does not look like audio", filepath.Base(abs))
	}

	return Audio{
		Path: abs,
		Name: filepath.Base(abs),
		Data: data,
	}, nil
}
