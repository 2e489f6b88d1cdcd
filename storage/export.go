package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ConversationExport is the on-disk shape of an exported conversation.
type ConversationExport struct {
	CoachID    string    `json:"coach_id"`
	CoachName  string    `json:"coach_name"`
	ExportedAt time.Time `json:"exported_at"`
	Messages   []Message `json:"messages"`
}

var filenameReplacer = strings.NewReplacer(
	"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-", "\"", "-",
	"<", "-", ">", "-", "|", "-", " ", "-", "\n", "-", "\r", "-",
)

// SanitizeFilename removes or replaces characters that are invalid in filenames
func SanitizeFilename(name string) string {
	name = filenameReplacer.Replace(name)
	name = strings.Trim(name, "-.")

	if len(name) > 50 {
		name = name[:50]
	}

	if name == "" {
		name = "coach"
	}

	return name
}

// GenerateExportPath builds a default export path in ~/Downloads
func GenerateExportPath(coachName string) string {
	homeDir := os.Getenv("HOME")
	if homeDir == "" {
		homeDir = os.Getenv("USERPROFILE")
	}

	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("coachtui-chat-%s-%s.json", SanitizeFilename(coachName), timestamp)

	return filepath.Join(homeDir, "Downloads", filename)
}

// ExportToJSON writes the conversation with coachID to exportPath.
func (h *HistoryStore) ExportToJSON(coachID, coachName, exportPath string) error {
	export := ConversationExport{
		CoachID:    coachID,
		CoachName:  coachName,
		ExportedAt: time.Now(),
		Messages:   h.Get(coachID),
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// 0600 - chat transcripts are private
	if err := os.WriteFile(exportPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}
