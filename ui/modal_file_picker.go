package ui

import (
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/lipgloss"

	"coachtui/config"
	"coachtui/media"
)

type FilePickerMode int

const (
	// FilePickerModeAttach picks an image or recording to send.
	FilePickerModeAttach FilePickerMode = iota
	// FilePickerModeExport picks the directory an export is written to.
	FilePickerModeExport
)

type FilePickerConfig struct {
	Title          string
	Mode           FilePickerMode
	AllowedTypes   []string
	StartDirectory string
	ShowHidden     bool
}

type FilePickerState struct {
	Active bool
	Picker filepicker.Model
	Config FilePickerConfig
}

// AttachPickerConfig offers every image and audio format the client can send.
func AttachPickerConfig() FilePickerConfig {
	return FilePickerConfig{
		Title:        "Attach Image or Voice Message",
		Mode:         FilePickerModeAttach,
		AllowedTypes: append(slices.Clone(media.ImageExtensions()), media.AudioExtensions()...),
	}
}

// ExportPickerConfig lists directories only.
func ExportPickerConfig() FilePickerConfig {
	return FilePickerConfig{
		Title: "Export Chat To...",
		Mode:  FilePickerModeExport,
	}
}

func NewFilePickerState(cfg FilePickerConfig) FilePickerState {
	fp := filepicker.New()
	fp.AllowedTypes = cfg.AllowedTypes
	fp.Height = 10
	fp.DirAllowed = true
	fp.FileAllowed = cfg.Mode == FilePickerModeAttach
	fp.ShowPermissions = false
	fp.ShowSize = cfg.Mode == FilePickerModeAttach
	fp.ShowHidden = cfg.ShowHidden

	startDir := cfg.StartDirectory
	if startDir == "" {
		startDir = config.GetHomeDir()
	}
	fp.CurrentDirectory = startDir

	fp.Styles.Directory = lipgloss.NewStyle().
		Foreground(accentColor).
		Bold(true)
	fp.Styles.File = lipgloss.NewStyle().
		Foreground(lipgloss.Color("15"))
	fp.Styles.Selected = lipgloss.NewStyle().
		Foreground(successColor).
		Bold(true)
	fp.Styles.Cursor = lipgloss.NewStyle().
		Foreground(successColor)

	return FilePickerState{
		Picker: fp,
		Config: cfg,
	}
}

func (fps *FilePickerState) Activate() {
	fps.Active = true
	fps.Picker.Path = ""
}

func (fps *FilePickerState) Reset() {
	fps.Active = false
	fps.Picker.Path = ""
}

// Chosen returns the path the picker settled on, if it fits the mode: a file
// when attaching, a directory when exporting. A path of the wrong kind is
// cleared so it does not fire again.
func (fps *FilePickerState) Chosen() (string, bool) {
	path := fps.Picker.Path
	if path == "" {
		return "", false
	}

	info, err := os.Stat(path)
	if err == nil && info.IsDir() == (fps.Config.Mode == FilePickerModeExport) {
		return path, true
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[FilePicker] ignoring %s (err=%v)", path, err)
	}
	fps.Picker.Path = ""
	return "", false
}

func RenderFilePickerModal(state FilePickerState, width, height int) string {
	if width < 20 || height < 10 {
		return "Terminal too small"
	}

	modalWidth := min(max(width-10, 10), 80)

	contentStyle := lipgloss.NewStyle().
		Width(modalWidth).
		Align(lipgloss.Left)

	lines := []string{strings.Repeat(" ", modalWidth)}
	if state.Config.Mode == FilePickerModeExport {
		lines = append(lines, contentStyle.Render("  "+DimStyle.Render("Enter on a folder to export there")))
	}
	for _, line := range strings.Split(state.Picker.View(), "\n") {
		lines = append(lines, contentStyle.Render("  "+strings.TrimRight(line, " ")))
	}
	lines = append(lines, strings.Repeat(" ", modalWidth))

	footer := "j/k Navigate  h/l Back/Forward  Enter Select  Esc Cancel"

	return RenderThreeSectionModal(
		state.Config.Title,
		lines,
		footer,
		ModalTypeInfo,
		modalWidth,
		width,
		height,
	)
}
