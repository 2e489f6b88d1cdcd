package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// ModalType determines the color and styling of a modal
type ModalType int

const (
	ModalTypeInfo ModalType = iota
	ModalTypeWarning
	ModalTypeError
)

func modalTitleColor(modalType ModalType) lipgloss.Color {
	switch modalType {
	case ModalTypeWarning:
		return warningColor
	case ModalTypeError:
		return dangerColor
	}
	return accentColor
}

// RenderThreeSectionModal stacks a colored title, the message lines and a
// dim footer, separated by rules, and centers the block on screen.
// desiredWidth 0 means 60 columns.
func RenderThreeSectionModal(title string, messageLines []string, footer string, modalType ModalType, desiredWidth, width, height int) string {
	modalWidth := desiredWidth
	if modalWidth == 0 {
		modalWidth = 60
	}
	modalWidth = max(min(modalWidth, width-10), 10)

	ruled := lipgloss.NewStyle().
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor)

	blank := strings.Repeat(" ", modalWidth)
	body := append(append([]string{blank}, messageLines...), blank)

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Foreground(modalTitleColor(modalType)).Render(centerText(title, modalWidth)),
		ruled.Render(strings.Join(body, "\n")),
		ruled.Foreground(dimColor).Align(lipgloss.Center).Render(footer),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// centerText pads s to width using its visual width, so emoji and wide runes
// land in the middle.
func centerText(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return runewidth.Truncate(s, width, "…")
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-w-left)
}

// centeredLines renders each line of text centered in width.
func centeredLines(text string, width int) []string {
	style := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center)

	var lines []string
	for _, line := range strings.Split(wordWrap(text, width-4), "\n") {
		lines = append(lines, style.Render(line))
	}
	return lines
}

// wordWrap breaks text on spaces so no line exceeds width columns.
// Existing newlines are kept; a single overlong word stays on its own line.
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	paragraphs := strings.Split(text, "\n")
	for i, p := range paragraphs {
		var lines []string
		line := ""
		for _, word := range strings.Fields(p) {
			switch {
			case line == "":
				line = word
			case runewidth.StringWidth(line)+1+runewidth.StringWidth(word) <= width:
				line += " " + word
			default:
				lines = append(lines, line)
				line = word
			}
		}
		if line != "" {
			lines = append(lines, line)
		}
		paragraphs[i] = strings.Join(lines, "\n")
	}
	return strings.Join(paragraphs, "\n")
}
