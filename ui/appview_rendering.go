package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"coachtui/model"
)

func (a *AppView) updateViewportContent(gotoBottom bool) {
	coach, ok := a.dataModel.ActiveCoach()
	if !ok {
		a.messageLineOffsets = make(map[int]int)
		if a.loaded {
			a.viewport.SetContent(DimStyle.Render("No coach selected. Pick one from the list."))
		} else {
			a.viewport.SetContent(DimStyle.Render("Loading coaches..."))
		}
		return
	}

	rows := a.dataModel.Switcher.Rows(time.Now())
	if len(rows) == 0 {
		a.messageLineOffsets = make(map[int]int)
		a.viewport.SetContent(DimStyle.Render(fmt.Sprintf("No messages yet. Say hi to %s!", coach.Name)))
		return
	}

	highlight := -1
	if a.highlightFlashCount%2 == 1 {
		highlight = a.highlightedMessageIdx
	}

	content, offsets := renderTranscript(rows, coach.Name, a.viewport.Width, highlight)
	a.messageLineOffsets = offsets
	a.viewport.SetContent(content)
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

// renderTranscript draws the rows and returns the first line of every message,
// keyed by its position in the transcript.
func renderTranscript(rows []model.Row, coachName string, width, highlightIdx int) (string, map[int]int) {
	var content strings.Builder
	offsets := make(map[int]int)
	line := 0
	msgIdx := 0

	write := func(s string) {
		content.WriteString(s)
		line += strings.Count(s, "\n")
	}

	for _, row := range rows {
		if row.Kind == model.RowSeparator {
			write(renderDateSeparator(row.Label, width) + "\n\n")
			continue
		}

		offsets[msgIdx] = line

		highlightPrefix := ""
		if msgIdx == highlightIdx {
			highlightPrefix = HighlightStyle.Render(">>> ")
		}

		timestamp := ""
		if ts := row.Message.Time(); !ts.IsZero() {
			timestamp = DimStyle.Render(ts.Format("[15:04]")) + " "
		}

		body := renderBody(row.Display, width-2)

		switch {
		case row.Display.IsError:
			write(fmt.Sprintf("%s%s%s\n%s\n\n", highlightPrefix, timestamp, NoticeStyle.Render("Notice"), NoticeStyle.Render(body)))
		case row.Display.IsUser:
			write(formatUserMessage(highlightPrefix, timestamp, UserStyle.Render("You"), body))
		default:
			write(fmt.Sprintf("%s%s%s\n%s\n\n", highlightPrefix, timestamp, CoachStyle.Render(coachName), body))
		}
		msgIdx++
	}

	return content.String(), offsets
}

// renderBody turns a display item into wrapped text lines.
func renderBody(d model.Display, width int) string {
	var lines []string

	switch d.Kind {
	case model.DisplayAudio:
		lines = append(lines, HighlightStyle.Render("♪ ")+DimStyle.Render("voice message "+shortRef(d.Ref)))
	case model.DisplayImage:
		lines = append(lines, HighlightStyle.Render("▣ ")+DimStyle.Render("image "+shortRef(d.Ref)))
	}

	for _, l := range d.Lines() {
		lines = append(lines, wrapLine(l, width))
	}

	return strings.Join(lines, "\n")
}

// shortRef keeps references readable: inline data URLs are summarized.
func shortRef(ref string) string {
	if strings.HasPrefix(ref, "data:") {
		if mime, _, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ";"); ok {
			return "(" + mime + ")"
		}
		return "(inline)"
	}
	return runewidth.Truncate(ref, 60, "…")
}

func wrapLine(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

func formatUserMessage(highlightPrefix, timestamp, role, content string) string {
	greenBold := "\x1b[32;1m"
	reset := "\x1b[0m"
	bar := greenBold + "┃" + reset

	lines := strings.Split(content, "\n")

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s%s %s%s\n", highlightPrefix, bar, timestamp, role))

	for _, line := range lines {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}

	result.WriteString("\n")

	return result.String()
}

func renderDateSeparator(label string, width int) string {
	text := " " + label + " "
	side := (width - runewidth.StringWidth(text)) / 2
	if side < 2 {
		return DimStyle.Render(text)
	}
	rule := strings.Repeat("─", side)
	return DimStyle.Render(rule + text + rule)
}

func verticalRule(height int) string {
	if height <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("│\n", height), "\n")
}

// renderHeader shows the active coach, or the typing indicator while a reply
// is being prepared.
func (a AppView) renderHeader(width int) string {
	coach, ok := a.dataModel.ActiveCoach()
	if !ok {
		return TitleStyle.Render("coachtui")
	}

	st := a.dataModel.Presence.Display(coach.ID)
	name := TitleStyle.Render(coach.Name)

	var detail string
	if a.dataModel.Presence.IsResponding(coach.ID) {
		detail = CoachStyle.Render(fmt.Sprintf("✎ %s is typing ", coach.Name)) + a.typingSpinner.View()
	} else {
		detail = lipgloss.NewStyle().Foreground(presenceColor(st)).Render(st.Label())
	}

	parts := []string{presenceDot(st) + " " + name}
	if coach.Role != "" {
		parts = append(parts, DimStyle.Render(coach.Role+" expert"))
	}
	parts = append(parts, detail)

	header := strings.Join(parts, DimStyle.Render(" · "))
	return lipgloss.NewStyle().MaxWidth(width).Render(header)
}

func (a AppView) renderStatusBar(width int) string {
	if a.status != "" {
		style := CoachStyle
		if a.statusIsError {
			style = NoticeStyle
		}
		return lipgloss.NewStyle().MaxWidth(width).Render(style.Render(a.status))
	}

	kb := a.dataModel.Config.Keybindings
	descStyle := lipgloss.NewStyle().Foreground(successColor).Bold(true)
	statusBar := fmt.Sprintf("Enter %s  %s %s  %s/%s %s  %s %s  %s %s  %s %s",
		descStyle.Render("Send"),
		"Alt+Enter", descStyle.Render("New Line"),
		kb.DisplayActionKey("next_coach"), kb.DisplayActionKey("prev_coach"), descStyle.Render("Coach"),
		kb.DisplayActionKey("filter_coaches"), descStyle.Render("Filter"),
		kb.DisplayActionKey("help"), descStyle.Render("Help"),
		kb.DisplayActionKey("quit"), descStyle.Render("Quit"),
	)
	if a.dataModel.Pending > 0 {
		statusBar += DimStyle.Render(fmt.Sprintf("  · sending %d", a.dataModel.Pending))
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(StatusStyle.Render(statusBar))
}
