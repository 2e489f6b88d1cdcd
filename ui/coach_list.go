package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"coachtui/coachapi"
	"coachtui/directory"
	"coachtui/presence"
)

type coachOption struct {
	Coach    coachapi.Coach
	Presence presence.State
}

func (a AppView) renderCoachList(width, height int) string {
	title := "Coaches"
	if g, ok := directory.FindGame(a.dataModel.Game); ok {
		title = g.Name
	}

	var lines []string
	lines = append(lines, TitleStyle.Render(runewidth.Truncate(title, width-1, "…")))

	if a.filterMode {
		lines = append(lines, a.filterInput.View())
	} else {
		lines = append(lines, "")
	}

	coaches := a.listedCoaches()
	active := a.dataModel.Switcher.Active().PartnerID

	switch {
	case !a.loaded:
		lines = append(lines, DimStyle.Render("Loading..."))
	case len(coaches) == 0 && a.filterMode:
		lines = append(lines, DimStyle.Render("No matches"))
	case len(coaches) == 0:
		lines = append(lines, DimStyle.Render("No coaches for this game"))
	}

	// Each coach takes two lines
	capacity := max((height-len(lines)-1)/2, 1)
	selected := a.filterIdx
	if !a.filterMode {
		selected = indexOfCoach(coaches, active)
	}
	start := scrollStart(selected, len(coaches), capacity)
	end := min(start+capacity, len(coaches))

	for i := start; i < end; i++ {
		lines = append(lines, renderCoachEntry(coaches[i], width, coaches[i].Coach.ID == active, a.filterMode && i == a.filterIdx)...)
	}

	if hidden := len(coaches) - end; hidden > 0 {
		lines = append(lines, DimStyle.Render(fmt.Sprintf("↓ %d more", hidden)))
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		MaxHeight(height).
		Render(strings.Join(lines, "\n"))
}

func renderCoachEntry(opt coachOption, width int, isActive, isCursor bool) []string {
	marker := "  "
	nameStyle := lipgloss.NewStyle()
	if isActive {
		marker = "▸ "
		nameStyle = SelectedStyle
	}
	if isCursor {
		marker = "› "
		nameStyle = HighlightStyle
	}

	name := runewidth.Truncate(opt.Coach.Name, width-5, "…")
	first := marker + presenceDot(opt.Presence) + " " + nameStyle.Render(name)

	role := "Coach"
	if opt.Coach.Role != "" {
		role = opt.Coach.Role + " expert"
	}
	second := "    " + DimStyle.Render(runewidth.Truncate(role, width-5, "…"))

	return []string{first, second}
}

func indexOfCoach(coaches []coachOption, id string) int {
	for i, c := range coaches {
		if c.Coach.ID == id {
			return i
		}
	}
	return 0
}

// scrollStart keeps the selected entry inside a window of capacity entries.
func scrollStart(selected, total, capacity int) int {
	if total <= capacity || selected < capacity {
		return 0
	}
	start := selected - capacity + 1
	return min(start, total-capacity)
}
