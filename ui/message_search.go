package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"coachtui/storage"
)

func renderMessageSearch(a AppView, searchInput textinput.Model, results []storage.MessageMatch, selectedIdx, width, height int) string {
	modalWidth := width - 4
	if modalWidth > 100 {
		modalWidth = 100
	}

	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(1, 2)

	coachName := "coach"
	if coach, ok := a.dataModel.ActiveCoach(); ok {
		coachName = coach.Name
	}

	title := TitleStyle.Render("🔍 Search conversation with " + coachName)
	searchView := searchInput.View()

	resultsView := ""
	if len(results) == 0 {
		if searchInput.Value() == "" {
			resultsView = DimStyle.Render("Type to search messages in this conversation...")
		} else {
			resultsView = DimStyle.Render("No matches found")
		}
	} else {
		// Border(2) + Padding(2) + Title(1) + Blank(1) + SearchInput(1) + Blank(1) +
		// "Found X matches:"(1) + Blank(1) + Footer(1) + Blank(1) = 12 lines
		fixedOverhead := 12
		scrollIndicatorSpace := 4

		availableLines := max(height-fixedOverhead-scrollIndicatorSpace, 3)

		// Conservative estimate for lines per result (accounts for wrapping)
		linesPerResult := 4
		maxVisibleResults := max(availableLines/linesPerResult, 1)

		startIdx := scrollStart(selectedIdx, len(results), maxVisibleResults)
		endIdx := min(startIdx+maxVisibleResults, len(results))

		resultsView = fmt.Sprintf("Found %d matches:\n\n", len(results))

		if startIdx > 0 {
			resultsView += DimStyle.Render(fmt.Sprintf("↑ %d more above\n\n", startIdx))
		}

		for i := startIdx; i < endIdx; i++ {
			match := results[i]

			role := CoachStyle.Render(coachName)
			if match.IsUser {
				role = UserStyle.Render("You")
			}

			when := ""
			if !match.Timestamp.IsZero() {
				when = " [" + match.Timestamp.Format("Jan 2, 3:04 PM") + "]"
			}

			matchText := fmt.Sprintf("%s%s\n  %s", role, when, match.Preview)

			if i == selectedIdx {
				matchText = SelectedStyle.Render("> ") + matchText
			} else {
				matchText = "  " + matchText
			}

			resultsView += matchText + "\n\n"
		}

		if endIdx < len(results) {
			resultsView += DimStyle.Render(fmt.Sprintf("↓ %d more below", len(results)-endIdx))
		}
	}

	kb := a.dataModel.Config.Keybindings
	navKeys := kb.DisplayActionKey("filter_down") + "/" + kb.DisplayActionKey("filter_up")
	footer := FormatFooter("Type", "to search", navKeys, "Navigate", "Enter", "Jump", "Esc", "Close")

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		searchView,
		"",
		resultsView,
		"",
		footer,
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		modalStyle.Width(modalWidth).Render(content))
}
