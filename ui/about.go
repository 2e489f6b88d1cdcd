package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const ASCIIArt = `
  ___ ___   __ _  ___| |__ | |_ _   _(_)
 / __/ _ \ / _' |/ __| '_ \| __| | | | |
| (_| (_) | (_| | (__| | | | |_| |_| | |
 \___\___/ \__,_|\___|_| |_|\__|\__,_|_|
`

var Features = []string{
	"Chat with game coaches from your terminal",
	"Live coach presence and typing indicator",
	"Send screenshots and voice recordings",
	"Filter coaches by game, role or name",
}

func renderAboutModal(a AppView, width, height int, version string) string {
	var sb strings.Builder

	asciiStyle := lipgloss.NewStyle().
		Foreground(successColor).
		Bold(true)

	sb.WriteString(asciiStyle.Render(ASCIIArt))
	sb.WriteString("\n\n")

	featureStyle := lipgloss.NewStyle().
		Foreground(dimColor)

	for _, feature := range Features {
		sb.WriteString(featureStyle.Render("• " + feature))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")

	labelStyle := lipgloss.NewStyle().
		Foreground(accentColor).
		Bold(true)

	sb.WriteString(labelStyle.Render("Version: "))
	sb.WriteString(featureStyle.Render(version))
	sb.WriteString("\n")
	sb.WriteString(labelStyle.Render("Server: "))
	sb.WriteString(featureStyle.Render(a.dataModel.Config.APIBaseURL))
	sb.WriteString("\n")
	if user, ok := a.dataModel.Config.CurrentUser(); ok {
		sb.WriteString(labelStyle.Render("User: "))
		sb.WriteString(featureStyle.Render(user))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString(featureStyle.Render(fmt.Sprintf("Press Esc or %s to close", a.dataModel.Config.Keybindings.DisplayActionKey("about"))))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, boxStyle.Render(sb.String()))
}
