package ui

import (
	"fmt"
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	"github.com/charmbracelet/lipgloss"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	"coachtui/config"
	"coachtui/directory"
)

const helpWidth = 72

// helpMarkdown builds the help text for the current keybindings.
func helpMarkdown(kb *config.KeyBindingsConfig) string {
	var b strings.Builder

	b.WriteString("# Keyboard Shortcuts\n\n")

	b.WriteString("## Conversations\n\n")
	fmt.Fprintf(&b, "- **%s** / **%s** next / previous coach\n", kb.DisplayActionKey("next_coach"), kb.DisplayActionKey("prev_coach"))
	fmt.Fprintf(&b, "- **%s** filter coaches by name or role\n", kb.DisplayActionKey("filter_coaches"))
	fmt.Fprintf(&b, "- **%s** search this conversation\n", kb.DisplayActionKey("search_messages"))
	fmt.Fprintf(&b, "- **%s** copy the last reply\n", kb.DisplayActionKey("yank_last_response"))
	fmt.Fprintf(&b, "- **%s** export the conversation as JSON, **%s** pick the folder\n",
		kb.DisplayActionKey("export_history"), kb.DisplayActionKey("export_history_to"))
	fmt.Fprintf(&b, "- **%s** delete your last message\n", kb.DisplayActionKey("delete_message"))
	fmt.Fprintf(&b, "- **%s** delete the conversation\n\n", kb.DisplayActionKey("delete_history"))

	b.WriteString("## Input\n\n")
	b.WriteString("- **Enter** send, **Alt+Enter** new line\n")
	fmt.Fprintf(&b, "- **%s** clear the input\n", kb.DisplayActionKey("clear_input"))
	fmt.Fprintf(&b, "- **%s** attach an image or voice message, the input becomes the caption\n", kb.DisplayActionKey("attach_file"))
	fmt.Fprintf(&b, "- **%s** / **%s** page down / up, **%s** / **%s** top / bottom\n\n",
		kb.DisplayActionKey("page_down"), kb.DisplayActionKey("page_up"),
		kb.DisplayActionKey("scroll_to_top"), kb.DisplayActionKey("scroll_to_bottom"))

	b.WriteString("## Commands\n\n")
	b.WriteString("- `/image <path> [caption]` send a picture\n")
	b.WriteString("- `/audio <path>` send a voice recording\n")
	b.WriteString("- `/game <key|all>` show coaches for one game\n")
	b.WriteString("- `/refresh` reload coaches and history\n\n")

	keys := make([]string, len(directory.Games))
	for i, g := range directory.Games {
		keys[i] = "`" + g.Key + "`"
	}
	b.WriteString("Games: " + strings.Join(keys, ", ") + "\n")

	return b.String()
}

func renderMarkdown(content string, width int) string {
	ext := markdown.Extensions() &^ parser.Autolink
	p := parser.NewWithExtensions(ext)
	r := markdown.NewRenderer(width, 0)
	doc := p.Parse([]byte(content))
	return string(gomarkdown.Render(doc, r))
}

func (a AppView) renderHelpModal(width, height int) string {
	kb := a.dataModel.Config.Keybindings

	boxWidth := min(helpWidth, width-4)
	body := strings.TrimRight(renderMarkdown(helpMarkdown(kb), boxWidth-6), "\n")

	footer := lipgloss.NewStyle().
		Foreground(dimColor).
		Render(fmt.Sprintf("Press %s or Esc to close this help", kb.DisplayActionKey("help")))

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		body,
		"",
		footer,
	)

	helpBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2).
		Width(boxWidth)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		helpBox.Render(content),
	)
}
