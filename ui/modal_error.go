package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ErrorModal is a standalone modal for errors that stop the app before the
// main view starts.
type ErrorModal struct {
	title   string
	message string
	width   int
	height  int
}

func NewErrorModal(title, message string) ErrorModal {
	return ErrorModal{
		title:   title,
		message: message,
	}
}

func (m ErrorModal) Init() tea.Cmd {
	return nil
}

func (m ErrorModal) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "ctrl+c":
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m ErrorModal) View() string {
	if m.width < 20 || m.height < 10 {
		return "Terminal too small"
	}

	modalWidth := min(60, m.width-10)
	return RenderThreeSectionModal(
		m.title,
		centeredLines(m.message, modalWidth),
		"Press Enter to quit",
		ModalTypeError,
		modalWidth,
		m.width,
		m.height,
	)
}

// renderLoadError is the full-panel view shown when the directory or the
// stored history could not be loaded.
func renderLoadError(err error, width, height int) string {
	title, detail := describeLoadError(err)

	modalWidth := min(60, width-10)
	return RenderThreeSectionModal(
		"⚠  "+title,
		centeredLines(detail, modalWidth),
		FormatFooter("r", "Retry", "Enter", "Quit"),
		ModalTypeError,
		modalWidth,
		width,
		height,
	)
}
