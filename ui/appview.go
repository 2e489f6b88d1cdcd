package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"coachtui/directory"
	"coachtui/model"
	"coachtui/storage"
)

const (
	statusDuration  = 8 * time.Second
	loginNotice     = "Please log in to view the chat."
	minSidebarWidth = 20
	maxSidebarWidth = 32
)

type AppView struct {
	dataModel *model.Model

	viewport      viewport.Model
	textarea      textarea.Model
	typingSpinner spinner.Model
	spinning      bool

	// Coach filter
	filterMode  bool
	filterInput textinput.Model
	filterIdx   int

	// Message search
	showMessageSearch     bool
	messageSearchInput    textinput.Model
	messageSearchResults  []storage.MessageMatch
	selectedSearchIdx     int
	highlightedMessageIdx int
	highlightFlashCount   int
	messageLineOffsets    map[int]int

	// Modals
	showHelp        bool
	showAbout       bool
	confirmDelete   ConfirmationState
	deleteCoachID   string
	deleteMessageID string
	filePicker      FilePickerState

	// Load state
	loaded           bool
	loadErr          error
	loginNoticeShown bool

	// Status bar notice
	status        string
	statusIsError bool
	statusSeq     int

	width  int
	height int
	ready  bool
}

func NewAppView(dataModel *model.Model) AppView {
	ta := textarea.New()
	ta.Placeholder = "Message your coach, or /image <path>, /audio <path>, /game <key>..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Custom KeyMap: Alt+Enter for newline, Enter alone sends (handled separately)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	// Set dynamic prompt: "> " for first line, "| " for subsequent lines
	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	vp := viewport.New(0, 0)

	filterInput := textinput.New()
	filterInput.Prompt = "Filter: "
	filterInput.CharLimit = 50

	searchInput := textinput.New()
	searchInput.Placeholder = "Search this conversation..."
	searchInput.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = CoachStyle

	return AppView{
		dataModel:             dataModel,
		viewport:              vp,
		textarea:              ta,
		typingSpinner:         sp,
		filterInput:           filterInput,
		messageSearchInput:    searchInput,
		highlightedMessageIdx: -1,
		messageLineOffsets:    make(map[int]int),
	}
}

func (a AppView) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		a.dataModel.LoadDirectory(a.dataModel.Config.DefaultCoach),
		a.dataModel.WaitForUpdate(),
	)
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.dataModel.Quitting {
		return ""
	}

	// Load failures replace the whole screen
	if a.loadErr != nil {
		return renderLoadError(a.loadErr, a.width, a.height)
	}

	// Modal priority (highest first):
	// 1. Delete confirmation
	// 2. File picker
	// 3. Help (can peek while in other modals)
	// 4. Message search
	// 5. About
	if a.confirmDelete.Active {
		return RenderConfirmationModal(a.confirmDelete, a.width, a.height)
	}

	if a.filePicker.Active {
		return RenderFilePickerModal(a.filePicker, a.width, a.height)
	}

	if a.showHelp {
		return a.renderHelpModal(a.width, a.height)
	}

	if a.showMessageSearch {
		return renderMessageSearch(a, a.messageSearchInput, a.messageSearchResults, a.selectedSearchIdx, a.width, a.height)
	}

	if a.showAbout {
		return renderAboutModal(a, a.width, a.height, a.dataModel.Version)
	}

	sidebar := a.renderCoachList(a.sidebarWidth(), a.height)

	chat := lipgloss.JoinVertical(
		lipgloss.Left,
		a.renderHeader(a.chatWidth()),
		"",
		a.viewport.View(),
		a.textarea.View(),
		a.renderStatusBar(a.chatWidth()),
	)

	divider := BorderStyle.Render(verticalRule(a.height))

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, divider, chat)
}

func (a AppView) sidebarWidth() int {
	w := a.width / 4
	w = max(w, minSidebarWidth)
	w = min(w, maxSidebarWidth)
	return w
}

func (a AppView) chatWidth() int {
	return max(a.width-a.sidebarWidth()-1, 10)
}

func (a *AppView) resize() {
	// Reserve space for header (1 line), separator (1 line), textarea (3 lines), and status bar (1 line)
	a.viewport.Width = a.chatWidth()
	a.viewport.Height = max(a.height-6, 1)
	a.textarea.SetWidth(a.chatWidth())
}

// setStatus flashes a notice in the status bar and schedules its removal.
func (a *AppView) setStatus(text string, isError bool) tea.Cmd {
	a.statusSeq++
	a.status = text
	a.statusIsError = isError

	seq := a.statusSeq
	return tea.Tick(statusDuration, func(time.Time) tea.Msg {
		return flashTickMsg{Seq: seq}
	})
}

// ensureSpinner starts the typing spinner when the active coach is responding.
func (a *AppView) ensureSpinner() tea.Cmd {
	if a.spinning || !a.activeResponding() {
		return nil
	}
	a.spinning = true
	return a.typingSpinner.Tick
}

func (a AppView) activeResponding() bool {
	coach, ok := a.dataModel.ActiveCoach()
	return ok && a.dataModel.Presence.IsResponding(coach.ID)
}

func (a *AppView) closeAllModals() {
	a.showHelp = false
	a.showAbout = false
	a.showMessageSearch = false
	a.confirmDelete = ConfirmationState{}
	a.deleteCoachID = ""
	a.deleteMessageID = ""
	a.filePicker.Reset()

	if a.messageSearchInput.Focused() {
		a.messageSearchInput.Blur()
	}
	a.exitFilterMode()
}

func (a *AppView) exitFilterMode() {
	a.filterMode = false
	a.filterIdx = 0
	a.filterInput.SetValue("")
	if a.filterInput.Focused() {
		a.filterInput.Blur()
	}
	a.textarea.Focus()
}

// listedCoaches is what the sidebar shows: the game-filtered directory,
// narrowed by the fuzzy filter while it is open.
func (a AppView) listedCoaches() []coachOption {
	visible := a.dataModel.VisibleCoaches()
	if a.filterMode {
		visible = directory.Search(visible, a.filterInput.Value())
	}
	out := make([]coachOption, len(visible))
	for i, c := range visible {
		out[i] = coachOption{Coach: c, Presence: a.dataModel.Presence.Display(c.ID)}
	}
	return out
}

func describeLoadError(err error) (string, string) {
	var dirErr *directory.DirectoryLoadError
	var histErr *model.HistoryLoadError
	switch {
	case errors.As(err, &dirErr):
		return "Could not load coaches", fmt.Sprintf("%v", dirErr.Err)
	case errors.As(err, &histErr):
		return "Could not load chat history", fmt.Sprintf("%v", histErr.Err)
	}
	return "Something went wrong", err.Error()
}
