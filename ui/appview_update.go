package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"coachtui/config"
	"coachtui/directory"
	"coachtui/model"
)

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	// The picker reads directories through its own messages. Keys go through
	// handleFilePicker so a selection can be checked first.
	if a.filePicker.Active {
		if _, isKey := msg.(tea.KeyMsg); !isKey {
			a.filePicker.Picker, cmd = a.filePicker.Picker.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		a.ready = true
		a.updateViewportContent(true)
		return a, nil

	case spinner.TickMsg:
		if !a.activeResponding() {
			a.spinning = false
			return a, nil
		}
		a.typingSpinner, cmd = a.typingSpinner.Update(msg)
		return a, cmd

	case directoryLoadedMsg:
		return a.handleDirectoryLoaded(msg)

	case stateChangedMsg:
		atBottom := a.viewport.AtBottom()
		a.updateViewportContent(atBottom)
		cmds = append(cmds, a.dataModel.WaitForUpdate())
		if cmd := a.ensureSpinner(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case sendFinishedMsg:
		a.dataModel.Pending = max(a.dataModel.Pending-1, 0)
		if config.DebugLog != nil {
			config.DebugLog.Printf("[AppView] send to %s finished: outcome=%v err=%v", msg.PartnerID, msg.Result.Outcome, msg.Result.Err)
		}
		if msg.Result.Outcome == model.OutcomeCancelled {
			return a, nil
		}
		a.updateViewportContent(a.viewport.AtBottom())
		if summary := msg.Result.Summary(); summary != "" {
			statusCmd := a.setStatus(summary, true)
			return a, statusCmd
		}
		if msg.Result.Outcome == model.OutcomeBackground {
			if c, ok := directory.Find(a.dataModel.Coaches, msg.PartnerID); ok {
				statusCmd := a.setStatus(fmt.Sprintf("New reply from %s", c.Name), false)
				return a, statusCmd
			}
		}
		return a, nil

	case historyDeletedMsg:
		if msg.Err != nil {
			statusCmd := a.setStatus(fmt.Sprintf("Failed to delete chat history: %v", msg.Err), true)
			return a, statusCmd
		}
		a.updateViewportContent(true)
		statusCmd := a.setStatus("Chat history deleted", false)
		return a, statusCmd

	case historyExportedMsg:
		if msg.Err != nil {
			statusCmd := a.setStatus(fmt.Sprintf("Export failed: %v", msg.Err), true)
			return a, statusCmd
		}
		statusCmd := a.setStatus("Exported to "+msg.Path, false)
		return a, statusCmd

	case flashTickMsg:
		if msg.Seq == a.statusSeq {
			a.status = ""
			a.statusIsError = false
		}
		return a, nil

	case highlightTickMsg:
		if a.highlightFlashCount > 0 && a.highlightFlashCount < 6 {
			a.highlightFlashCount++
			a.updateViewportContent(false)
			return a, tea.Tick(300*time.Millisecond, func(time.Time) tea.Msg {
				return highlightTickMsg{}
			})
		}
		a.highlightedMessageIdx = -1
		a.highlightFlashCount = 0
		a.updateViewportContent(false)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	a.textarea, cmd = a.textarea.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

func (a AppView) handleDirectoryLoaded(msg directoryLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[AppView] directory load failed: %v", msg.Err)
		}
		a.loadErr = msg.Err
		return a, nil
	}

	a.loadErr = nil
	a.loaded = true
	activated := a.dataModel.ApplyDirectory(msg)
	a.updateViewportContent(true)

	var cmds []tea.Cmd
	if cmd := a.ensureSpinner(); cmd != nil {
		cmds = append(cmds, cmd)
	}

	switch {
	case msg.NotLoggedIn && !a.loginNoticeShown:
		a.loginNoticeShown = true
		cmds = append(cmds, a.setStatus(loginNotice, true))
	case !activated:
		cmds = append(cmds, a.setStatus("No coaches available right now", true))
	case msg.Focus != "" && a.dataModel.Switcher.Active().PartnerID != msg.Focus:
		cmds = append(cmds, a.setStatus(fmt.Sprintf("Coach %q not found", msg.Focus), true))
	}

	return a, tea.Batch(cmds...)
}

// submit sends what is in the input area to the active coach.
func (a AppView) submit() (tea.Model, tea.Cmd) {
	input, err := parseInput(a.textarea.Value())
	if errors.Is(err, errEmptyInput) {
		return a, nil
	}
	if err != nil {
		statusCmd := a.setStatus(err.Error(), true)
		return a, statusCmd
	}

	switch input.Kind {
	case cmdGame:
		a.textarea.Reset()
		return a.applyGame(input.Game)

	case cmdRefresh:
		a.textarea.Reset()
		statusCmd := a.setStatus("Refreshing coaches...", false)
		return a, tea.Batch(a.dataModel.ReloadDirectory(), statusCmd)
	}

	coach, ok := a.dataModel.ActiveCoach()
	if !ok {
		statusCmd := a.setStatus("Select a coach first", true)
		return a, statusCmd
	}

	var cmd tea.Cmd
	switch input.Kind {
	case cmdText:
		cmd = a.dataModel.SendText(input.Text)
	case cmdImage:
		cmd = a.dataModel.SendImageFile(input.Path, input.Text)
	case cmdAudio:
		cmd = a.dataModel.SendAudioFile(input.Path)
	}
	if cmd == nil {
		return a, nil
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[AppView] submit kind=%d to %s", input.Kind, coach.ID)
	}

	a.textarea.Reset()
	a.updateViewportContent(true)
	return a, cmd
}

func (a AppView) applyGame(key string) (tea.Model, tea.Cmd) {
	if key == "" {
		a.dataModel.SetGame("")
		statusCmd := a.setStatus("Showing coaches for all games", false)
		return a, statusCmd
	}

	g, ok := a.dataModel.SetGame(key)
	if !ok {
		statusCmd := a.setStatus(fmt.Sprintf("Unknown game %q, showing all coaches", key), true)
		return a, statusCmd
	}
	statusCmd := a.setStatus(fmt.Sprintf("Showing %s coaches", g.Name), false)
	return a, statusCmd
}

func (a AppView) quit() (tea.Model, tea.Cmd) {
	a.dataModel.Shutdown()
	return a, tea.Quit
}
