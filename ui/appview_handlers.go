package ui

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"coachtui/config"
	"coachtui/media"
	"coachtui/storage"
)

func (a AppView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kb := a.dataModel.Config.Keybindings
	k := msg.String()

	if k == "ctrl+c" {
		return a.quit()
	}

	if a.loadErr != nil {
		return a.handleLoadErrorKeys(k)
	}

	if a.confirmDelete.Active {
		return a.handleDeleteConfirmation(k)
	}

	if a.filePicker.Active {
		return a.handleFilePicker(msg)
	}

	if a.showHelp {
		if k == "esc" || k == kb.GetActionKey("help") {
			a.showHelp = false
		}
		return a, nil
	}

	if a.showMessageSearch {
		return a.handleMessageSearch(msg)
	}

	if a.showAbout {
		if k == "esc" || k == kb.GetActionKey("about") {
			a.showAbout = false
		}
		return a, nil
	}

	if a.filterMode {
		return a.handleFilterMode(msg)
	}

	switch k {
	case kb.GetActionKey("quit"):
		return a.quit()

	case kb.GetActionKey("help"):
		a.showHelp = true
		return a, nil

	case kb.GetActionKey("about"):
		a.showAbout = true
		return a, nil

	case kb.GetActionKey("filter_coaches"):
		a.filterMode = true
		a.filterIdx = 0
		a.textarea.Blur()
		cmd := a.filterInput.Focus()
		return a, cmd

	case kb.GetActionKey("search_messages"):
		if _, ok := a.dataModel.ActiveCoach(); !ok {
			return a, nil
		}
		a.showMessageSearch = true
		a.messageSearchInput.SetValue("")
		a.messageSearchResults = nil
		a.selectedSearchIdx = 0
		cmd := a.messageSearchInput.Focus()
		return a, cmd

	case kb.GetActionKey("next_coach"), kb.GetActionKey("prev_coach"):
		delta := 1
		if k == kb.GetActionKey("prev_coach") {
			delta = -1
		}
		if a.dataModel.CycleCoach(delta) {
			a.updateViewportContent(true)
		}
		cmd := a.ensureSpinner()
		return a, cmd

	case kb.GetActionKey("delete_history"):
		coach, ok := a.dataModel.ActiveCoach()
		if !ok {
			return a, nil
		}
		a.deleteCoachID = coach.ID
		a.confirmDelete = ConfirmationState{
			Active:  true,
			Title:   "Delete chat history?",
			Message: fmt.Sprintf("Your whole conversation with %s will be removed.\nThis cannot be undone.", coach.Name),
		}
		return a, nil

	case kb.GetActionKey("delete_message"):
		last, ok := a.dataModel.Switcher.LastUserMessage()
		if !ok {
			statusCmd := a.setStatus("No message of yours to delete", true)
			return a, statusCmd
		}
		a.deleteMessageID = last.ID
		a.confirmDelete = ConfirmationState{
			Active:  true,
			Title:   "Delete message?",
			Message: fmt.Sprintf("%q\nwill be removed from this conversation.", runewidth.Truncate(last.PlainText(), 60, "…")),
		}
		return a, nil

	case kb.GetActionKey("export_history"):
		coach, ok := a.dataModel.ActiveCoach()
		if !ok {
			return a, nil
		}
		return a, a.dataModel.ExportHistory(coach.ID, coach.Name, "")

	case kb.GetActionKey("export_history_to"):
		if _, ok := a.dataModel.ActiveCoach(); !ok {
			return a, nil
		}
		return a.openFilePicker(ExportPickerConfig())

	case kb.GetActionKey("attach_file"):
		if _, ok := a.dataModel.ActiveCoach(); !ok {
			statusCmd := a.setStatus("Select a coach first", true)
			return a, statusCmd
		}
		return a.openFilePicker(AttachPickerConfig())

	case kb.GetActionKey("yank_last_response"):
		reply, ok := a.dataModel.LastCoachReply()
		if !ok {
			statusCmd := a.setStatus("Nothing to copy yet", true)
			return a, statusCmd
		}
		if err := clipboard.WriteAll(reply); err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[AppView] clipboard write failed: %v", err)
			}
			statusCmd := a.setStatus("Clipboard unavailable", true)
			return a, statusCmd
		}
		statusCmd := a.setStatus("Copied last reply", false)
		return a, statusCmd

	case kb.GetActionKey("page_down"):
		a.viewport.ViewDown()
		return a, nil

	case kb.GetActionKey("page_up"):
		a.viewport.ViewUp()
		return a, nil

	case kb.GetActionKey("scroll_to_top"):
		a.viewport.GotoTop()
		return a, nil

	case kb.GetActionKey("scroll_to_bottom"):
		a.viewport.GotoBottom()
		return a, nil

	case kb.GetActionKey("clear_input"):
		a.textarea.Reset()
		return a, nil

	case "pgdown":
		a.viewport.HalfViewDown()
		return a, nil

	case "pgup":
		a.viewport.HalfViewUp()
		return a, nil

	case "enter":
		return a.submit()
	}

	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	return a, cmd
}

func (a AppView) handleLoadErrorKeys(k string) (tea.Model, tea.Cmd) {
	switch k {
	case "r":
		a.loadErr = nil
		a.loaded = false
		return a, a.dataModel.ReloadDirectory()
	case "enter", "esc", "q":
		return a.quit()
	}
	return a, nil
}

func (a AppView) handleDeleteConfirmation(k string) (tea.Model, tea.Cmd) {
	switch k {
	case "y", "Y":
		coachID, msgID := a.deleteCoachID, a.deleteMessageID
		a.confirmDelete = ConfirmationState{}
		a.deleteCoachID = ""
		a.deleteMessageID = ""
		if msgID == "" {
			return a, a.dataModel.DeleteHistory(coachID)
		}
		if !a.dataModel.Switcher.RemoveFromTranscript(msgID) {
			statusCmd := a.setStatus("Message is no longer on screen", true)
			return a, statusCmd
		}
		a.updateViewportContent(false)
		statusCmd := a.setStatus("Message deleted", false)
		return a, statusCmd
	case "n", "N", "esc":
		a.confirmDelete = ConfirmationState{}
		a.deleteCoachID = ""
		a.deleteMessageID = ""
	}
	return a, nil
}

func (a AppView) openFilePicker(cfg FilePickerConfig) (tea.Model, tea.Cmd) {
	a.filePicker = NewFilePickerState(cfg)
	a.filePicker.Activate()
	a.textarea.Blur()
	return a, a.filePicker.Picker.Init()
}

func (a AppView) handleFilePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		a.filePicker.Reset()
		a.textarea.Focus()
		return a, nil
	}

	var cmd tea.Cmd
	a.filePicker.Picker, cmd = a.filePicker.Picker.Update(msg)

	if path, ok := a.filePicker.Chosen(); ok {
		return a.usePickedPath(path)
	}
	return a, cmd
}

// usePickedPath closes the picker and acts on its result: attachments are
// sent to the active coach, directories receive an export.
func (a AppView) usePickedPath(path string) (tea.Model, tea.Cmd) {
	mode := a.filePicker.Config.Mode
	a.filePicker.Reset()
	a.textarea.Focus()

	if config.DebugLog != nil {
		config.DebugLog.Printf("[AppView] picked %s (mode=%d)", path, mode)
	}

	coach, ok := a.dataModel.ActiveCoach()
	if !ok {
		statusCmd := a.setStatus("Select a coach first", true)
		return a, statusCmd
	}

	if mode == FilePickerModeExport {
		target := filepath.Join(path, filepath.Base(storage.GenerateExportPath(coach.Name)))
		return a, a.dataModel.ExportHistory(coach.ID, coach.Name, target)
	}

	var sendCmd tea.Cmd
	if media.IsAudioFile(path) {
		sendCmd = a.dataModel.SendAudioFile(path)
	} else {
		sendCmd = a.dataModel.SendImageFile(path, a.textarea.Value())
		a.textarea.Reset()
	}
	a.updateViewportContent(true)
	return a, sendCmd
}

func (a AppView) handleFilterMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kb := a.dataModel.Config.Keybindings
	coaches := a.listedCoaches()

	switch msg.String() {
	case "esc":
		a.exitFilterMode()
		return a, nil

	case kb.GetActionKey("filter_down"), "down":
		if a.filterIdx < len(coaches)-1 {
			a.filterIdx++
		}
		return a, nil

	case kb.GetActionKey("filter_up"), "up":
		if a.filterIdx > 0 {
			a.filterIdx--
		}
		return a, nil

	case kb.GetActionKey("clear_input"):
		a.filterInput.SetValue("")
		a.filterIdx = 0
		return a, nil

	case "enter":
		if len(coaches) == 0 {
			return a, nil
		}
		idx := min(a.filterIdx, len(coaches)-1)
		a.dataModel.SelectCoach(coaches[idx].Coach.ID)
		a.exitFilterMode()
		a.updateViewportContent(true)
		cmd := a.ensureSpinner()
		return a, cmd
	}

	var cmd tea.Cmd
	a.filterInput, cmd = a.filterInput.Update(msg)
	a.filterIdx = 0
	return a, cmd
}

func (a AppView) handleMessageSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kb := a.dataModel.Config.Keybindings

	switch msg.String() {
	case "esc":
		a.showMessageSearch = false
		a.messageSearchInput.Blur()
		return a, nil

	case kb.GetActionKey("filter_down"), "down":
		if a.selectedSearchIdx < len(a.messageSearchResults)-1 {
			a.selectedSearchIdx++
		}
		return a, nil

	case kb.GetActionKey("filter_up"), "up":
		if a.selectedSearchIdx > 0 {
			a.selectedSearchIdx--
		}
		return a, nil

	case "enter":
		if len(a.messageSearchResults) == 0 {
			return a, nil
		}
		match := a.messageSearchResults[a.selectedSearchIdx]
		a.showMessageSearch = false
		a.messageSearchInput.Blur()
		return a.jumpToMessage(match.MessageIndex)
	}

	var cmd tea.Cmd
	a.messageSearchInput, cmd = a.messageSearchInput.Update(msg)

	tok := a.dataModel.Switcher.Active()
	a.messageSearchResults = storage.SearchMessages(tok.PartnerID, a.dataModel.Switcher.Transcript(), a.messageSearchInput.Value())
	a.selectedSearchIdx = 0
	return a, cmd
}

// jumpToMessage centers the transcript on a message and flashes it.
func (a AppView) jumpToMessage(messageIdx int) (tea.Model, tea.Cmd) {
	a.highlightedMessageIdx = messageIdx
	a.highlightFlashCount = 1
	a.updateViewportContent(false)

	offset, ok := a.messageLineOffsets[messageIdx]
	if ok {
		centerOffset := max(offset-a.viewport.Height/2, 0)
		a.viewport.SetYOffset(centerOffset)
	}

	return a, tea.Tick(300*time.Millisecond, func(time.Time) tea.Msg {
		return highlightTickMsg{}
	})
}
