package ui

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachtui/coachapi"
	"coachtui/coachapi/testutil"
	"coachtui/config"
	"coachtui/directory"
	"coachtui/model"
	"coachtui/storage"
)

func testCoaches() []coachapi.Coach {
	return []coachapi.Coach{
		{ID: "1", Name: "Kim", Role: "MOBA", Status: "online"},
		{ID: "2", Name: "Lee", Role: "Sports", Status: "away"},
		{ID: "3", Name: "Ana", Role: "Auto Battler", Status: "offline"},
	}
}

func newTestView(t *testing.T) (AppView, *model.Model, *testutil.MockBackend) {
	t.Helper()
	backend := testutil.NewMockBackend()
	cfg := &config.Config{Keybindings: config.DefaultKeybindings()}
	m := model.NewModel(cfg, backend, storage.NewMemoryPresenceStore(), "test")
	t.Cleanup(m.Shutdown)

	a := NewAppView(m)
	a = update(t, a, tea.WindowSizeMsg{Width: 120, Height: 40})
	return a, m, backend
}

func update(t *testing.T, a AppView, msg tea.Msg) AppView {
	t.Helper()
	next, _ := a.Update(msg)
	view, ok := next.(AppView)
	require.True(t, ok)
	return view
}

func updateCmd(t *testing.T, a AppView, msg tea.Msg) (AppView, tea.Cmd) {
	t.Helper()
	next, cmd := a.Update(msg)
	view, ok := next.(AppView)
	require.True(t, ok)
	return view, cmd
}

func altKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}, Alt: true}
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func loaded(t *testing.T, a AppView) AppView {
	t.Helper()
	return update(t, a, model.DirectoryLoadedMsg{Coaches: testCoaches()})
}

func TestDirectoryLoadedActivatesFirstByRole(t *testing.T) {
	a, m, _ := newTestView(t)
	a = loaded(t, a)

	coach, ok := m.ActiveCoach()
	require.True(t, ok)
	assert.Equal(t, "3", coach.ID, "Auto Battler sorts first")
	assert.True(t, a.loaded)
	assert.Contains(t, a.View(), "Ana")
}

func TestDirectoryLoadedFocus(t *testing.T) {
	a, m, _ := newTestView(t)
	a = update(t, a, model.DirectoryLoadedMsg{Coaches: testCoaches(), Focus: "2"})

	assert.Equal(t, "2", m.Switcher.Active().PartnerID)
	assert.Empty(t, a.status)

	a = update(t, a, model.DirectoryLoadedMsg{Coaches: testCoaches(), Focus: "99"})
	assert.Contains(t, a.status, `"99" not found`)
}

func TestNotLoggedInNoticeShownOnce(t *testing.T) {
	a, _, _ := newTestView(t)

	a = update(t, a, model.DirectoryLoadedMsg{Coaches: testCoaches(), NotLoggedIn: true})
	assert.Equal(t, loginNotice, a.status)
	assert.True(t, a.statusIsError)

	a = update(t, a, model.FlashTickMsg{Seq: a.statusSeq})
	assert.Empty(t, a.status)

	a = update(t, a, model.DirectoryLoadedMsg{Coaches: testCoaches(), NotLoggedIn: true})
	assert.Empty(t, a.status)
}

func TestLoadErrorShowsFullPanel(t *testing.T) {
	a, _, _ := newTestView(t)

	a = update(t, a, model.DirectoryLoadedMsg{Err: &directory.DirectoryLoadError{Err: errors.New("connection refused")}})
	view := a.View()
	assert.Contains(t, view, "Could not load coaches")
	assert.Contains(t, view, "connection refused")

	a = update(t, a, model.DirectoryLoadedMsg{Err: &model.HistoryLoadError{Err: errors.New("bad gateway")}})
	assert.Contains(t, a.View(), "Could not load chat history")

	// Retry clears the panel and reloads.
	a, cmd := updateCmd(t, a, runeKey('r'))
	assert.Nil(t, a.loadErr)
	assert.NotNil(t, cmd)
}

func TestFlashTickIgnoresStaleSequence(t *testing.T) {
	a, _, _ := newTestView(t)
	a = loaded(t, a)

	a.setStatus("first", false)
	stale := a.statusSeq
	a.setStatus("second", false)

	a = update(t, a, model.FlashTickMsg{Seq: stale})
	assert.Equal(t, "second", a.status)

	a = update(t, a, model.FlashTickMsg{Seq: a.statusSeq})
	assert.Empty(t, a.status)
}

func TestCycleCoachKeys(t *testing.T) {
	a, m, _ := newTestView(t)
	a = loaded(t, a)

	// Sorted by role: Ana (Auto Battler), Kim (MOBA), Lee (Sports)
	a = update(t, a, altKey('j'))
	assert.Equal(t, "1", m.Switcher.Active().PartnerID)

	a = update(t, a, altKey('j'))
	assert.Equal(t, "2", m.Switcher.Active().PartnerID)

	a = update(t, a, altKey('j'))
	assert.Equal(t, "3", m.Switcher.Active().PartnerID)

	update(t, a, altKey('k'))
	assert.Equal(t, "2", m.Switcher.Active().PartnerID)
}

func TestDeleteHistoryNeedsConfirmation(t *testing.T) {
	a, m, backend := newTestView(t)
	a = loaded(t, a)
	m.History.Replace("3", []storage.Message{{Text: "hi", IsUser: true}})
	m.Switcher.Refresh()

	a = update(t, a, altKey('d'))
	assert.True(t, a.confirmDelete.Active)
	assert.Contains(t, a.View(), "Delete chat history?")

	a = update(t, a, runeKey('n'))
	assert.False(t, a.confirmDelete.Active)
	assert.Zero(t, backend.CallCount("DeleteChatHistory"))

	a = update(t, a, altKey('d'))
	a, cmd := updateCmd(t, a, runeKey('y'))
	require.NotNil(t, cmd)
	assert.False(t, a.confirmDelete.Active)

	msg := cmd()
	deleted, ok := msg.(model.HistoryDeletedMsg)
	require.True(t, ok)
	assert.Equal(t, "3", deleted.CoachID)
	assert.NoError(t, deleted.Err)
	assert.Equal(t, 1, backend.CallCount("DeleteChatHistory"))
	assert.Empty(t, m.Switcher.Transcript())

	a = update(t, a, deleted)
	assert.Equal(t, "Chat history deleted", a.status)
}

func TestGameCommandFiltersList(t *testing.T) {
	a, m, _ := newTestView(t)
	a = loaded(t, a)

	a.textarea.SetValue("/game lol")
	a = update(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "lol", m.Game)
	assert.Contains(t, a.status, "League of Legends")
	assert.Empty(t, a.textarea.Value())

	visible := m.VisibleCoaches()
	require.Len(t, visible, 1)
	assert.Equal(t, "Kim", visible[0].Name)

	a.textarea.SetValue("/game nope")
	a = update(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, m.Game)
	assert.True(t, a.statusIsError)
}

func TestUnknownCommandFlashesError(t *testing.T) {
	a, _, backend := newTestView(t)
	a = loaded(t, a)

	a.textarea.SetValue("/dance")
	a = update(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, a.status, "unknown command")
	assert.True(t, a.statusIsError)
	assert.Equal(t, "/dance", a.textarea.Value())
	assert.Zero(t, backend.CallCount("Chat"))
}

func TestSubmitTextStartsSend(t *testing.T) {
	a, m, _ := newTestView(t)
	a = loaded(t, a)

	a.textarea.SetValue("  how do I climb?  ")
	a, cmd := updateCmd(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotNil(t, cmd)
	assert.Equal(t, 1, m.Pending)
	assert.Empty(t, a.textarea.Value())

	a = update(t, a, model.SendFinishedMsg{PartnerID: "3", Result: model.Result{Outcome: model.OutcomeDelivered}})
	assert.Zero(t, m.Pending)
	assert.Empty(t, a.status)
}

func TestSubmitWithoutCoach(t *testing.T) {
	a, _, _ := newTestView(t)

	a.textarea.SetValue("hello?")
	a = update(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "Select a coach first", a.status)
}

func TestSendFinishedReportsFailure(t *testing.T) {
	a, m, _ := newTestView(t)
	a = loaded(t, a)
	m.Pending = 1

	a = update(t, a, model.SendFinishedMsg{PartnerID: "3", Result: model.Result{
		Outcome: model.OutcomeFailed,
		Err:     &coachapi.NetworkError{StatusCode: 502, Message: "bad gateway"},
	}})
	assert.Zero(t, m.Pending)
	assert.Equal(t, "network error (502): bad gateway", a.status)
	assert.True(t, a.statusIsError)
}

func TestSendFinishedInBackground(t *testing.T) {
	a, _, _ := newTestView(t)
	a = loaded(t, a)

	a = update(t, a, model.SendFinishedMsg{PartnerID: "1", Result: model.Result{Outcome: model.OutcomeBackground}})
	assert.Equal(t, "New reply from Kim", a.status)
}

func TestFilterModeSelectsCoach(t *testing.T) {
	a, m, _ := newTestView(t)
	a = loaded(t, a)

	a = update(t, a, altKey('/'))
	require.True(t, a.filterMode)

	for _, r := range "lee" {
		a = update(t, a, runeKey(r))
	}
	listed := a.listedCoaches()
	require.NotEmpty(t, listed)
	assert.Equal(t, "Lee", listed[0].Coach.Name)

	a = update(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, a.filterMode)
	assert.Equal(t, "2", m.Switcher.Active().PartnerID)
}

func TestMessageSearchJumps(t *testing.T) {
	a, m, _ := newTestView(t)
	a = loaded(t, a)
	m.History.Replace("3", []storage.Message{
		{Text: "how to position early", IsUser: true},
		{Text: "stay on the second row"},
		{Text: "thanks!", IsUser: true},
	})
	m.Switcher.Refresh()
	a = update(t, a, model.StateChangedMsg{})

	a = update(t, a, altKey('f'))
	require.True(t, a.showMessageSearch)

	for _, r := range "row" {
		a = update(t, a, runeKey(r))
	}
	require.Len(t, a.messageSearchResults, 1)
	assert.Equal(t, 1, a.messageSearchResults[0].MessageIndex)

	a, cmd := updateCmd(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotNil(t, cmd)
	assert.False(t, a.showMessageSearch)
	assert.Equal(t, 1, a.highlightedMessageIdx)
	assert.Contains(t, a.viewport.View(), ">>> ")
}

func TestHelpModal(t *testing.T) {
	a, _, _ := newTestView(t)
	a = loaded(t, a)

	a = update(t, a, altKey('h'))
	require.True(t, a.showHelp)
	view := a.View()
	assert.Contains(t, view, "/image")
	assert.Contains(t, view, "Esc to close this help")

	a = update(t, a, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, a.showHelp)
}

func TestQuitShutsDownModel(t *testing.T) {
	a, m, _ := newTestView(t)
	a = loaded(t, a)

	_, cmd := updateCmd(t, a, altKey('q'))
	require.NotNil(t, cmd)
	assert.True(t, m.Quitting)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestAttachPickerOpensAndCancels(t *testing.T) {
	a, _, _ := newTestView(t)
	a = loaded(t, a)

	a = update(t, a, altKey('o'))
	require.True(t, a.filePicker.Active)
	assert.Equal(t, FilePickerModeAttach, a.filePicker.Config.Mode)
	assert.Contains(t, a.filePicker.Picker.AllowedTypes, ".png")
	assert.Contains(t, a.filePicker.Picker.AllowedTypes, ".ogg")
	assert.Contains(t, a.View(), "Attach Image or Voice Message")

	a = update(t, a, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, a.filePicker.Active)
	assert.True(t, a.textarea.Focused())
}

func TestAttachPickerNeedsCoach(t *testing.T) {
	a, _, _ := newTestView(t)

	a = update(t, a, altKey('o'))
	assert.False(t, a.filePicker.Active)
	assert.Equal(t, "Select a coach first", a.status)
}

func TestExportPickerListsFolders(t *testing.T) {
	a, _, _ := newTestView(t)
	a = loaded(t, a)

	a = update(t, a, altKey('X'))
	require.True(t, a.filePicker.Active)
	assert.Equal(t, FilePickerModeExport, a.filePicker.Config.Mode)
	assert.True(t, a.filePicker.Picker.DirAllowed)
	assert.False(t, a.filePicker.Picker.FileAllowed)
}

func TestFilePickerChosenMatchesMode(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "shot.png")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))

	tests := []struct {
		name string
		cfg  FilePickerConfig
		path string
		ok   bool
	}{
		{"attach file", AttachPickerConfig(), file, true},
		{"attach folder", AttachPickerConfig(), dir, false},
		{"export folder", ExportPickerConfig(), dir, true},
		{"export file", ExportPickerConfig(), file, false},
		{"missing", AttachPickerConfig(), filepath.Join(dir, "gone.png"), false},
		{"nothing picked", AttachPickerConfig(), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fps := NewFilePickerState(tt.cfg)
			fps.Activate()
			fps.Picker.Path = tt.path

			got, ok := fps.Chosen()
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.path, got)
				return
			}
			assert.Empty(t, fps.Picker.Path)
		})
	}
}

func TestPickedImageSendsWithCaption(t *testing.T) {
	a, m, _ := newTestView(t)
	a = loaded(t, a)

	path := filepath.Join(t.TempDir(), "shot.png")
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))

	a, _ = updateCmd(t, a, altKey('o'))
	a.textarea.SetValue("my build")

	next, cmd := a.usePickedPath(path)
	a = next.(AppView)
	require.NotNil(t, cmd)
	assert.False(t, a.filePicker.Active)
	assert.Empty(t, a.textarea.Value())
	assert.Equal(t, 1, m.Pending)

	stored := m.History.Get("3")
	require.Len(t, stored, 1)
	assert.True(t, stored[0].IsUser)
	assert.Equal(t, "my build", stored[0].PlainText())
	_, hasImage := stored[0].ImagePart()
	assert.True(t, hasImage)
}

func TestPickedRecordingSendsAudio(t *testing.T) {
	a, m, _ := newTestView(t)
	a = loaded(t, a)

	path := filepath.Join(t.TempDir(), "clip.ogg")
	require.NoError(t, os.WriteFile(path, []byte("OggS\x00\x02\x00\x00\x00\x00"), 0600))

	a, _ = updateCmd(t, a, altKey('o'))
	a.textarea.SetValue("kept")

	next, cmd := a.usePickedPath(path)
	a = next.(AppView)
	require.NotNil(t, cmd)
	assert.Equal(t, "kept", a.textarea.Value())

	stored := m.History.Get("3")
	require.Len(t, stored, 1)
	assert.True(t, stored[0].IsAudio)
}

func TestPickedFolderReceivesExport(t *testing.T) {
	a, m, _ := newTestView(t)
	a = loaded(t, a)
	m.History.Append("3", storage.Message{Text: "gg", IsUser: true})

	dir := t.TempDir()
	a, _ = updateCmd(t, a, altKey('X'))

	_, cmd := a.usePickedPath(dir)
	require.NotNil(t, cmd)

	exported, ok := cmd().(model.HistoryExportedMsg)
	require.True(t, ok)
	require.NoError(t, exported.Err)
	assert.Equal(t, dir, filepath.Dir(exported.Path))
	assert.Contains(t, filepath.Base(exported.Path), "Ana")
	assert.FileExists(t, exported.Path)
}

func TestDeleteLastUserMessage(t *testing.T) {
	a, m, _ := newTestView(t)
	a = loaded(t, a)
	m.History.Replace("3", []storage.Message{
		{ID: "q1", Text: "first question", IsUser: true},
		{ID: "r1", Text: "answer"},
		{ID: "q2", Text: "typo question", IsUser: true},
	})
	m.Switcher.Refresh()

	deleteKey := altKey('r')

	a = update(t, a, deleteKey)
	require.True(t, a.confirmDelete.Active)
	assert.Contains(t, a.View(), "typo question")

	a = update(t, a, runeKey('n'))
	assert.False(t, a.confirmDelete.Active)
	assert.Len(t, m.Switcher.Transcript(), 3)

	a = update(t, a, deleteKey)
	a = update(t, a, runeKey('y'))
	assert.Equal(t, "Message deleted", a.status)
	assert.Equal(t, []string{"q1", "r1"}, ids(m.Switcher.Transcript()))

	m.SelectCoach("1")
	m.SelectCoach("3")
	assert.Equal(t, []string{"q1", "r1"}, ids(m.History.Get("3")))
}

func TestDeleteMessageWithoutUserMessages(t *testing.T) {
	a, m, _ := newTestView(t)
	a = loaded(t, a)
	m.History.Replace("3", []storage.Message{{Text: "welcome"}})
	m.Switcher.Refresh()

	a = update(t, a, altKey('r'))
	assert.False(t, a.confirmDelete.Active)
	assert.True(t, a.statusIsError)
}

func ids(msgs []storage.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}
