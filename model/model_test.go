package model

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachtui/coachapi"
	"coachtui/coachapi/testutil"
	"coachtui/config"
	"coachtui/directory"
	"coachtui/storage"
)

func testCoaches() []coachapi.Coach {
	return []coachapi.Coach{
		{ID: "1", Name: "Kim", Role: "MOBA", Status: "online"},
		{ID: "2", Name: "Lee", Role: "Sports"},
		{ID: "3", Name: "Ana", Role: "Auto Battler", Status: "away"},
	}
}

func newTestModel(t *testing.T) (*Model, *testutil.MockBackend) {
	t.Helper()
	backend := testutil.NewMockBackend()
	backend.ListCoachesFunc = func(ctx context.Context) ([]coachapi.Coach, error) {
		return testCoaches(), nil
	}
	m := NewModel(&config.Config{}, backend, storage.NewMemoryPresenceStore(), "test")
	t.Cleanup(m.Shutdown)
	return m, backend
}

// withInstantSends swaps in a lifecycle that never waits.
func withInstantSends(m *Model) {
	m.Lifecycle = NewLifecycle(LifecycleDeps{
		Backend:  m.Backend,
		History:  m.History,
		Tracker:  m.Presence,
		Switcher: m.Switcher,
		Sleep:    func(ctx context.Context, d time.Duration) error { return ctx.Err() },
		Notify:   m.signal,
	})
}

func TestLoadDirectoryGroupsHistory(t *testing.T) {
	m, backend := newTestModel(t)
	backend.ChatHistoryFunc = func(ctx context.Context, coachID string) ([]coachapi.HistoryRecord, error) {
		assert.Empty(t, coachID)
		return []coachapi.HistoryRecord{
			{CoachID: "1", Message: storage.Message{Text: "k1", IsUser: true}},
			{CoachID: "2", Message: storage.Message{Text: "l1", IsUser: true}},
			{CoachID: "1", Message: storage.Message{Text: "k2"}},
		}, nil
	}

	msg := m.loadDirectory("")
	require.NoError(t, msg.Err)
	assert.False(t, msg.NotLoggedIn)
	assert.Len(t, msg.Coaches, 3)

	assert.Equal(t, []string{"k1", "k2"}, texts(m.History.Get("1")))
	assert.Equal(t, []string{"l1"}, texts(m.History.Get("2")))

	// Presence seeded for every coach.
	assert.Equal(t, "online", string(m.Presence.Current("1")))
	assert.Equal(t, "away", string(m.Presence.Current("3")))

	require.True(t, m.ApplyDirectory(msg))
	// First coach by role is Ana (Auto Battler).
	assert.Equal(t, "3", m.Switcher.Active().PartnerID)
}

func TestLoadDirectoryFocusCoach(t *testing.T) {
	m, backend := newTestModel(t)
	backend.ChatHistoryFunc = func(ctx context.Context, coachID string) ([]coachapi.HistoryRecord, error) {
		assert.Equal(t, "2", coachID)
		return []coachapi.HistoryRecord{
			{Message: storage.Message{Text: "hi", IsUser: true}},
			{Message: storage.Message{Text: "hello"}},
		}, nil
	}

	msg := m.loadDirectory("2")
	require.NoError(t, msg.Err)
	require.True(t, m.ApplyDirectory(msg))

	assert.Equal(t, "2", m.Switcher.Active().PartnerID)
	assert.Equal(t, []string{"hi", "hello"}, texts(m.Switcher.Transcript()))
}

func TestLoadDirectoryNotLoggedIn(t *testing.T) {
	m, backend := newTestModel(t)
	backend.ChatHistoryFunc = func(ctx context.Context, coachID string) ([]coachapi.HistoryRecord, error) {
		return nil, coachapi.ErrNotLoggedIn
	}

	msg := m.loadDirectory("")
	require.NoError(t, msg.Err)
	assert.True(t, msg.NotLoggedIn)
	assert.Len(t, msg.Coaches, 3)
	assert.Empty(t, m.History.Partners())
}

func TestLoadDirectoryHistoryFailure(t *testing.T) {
	m, backend := newTestModel(t)
	backend.ChatHistoryFunc = func(ctx context.Context, coachID string) ([]coachapi.HistoryRecord, error) {
		return nil, &coachapi.NetworkError{StatusCode: 500, Message: "boom"}
	}

	msg := m.loadDirectory("")
	var histErr *HistoryLoadError
	require.True(t, errors.As(msg.Err, &histErr))
	assert.False(t, m.ApplyDirectory(msg))
	assert.Empty(t, m.Coaches)
}

func TestLoadDirectoryCoachFailure(t *testing.T) {
	m, backend := newTestModel(t)
	backend.ListCoachesFunc = func(ctx context.Context) ([]coachapi.Coach, error) {
		return nil, &coachapi.NetworkError{StatusCode: 503, Message: "Service Unavailable"}
	}

	msg := m.loadDirectory("")
	var loadErr *directory.DirectoryLoadError
	require.True(t, errors.As(msg.Err, &loadErr))
	assert.Nil(t, msg.Coaches)
	assert.Equal(t, 0, backend.CallCount("ChatHistory"))
}

func TestReloadKeepsActiveWithoutDuplicates(t *testing.T) {
	m, backend := newTestModel(t)
	backend.ChatHistoryFunc = func(ctx context.Context, coachID string) ([]coachapi.HistoryRecord, error) {
		return []coachapi.HistoryRecord{{CoachID: "1", Message: storage.Message{Text: "stored"}}}, nil
	}

	require.True(t, m.ApplyDirectory(m.loadDirectory("1")))
	require.True(t, m.ApplyDirectory(m.loadDirectory("")))

	assert.Equal(t, "1", m.Switcher.Active().PartnerID)
	assert.Equal(t, []string{"stored"}, texts(m.Switcher.Transcript()))

	m.SelectCoach("2")
	assert.Equal(t, []string{"stored"}, texts(m.History.Get("1")))
}

func TestLoadDirectoryKeepsMessagesSentDuringFetch(t *testing.T) {
	m, backend := newTestModel(t)
	m.History.Append("1", Message{Text: "before load", IsUser: true})

	backend.ChatHistoryFunc = func(ctx context.Context, coachID string) ([]coachapi.HistoryRecord, error) {
		m.History.Append("1", Message{Text: "sent meanwhile", IsUser: true})
		return []coachapi.HistoryRecord{
			{CoachID: "1", Message: storage.Message{Text: "before load", IsUser: true}},
			{CoachID: "1", Message: storage.Message{Text: "server reply"}},
		}, nil
	}

	msg := m.loadDirectory("")
	require.NoError(t, msg.Err)

	assert.Equal(t, []string{"before load", "server reply", "sent meanwhile"}, texts(m.History.Get("1")))
}

func TestCycleCoachAndGameFilter(t *testing.T) {
	m, _ := newTestModel(t)
	require.True(t, m.ApplyDirectory(m.loadDirectory("")))

	// Sorted: Ana (Auto Battler), Kim (MOBA), Lee (Sports).
	assert.Equal(t, "3", m.Switcher.Active().PartnerID)
	m.CycleCoach(1)
	assert.Equal(t, "1", m.Switcher.Active().PartnerID)
	m.CycleCoach(1)
	m.CycleCoach(1)
	assert.Equal(t, "3", m.Switcher.Active().PartnerID)
	m.CycleCoach(-1)
	assert.Equal(t, "2", m.Switcher.Active().PartnerID)

	g, ok := m.SetGame("lol")
	require.True(t, ok)
	assert.Equal(t, "MOBA", g.Genre)
	visible := m.VisibleCoaches()
	require.Len(t, visible, 1)
	assert.Equal(t, "Kim", visible[0].Name)

	_, ok = m.SetGame("all")
	assert.False(t, ok)
	assert.Len(t, m.VisibleCoaches(), 3)
}

func TestLastCoachReply(t *testing.T) {
	m, _ := newTestModel(t)
	tok := m.SelectCoach("1")

	_, ok := m.LastCoachReply()
	assert.False(t, ok)

	for _, msg := range []Message{
		{Text: "q", IsUser: true},
		{Text: "answer"},
		{Text: "oops", IsError: true},
	} {
		m.Switcher.RenderIfActive(tok, m.History.Append("1", msg))
	}

	reply, ok := m.LastCoachReply()
	require.True(t, ok)
	assert.Equal(t, "answer", reply)
}

func TestDeleteHistoryCmd(t *testing.T) {
	m, backend := newTestModel(t)
	tok := m.SelectCoach("1")
	m.Switcher.RenderIfActive(tok, m.History.Append("1", Message{Text: "x"}))

	msg := m.DeleteHistory("1")().(HistoryDeletedMsg)
	require.NoError(t, msg.Err)
	assert.Empty(t, m.History.Get("1"))
	assert.Empty(t, m.Switcher.Transcript())
	assert.Equal(t, 1, backend.CallCount("DeleteChatHistory"))

	backend.DeleteChatHistoryFunc = func(ctx context.Context, coachID string) error {
		return errors.New("denied")
	}
	m.History.Append("1", Message{Text: "keep"})
	msg = m.DeleteHistory("1")().(HistoryDeletedMsg)
	assert.Error(t, msg.Err)
	assert.Len(t, m.History.Get("1"), 1)
}

func TestExportHistoryCmd(t *testing.T) {
	m, _ := newTestModel(t)
	m.History.Append("1", Message{Text: "x"})

	path := filepath.Join(t.TempDir(), "kim.json")
	msg := m.ExportHistory("1", "Kim", path)().(HistoryExportedMsg)
	require.NoError(t, msg.Err)
	assert.Equal(t, path, msg.Path)
	assert.FileExists(t, path)
}

func TestSendTextCmdIgnoresEmptyInput(t *testing.T) {
	m, _ := newTestModel(t)
	m.SelectCoach("1")

	assert.Nil(t, m.SendText("   "))
	assert.Equal(t, 0, m.Pending)

	m2, _ := newTestModel(t)
	assert.Nil(t, m2.SendText("hello"), "no active coach")
}

func TestSendImageFileBadPath(t *testing.T) {
	m, backend := newTestModel(t)
	m.SelectCoach("1")

	cmd := m.SendImageFile(filepath.Join(t.TempDir(), "missing.png"), "")
	require.NotNil(t, cmd)
	assert.Equal(t, 1, m.Pending)

	msg := cmd().(SendFinishedMsg)
	assert.Equal(t, OutcomeFailed, msg.Result.Outcome)
	assert.Error(t, msg.Result.Err)
	assert.Empty(t, m.History.Get("1"))
	assert.Equal(t, 0, backend.CallCount("Vision"))
}

func TestSendTextKeepsCallOrder(t *testing.T) {
	m, backend := newTestModel(t)
	withInstantSends(m)
	m.SelectCoach("1")

	first := m.SendText("first")
	second := m.SendText("second")
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, 2, m.Pending)

	// Both user messages are in place before either Cmd runs.
	assert.Equal(t, []string{"first", "second"}, texts(m.History.Get("1")))
	assert.Equal(t, []string{"first", "second"}, texts(m.Switcher.Transcript()))

	// Cmds may be scheduled in any order.
	assert.Equal(t, OutcomeDelivered, second().(SendFinishedMsg).Result.Outcome)
	assert.Equal(t, OutcomeDelivered, first().(SendFinishedMsg).Result.Outcome)

	var users []string
	for _, msg := range m.History.Get("1") {
		if msg.IsUser {
			users = append(users, msg.Text)
		}
	}
	assert.Equal(t, []string{"first", "second"}, users)
	assert.Equal(t, 2, backend.CallCount("Chat"))
}

func TestSendAudioFileAppendsBeforeRun(t *testing.T) {
	m, backend := newTestModel(t)
	withInstantSends(m)
	m.SelectCoach("1")

	path := filepath.Join(t.TempDir(), "clip.ogg")
	require.NoError(t, os.WriteFile(path, []byte("OggS\x00\x02\x00\x00\x00\x00"), 0600))

	cmd := m.SendAudioFile(path)
	require.NotNil(t, cmd)

	stored := m.History.Get("1")
	require.Len(t, stored, 1)
	assert.True(t, stored[0].IsAudio)
	assert.Equal(t, 0, backend.CallCount("TranscribeAudio"))

	msg := cmd().(SendFinishedMsg)
	assert.Equal(t, OutcomeDelivered, msg.Result.Outcome)
	assert.Equal(t, 1, backend.CallCount("TranscribeAudio"))
}
