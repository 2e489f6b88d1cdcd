package model

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"coachtui/media"
)

// WaitForUpdate blocks until a background task signals a visible change.
func (m *Model) WaitForUpdate() tea.Cmd {
	updates := m.Updates
	return func() tea.Msg {
		<-updates
		return StateChangedMsg{}
	}
}

// SendText starts a text send for the active coach. The user message is
// appended before the Cmd is returned.
func (m *Model) SendText(text string) tea.Cmd {
	text = strings.TrimSpace(text)
	tok := m.Switcher.Active()
	if text == "" || tok.PartnerID == "" {
		return nil
	}

	m.Pending++
	lc, ctx := m.Lifecycle, m.ctx
	send := lc.Begin(tok, TextMessage(text))
	return func() tea.Msg {
		return SendFinishedMsg{PartnerID: tok.PartnerID, Result: lc.RunText(ctx, send, text)}
	}
}

// SendImageFile prepares the image at path and sends it with an optional
// caption.
func (m *Model) SendImageFile(path, caption string) tea.Cmd {
	tok := m.Switcher.Active()
	if tok.PartnerID == "" {
		return nil
	}

	m.Pending++
	img, err := media.PrepareImageFile(path)
	if err != nil {
		return notSent(tok, fmt.Errorf("image not sent: %w", err))
	}

	caption = strings.TrimSpace(caption)
	lc, ctx := m.Lifecycle, m.ctx
	send := lc.Begin(tok, ImageMessage(img.Base64, caption))
	return func() tea.Msg {
		return SendFinishedMsg{PartnerID: tok.PartnerID, Result: lc.RunImage(ctx, send, img.Base64, caption)}
	}
}

// SendAudioFile loads the recording at path and sends it.
func (m *Model) SendAudioFile(path string) tea.Cmd {
	tok := m.Switcher.Active()
	if tok.PartnerID == "" {
		return nil
	}

	m.Pending++
	audio, err := media.LoadAudio(path)
	if err != nil {
		return notSent(tok, fmt.Errorf("audio not sent: %w", err))
	}

	lc, ctx := m.Lifecycle, m.ctx
	send := lc.Begin(tok, AudioMessage(audio))
	return func() tea.Msg {
		return SendFinishedMsg{PartnerID: tok.PartnerID, Result: lc.RunAudio(ctx, send, audio)}
	}
}

func notSent(tok Token, err error) tea.Cmd {
	return func() tea.Msg {
		return SendFinishedMsg{PartnerID: tok.PartnerID, Result: Result{Outcome: OutcomeFailed, Err: err}}
	}
}
