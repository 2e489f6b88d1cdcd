package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coachtui/coachapi"
	"coachtui/config"
	"coachtui/media"
	"coachtui/presence"
	"coachtui/storage"
)

const (
	// transcriptSettle is the pause between a finished transcription and the
	// chat request.
	transcriptSettle = time.Second

	audioFailurePrefix = "Failed to process audio message: "
	imageFailureNotice = "Unable to process image right now. Please try again later."
)

// Outcome is how a send cycle ended.
type Outcome int

const (
	OutcomeDelivered  Outcome = iota // reply appended and shown
	OutcomeBackground                // reply appended while another conversation was active
	OutcomeFailed                    // failure notice appended
	OutcomeCancelled                 // app shutting down
)

// Lifecycle drives one send from optimistic append to resolved reply. Each
// send runs on its own goroutine with the Token captured when it started;
// every render re-checks that token against the switcher.
type Lifecycle struct {
	backend  coachapi.Backend
	history  *storage.HistoryStore
	tracker  *presence.Tracker
	switcher *Switcher
	sim      *presence.Simulator
	sleep    Sleeper
	now      func() time.Time
	notify   func()
}

// LifecycleDeps are the collaborators of a Lifecycle. Sleep, Now and Notify
// are optional.
type LifecycleDeps struct {
	Backend   coachapi.Backend
	History   *storage.HistoryStore
	Tracker   *presence.Tracker
	Switcher  *Switcher
	Simulator *presence.Simulator
	Sleep     Sleeper
	Now       func() time.Time
	Notify    func()
}

func NewLifecycle(deps LifecycleDeps) *Lifecycle {
	l := &Lifecycle{
		backend:  deps.Backend,
		history:  deps.History,
		tracker:  deps.Tracker,
		switcher: deps.Switcher,
		sim:      deps.Simulator,
		sleep:    deps.Sleep,
		now:      deps.Now,
		notify:   deps.Notify,
	}
	if l.sleep == nil {
		l.sleep = Sleep
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.notify == nil {
		l.notify = func() {}
	}
	if l.sim == nil {
		l.sim = presence.NewSimulator(nil)
	}
	return l
}

func (l *Lifecycle) timestamp() int64 {
	return l.now().UnixMilli()
}

// Send is a started send cycle. Its user message is already stored, and shown
// if the conversation was active.
type Send struct {
	Token   Token
	Prior   presence.State
	Message Message
}

// Begin captures the coach's presence and appends msg. Call it on the UI
// goroutine so messages keep the order the user sent them in; the matching
// Run call can then happen anywhere.
func (l *Lifecycle) Begin(tok Token, msg Message) Send {
	prior := l.tracker.Current(tok.PartnerID)
	return Send{Token: tok, Prior: prior, Message: l.appendAndRender(tok, msg)}
}

// TextMessage is the user message for a text send.
func TextMessage(text string) Message {
	return Message{Text: text, IsUser: true}
}

// AudioMessage is the user message for a voice recording.
func AudioMessage(audio media.Audio) Message {
	return Message{Text: audio.Ref(), IsUser: true, IsAudio: true}
}

// ImageMessage is the user message for an image with an optional caption.
func ImageMessage(base64Image, caption string) Message {
	var parts []storage.Part
	if caption != "" {
		parts = append(parts, storage.Part{Kind: storage.PartText, Value: caption})
	}
	parts = append(parts, storage.Part{Kind: storage.PartImage, Value: "data:image/jpeg;base64," + base64Image})
	return Message{Parts: parts, IsUser: true}
}

// SendText runs the full text cycle: optimistic append, presence transitions,
// response delay, remote reply, typing delay, render.
func (l *Lifecycle) SendText(ctx context.Context, tok Token, text string) Result {
	return l.RunText(ctx, l.Begin(tok, TextMessage(text)), text)
}

// RunText is SendText after Begin.
func (l *Lifecycle) RunText(ctx context.Context, s Send, text string) Result {
	tok, prior := s.Token, s.Prior
	partner := tok.PartnerID

	for _, step := range presence.TransitionPlan(prior) {
		if err := l.sleep(ctx, step.Wait); err != nil {
			return l.fail(ctx, tok, prior, err, err.Error())
		}
		if l.switcher.IsActive(tok) {
			l.tracker.Set(partner, step.State)
			l.notify()
		}
	}

	if err := l.sleep(ctx, l.sim.ResponseDelay(prior)); err != nil {
		return l.fail(ctx, tok, prior, err, err.Error())
	}

	reply, err := l.backend.Chat(ctx, partner, text)
	if err != nil {
		return l.fail(ctx, tok, prior, err, err.Error())
	}

	return l.deliver(ctx, tok, reply, true)
}

// SendAudio appends the recording, transcribes it and sends the transcript as
// a chat message. The coach's reply is shown, not the transcript.
func (l *Lifecycle) SendAudio(ctx context.Context, tok Token, audio media.Audio) Result {
	return l.RunAudio(ctx, l.Begin(tok, AudioMessage(audio)), audio)
}

// RunAudio is SendAudio after Begin.
func (l *Lifecycle) RunAudio(ctx context.Context, s Send, audio media.Audio) Result {
	tok, prior := s.Token, s.Prior
	partner := tok.PartnerID
	l.setResponding(tok)

	transcript, err := l.backend.TranscribeAudio(ctx, partner, audio.Name, audio.Data)
	if err != nil {
		return l.fail(ctx, tok, prior, err, audioFailurePrefix+err.Error())
	}

	if err := l.sleep(ctx, transcriptSettle); err != nil {
		return l.fail(ctx, tok, prior, err, audioFailurePrefix+err.Error())
	}

	reply, err := l.backend.Chat(ctx, partner, transcript)
	if err != nil {
		return l.fail(ctx, tok, prior, err, audioFailurePrefix+err.Error())
	}

	return l.deliver(ctx, tok, reply, true)
}

// SendImage appends the image with its optional caption and asks the vision
// endpoint. There is no response or typing delay for images.
func (l *Lifecycle) SendImage(ctx context.Context, tok Token, base64Image, text string) Result {
	return l.RunImage(ctx, l.Begin(tok, ImageMessage(base64Image, text)), base64Image, text)
}

// RunImage is SendImage after Begin.
func (l *Lifecycle) RunImage(ctx context.Context, s Send, base64Image, text string) Result {
	tok, prior := s.Token, s.Prior
	l.setResponding(tok)

	jpeg, err := media.DecodeBase64(base64Image)
	if err != nil {
		return l.fail(ctx, tok, prior, err, imageFailureNotice)
	}

	reply, err := l.backend.Vision(ctx, tok.PartnerID, text, jpeg)
	if err != nil {
		return l.fail(ctx, tok, prior, err, imageFailureNotice)
	}

	return l.deliver(ctx, tok, reply, false)
}

func (l *Lifecycle) appendAndRender(tok Token, msg Message) Message {
	msg.Timestamp = l.timestamp()
	stored := l.history.Append(tok.PartnerID, msg)
	if l.switcher.RenderIfActive(tok, stored) {
		l.notify()
	}
	return stored
}

func (l *Lifecycle) setResponding(tok Token) {
	if l.switcher.IsActive(tok) {
		l.tracker.Set(tok.PartnerID, presence.Responding)
		l.notify()
	}
}

// deliver appends the reply and, if the conversation is still on screen,
// shows it after the typing delay.
func (l *Lifecycle) deliver(ctx context.Context, tok Token, reply string, typing bool) Result {
	partner := tok.PartnerID
	msg := l.history.Append(partner, Message{Text: reply, Timestamp: l.timestamp()})

	if !l.switcher.IsActive(tok) {
		l.tracker.ClearResponding(partner)
		l.notify()
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Lifecycle] reply for %s stored in background", partner)
		}
		return Result{Outcome: OutcomeBackground}
	}

	if typing {
		if err := l.sleep(ctx, presence.TypingDelay(reply)); err != nil {
			// Reply is already stored; only the typing pause was cut short.
			l.tracker.ClearResponding(partner)
			return Result{Outcome: OutcomeCancelled}
		}
	}

	if !l.switcher.RenderIfActive(tok, msg) {
		l.tracker.ClearResponding(partner)
		l.notify()
		return Result{Outcome: OutcomeBackground}
	}

	l.tracker.Set(partner, presence.Online)
	l.notify()
	return Result{Outcome: OutcomeDelivered}
}

// fail appends an inline failure notice and restores the presence captured
// before the send began.
func (l *Lifecycle) fail(ctx context.Context, tok Token, prior presence.State, err error, notice string) Result {
	partner := tok.PartnerID

	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		l.tracker.Set(partner, prior)
		return Result{Outcome: OutcomeCancelled}
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Lifecycle] send to %s failed: %v", partner, err)
	}

	l.appendAndRender(tok, Message{Text: notice, IsError: true})
	l.tracker.Set(partner, prior)
	l.notify()
	return Result{Outcome: OutcomeFailed, Err: err}
}

// Result is what a finished send cycle reports to the UI.
type Result struct {
	Outcome Outcome
	Err     error
}

// Summary is a one-line description for the status bar.
func (r Result) Summary() string {
	if r.Err == nil {
		return ""
	}
	return describeError(r.Err)
}

func describeError(err error) string {
	var netErr *coachapi.NetworkError
	var invErr *coachapi.InvalidResponseError
	var trErr *coachapi.TranscriptionError
	switch {
	case errors.As(err, &trErr):
		return fmt.Sprintf("transcription failed: %v", trErr.Err)
	case errors.As(err, &invErr):
		return invErr.Error()
	case errors.As(err, &netErr):
		if netErr.StatusCode > 0 {
			return fmt.Sprintf("network error (%d): %s", netErr.StatusCode, netErr.Message)
		}
		return fmt.Sprintf("network error: %s", netErr.Message)
	}
	return err.Error()
}
