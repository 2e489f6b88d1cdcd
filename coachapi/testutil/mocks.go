package testutil

import (
	"context"
	"sync"

	"coachtui/coachapi"
)

// Call records one invocation of a MockBackend method.
type Call struct {
	Method  string
	CoachID string
	Arg     string
}

// MockBackend implements coachapi.Backend for testing
type MockBackend struct {
	// Configurable responses
	ChatFunc              func(ctx context.Context, coachID, message string) (string, error)
	TranscribeAudioFunc   func(ctx context.Context, coachID, filename string, audio []byte) (string, error)
	VisionFunc            func(ctx context.Context, coachID, text string, jpeg []byte) (string, error)
	ListCoachesFunc       func(ctx context.Context) ([]coachapi.Coach, error)
	ChatHistoryFunc       func(ctx context.Context, coachID string) ([]coachapi.HistoryRecord, error)
	DeleteChatHistoryFunc func(ctx context.Context, coachID string) error

	mu    sync.Mutex
	calls []Call
}

// NewMockBackend creates a mock backend with default implementations
func NewMockBackend() *MockBackend {
	return &MockBackend{
		ChatFunc: func(ctx context.Context, coachID, message string) (string, error) {
			return "Mock reply to: " + message, nil
		},
		TranscribeAudioFunc: func(ctx context.Context, coachID, filename string, audio []byte) (string, error) {
			return "mock transcript", nil
		},
		VisionFunc: func(ctx context.Context, coachID, text string, jpeg []byte) (string, error) {
			return "Mock image reply", nil
		},
		ListCoachesFunc: func(ctx context.Context) ([]coachapi.Coach, error) {
			return []coachapi.Coach{
				{ID: "1", Name: "Mock Coach", Role: "MOBA", Avatar: coachapi.DefaultAvatar},
			}, nil
		},
		ChatHistoryFunc: func(ctx context.Context, coachID string) ([]coachapi.HistoryRecord, error) {
			return nil, nil
		},
		DeleteChatHistoryFunc: func(ctx context.Context, coachID string) error {
			return nil
		},
	}
}

func (m *MockBackend) record(method, coachID, arg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: method, CoachID: coachID, Arg: arg})
}

// Calls returns a snapshot of recorded calls.
func (m *MockBackend) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times method was invoked.
func (m *MockBackend) CallCount(method string) int {
	n := 0
	for _, c := range m.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (m *MockBackend) Chat(ctx context.Context, coachID, message string) (string, error) {
	m.record("Chat", coachID, message)
	return m.ChatFunc(ctx, coachID, message)
}

func (m *MockBackend) TranscribeAudio(ctx context.Context, coachID, filename string, audio []byte) (string, error) {
	m.record("TranscribeAudio", coachID, filename)
	return m.TranscribeAudioFunc(ctx, coachID, filename, audio)
}

func (m *MockBackend) Vision(ctx context.Context, coachID, text string, jpeg []byte) (string, error) {
	m.record("Vision", coachID, text)
	return m.VisionFunc(ctx, coachID, text, jpeg)
}

func (m *MockBackend) ListCoaches(ctx context.Context) ([]coachapi.Coach, error) {
	m.record("ListCoaches", "", "")
	return m.ListCoachesFunc(ctx)
}

func (m *MockBackend) ChatHistory(ctx context.Context, coachID string) ([]coachapi.HistoryRecord, error) {
	m.record("ChatHistory", coachID, "")
	return m.ChatHistoryFunc(ctx, coachID)
}

func (m *MockBackend) DeleteChatHistory(ctx context.Context, coachID string) error {
	m.record("DeleteChatHistory", coachID, "")
	return m.DeleteChatHistoryFunc(ctx, coachID)
}

// Verify MockBackend implements coachapi.Backend
var _ coachapi.Backend = (*MockBackend)(nil)
