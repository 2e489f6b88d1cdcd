package storage

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// PresenceStore persists one concrete presence value per coach for the
// lifetime of a session.
type PresenceStore interface {
	Get(coachID string) (string, bool, error)
	Set(coachID, state string) error
}

// SQLitePresenceStore keeps presence in a sqlite file. The file lives in the
// per-process temp dir, so it is gone when the session ends.
type SQLitePresenceStore struct {
	db *sql.DB
}

func NewSQLitePresenceStore(dbPath string) (*SQLitePresenceStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// One writer at a time; lifecycle goroutines may Set concurrently.
	db.SetMaxOpenConns(1)

	store := &SQLitePresenceStore{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (s *SQLitePresenceStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS presence (
		coach_id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLitePresenceStore) Get(coachID string) (string, bool, error) {
	var state string
	err := s.db.QueryRow(`SELECT state FROM presence WHERE coach_id = ?`, coachID).Scan(&state)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read presence for %s: %w", coachID, err)
	}
	return state, true, nil
}

func (s *SQLitePresenceStore) Set(coachID, state string) error {
	query := `
	INSERT OR REPLACE INTO presence (coach_id, state, updated_at)
	VALUES (?, ?, ?)
	`
	if _, err := s.db.Exec(query, coachID, state, time.Now()); err != nil {
		return fmt.Errorf("failed to store presence for %s: %w", coachID, err)
	}
	return nil
}

func (s *SQLitePresenceStore) Close() error {
	return s.db.Close()
}

// MemoryPresenceStore is the in-process fallback used when no database is
// available, and in tests.
type MemoryPresenceStore struct {
	mu     sync.Mutex
	states map[string]string
}

func NewMemoryPresenceStore() *MemoryPresenceStore {
	return &MemoryPresenceStore{states: make(map[string]string)}
}

func (m *MemoryPresenceStore) Get(coachID string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[coachID]
	return state, ok, nil
}

func (m *MemoryPresenceStore) Set(coachID, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[coachID] = state
	return nil
}
