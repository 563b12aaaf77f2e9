package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	sessionFile = "session.json"
)

// Session is the persisted state of a "praxisvoice simulate" call, so an
// interrupted simulation can be resumed where it stopped.
type Session struct {
	// CallID identifies the simulated call in the call log.
	CallID string `json:"call_id"`

	// State is the dialog state the next turn starts in.
	State string `json:"state"`

	// StartedAt is when the simulated call was answered.
	StartedAt time.Time `json:"started_at"`

	// Transcript is the conversation so far, oldest line first.
	Transcript []SessionLine `json:"transcript"`
}

// SessionLine is a single line spoken in a simulated call.
type SessionLine struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// LoadSession loads the session from a target .praxisvoice/session.json.
// Returns nil, nil if no session exists.
func (m *Manager) LoadSession(overrideDir string) (*Session, error) {
	dir, err := m.Target(overrideDir)
	if err != nil || dir == "" {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, sessionFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}

	s := &Session{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing session: %w", err)
	}

	return s, nil
}

// SaveSession persists s to .praxisvoice/session.json, creating the
// directory when needed.
func (m *Manager) SaveSession(s *Session, overrideDir string) error {
	if s == nil {
		return errors.New("cannot save nil session")
	}

	dir, err := m.Ensure(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, sessionFile), data, 0o600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}

	return nil
}

// ClearSession removes the session file. Returns nil if there is none.
func (m *Manager) ClearSession(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil || dir == "" {
		return err
	}

	if err := os.Remove(filepath.Join(dir, sessionFile)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing session: %w", err)
	}

	return nil
}
