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
	lastConversationFile = "last_conversation.json"
)

// LastConversation is the conversation the most recent successful turn
// completed in.
type LastConversation struct {
	ID        string    `json:"id"`
	Server    string    `json:"server,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoadLastConversation returns nil, nil when nothing has been recorded yet.
func (m *Manager) LoadLastConversation(overrideDir string) (*LastConversation, error) {
	dir, err := m.Resolve(overrideDir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, lastConversationFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading last conversation: %w", err)
	}

	state := &LastConversation{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parsing last conversation: %w", err)
	}

	return state, nil
}

// SaveLastConversation records the conversation a turn completed in.
func (m *Manager) SaveLastConversation(state *LastConversation, overrideDir string) error {
	if state == nil || state.ID == "" {
		return errors.New("cannot save empty conversation state")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling last conversation: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, lastConversationFile), data, 0o600); err != nil {
		return fmt.Errorf("writing last conversation: %w", err)
	}

	return nil
}

// ClearLastConversation removes the recorded conversation. Returns nil if
// nothing was recorded.
func (m *Manager) ClearLastConversation(overrideDir string) error {
	dir, err := m.Resolve(overrideDir)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(dir, lastConversationFile)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing last conversation: %w", err)
	}

	return nil
}
