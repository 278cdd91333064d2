package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"PriceBoard/internal/model"
)

// State is the persisted selection of every chat.
type State struct {
	Chats     map[string]model.Selection `json:"chats"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// LoadState reads the session state from a JSON file. Returns an empty state if the file doesn't exist.
func LoadState(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{Chats: make(map[string]model.Selection)}, nil
		}
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.Chats == nil {
		state.Chats = make(map[string]model.Selection)
	}
	return &state, nil
}

// SaveState writes the session state to a JSON file.
func SaveState(filePath string, state *State) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0644)
}
