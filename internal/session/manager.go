// Package session keeps each chat's dashboard selection.
package session

import (
	"errors"
	"log"
	"sync"

	"PriceBoard/internal/model"
)

// ErrNoSymbols is returned when a chat tries to select no assets.
var ErrNoSymbols = errors.New("pick at least one asset")

// Manager handles per-chat selections with concurrency safety.
type Manager struct {
	mu       sync.Mutex
	state    *State
	defaults model.Selection
	filePath string
}

// NewManager creates a Manager, loading state from disk. Chats without a
// stored selection see defaults.
func NewManager(filePath string, defaults model.Selection) (*Manager, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	return &Manager{state: state, defaults: clone(defaults), filePath: filePath}, nil
}

// Get returns a copy of the chat's current selection.
func (m *Manager) Get(chatID string) model.Selection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.current(chatID))
}

// SetSymbols replaces the chat's assets. Duplicates are dropped, order kept.
func (m *Manager) SetSymbols(chatID string, symbols []string) (model.Selection, error) {
	var uniq []string
	seen := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		uniq = append(uniq, s)
	}
	if len(uniq) == 0 {
		return model.Selection{}, ErrNoSymbols
	}
	return m.update(chatID, func(sel *model.Selection) { sel.Symbols = uniq })
}

// SetPeriod changes the chat's lookback period.
func (m *Manager) SetPeriod(chatID, period string) (model.Selection, error) {
	p, err := model.ParsePeriod(period)
	if err != nil {
		return model.Selection{}, err
	}
	return m.update(chatID, func(sel *model.Selection) { sel.Period = p })
}

// SetMode changes the chat's view mode.
func (m *Manager) SetMode(chatID, mode string) (model.Selection, error) {
	v, err := model.ParseViewMode(mode)
	if err != nil {
		return model.Selection{}, err
	}
	return m.update(chatID, func(sel *model.Selection) { sel.Mode = v })
}

// Reset drops the chat's stored selection.
func (m *Manager) Reset(chatID string) model.Selection {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.state.Chats, chatID)
	if err := m.save(); err != nil {
		log.Printf("[ERROR] failed to save session state after reset: %v", err)
	}
	return clone(m.defaults)
}

func (m *Manager) update(chatID string, fn func(*model.Selection)) (model.Selection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sel := clone(m.current(chatID))
	fn(&sel)
	m.state.Chats[chatID] = sel

	if err := m.save(); err != nil {
		log.Printf("[ERROR] failed to save session state: %v", err)
	}
	return clone(sel), nil
}

func (m *Manager) current(chatID string) model.Selection {
	if sel, ok := m.state.Chats[chatID]; ok {
		return sel
	}
	return m.defaults
}

func (m *Manager) save() error {
	if m.filePath == "" {
		return nil
	}
	return SaveState(m.filePath, m.state)
}

func clone(sel model.Selection) model.Selection {
	sel.Symbols = append([]string(nil), sel.Symbols...)
	return sel
}
