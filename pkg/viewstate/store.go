// Package viewstate persists per-root view toggles (hide passive, show
// external, show hierarchy, minimum interactions) between sessions. Two
// stores exist: an in-memory one for tests and ephemeral runs, and a SQLite
// one backing the interactive viewer.
package viewstate

import (
	"sync"

	"github.com/vanderheijden86/relmap/pkg/model"
)

// Store reads and writes toggle state keyed by root entity id.
type Store interface {
	// Get returns the saved state for a root, or (zero, false) if none.
	Get(rootID string) (model.ToggleState, bool, error)
	// Put saves the state for a root, replacing any previous value.
	Put(rootID string, s model.ToggleState) error
	// Close releases store resources.
	Close() error
}

// MemoryStore keeps toggle state in a map. Safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]model.ToggleState
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]model.ToggleState)}
}

// Get implements Store.
func (m *MemoryStore) Get(rootID string) (model.ToggleState, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.states[rootID]
	return s, ok, nil
}

// Put implements Store.
func (m *MemoryStore) Put(rootID string, s model.ToggleState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[rootID] = s
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }
