package state

import (
	"sync"
	"time"

	"MetalBoard/internal/logger"
	"MetalBoard/internal/model"
)

// Manager deduplicates signal alerts across runs with concurrency safety.
type Manager struct {
	mu       sync.Mutex
	state    *AlertState
	filePath string
}

// NewManager creates a Manager, loading state from disk. An empty filePath
// keeps state in memory only.
func NewManager(filePath string) (*Manager, error) {
	st := &AlertState{Alerts: map[string]Alert{}}
	if filePath != "" {
		var err error
		if st, err = LoadState(filePath); err != nil {
			return nil, err
		}
	}
	return &Manager{state: st, filePath: filePath}, nil
}

// Key builds the state key for a symbol and strategy description.
func Key(symbol, strategy string) string { return symbol + ":" + strategy }

// Last returns the last recorded alert for key.
func (m *Manager) Last(key string) (Alert, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.state.Alerts[key]
	return a, ok
}

// ShouldAlert reports whether the change at t has not been announced yet
// for key, and records it if so. NoChange never alerts.
func (m *Manager) ShouldAlert(key string, t time.Time, change model.PositionChange, price float64) bool {
	if change == model.NoChange {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.state.Alerts[key]; ok && !t.After(prev.Time) {
		return false
	}
	m.state.Alerts[key] = Alert{Time: t, Change: int(change), Price: price}
	if err := m.save(); err != nil {
		logger.Error("failed to save alert state: %v", err)
	}
	return true
}

func (m *Manager) save() error {
	if m.filePath == "" {
		return nil
	}
	return SaveState(m.filePath, m.state)
}
