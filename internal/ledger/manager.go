// Package ledger persists the simulation's season counter and lifetime
// totals between runs.
package ledger

import (
	"fmt"
	"log"
	"sync"
	"time"

	"CompSim/internal/model"
)

// Manager guards the run state and writes it through on every change.
type Manager struct {
	mu       sync.Mutex
	state    *model.RunState
	filePath string
}

// NewManager creates a Manager, loading or initializing state from disk.
func NewManager(filePath string) (*Manager, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	m := &Manager{state: state, filePath: filePath}
	if err := m.save(); err != nil {
		return nil, fmt.Errorf("init ledger: %w", err)
	}
	return m, nil
}

// GetState returns a copy of the current run state.
func (m *Manager) GetState() model.RunState {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := *m.state
	if m.state.LastSummary != nil {
		s.LastSummary = make(model.Summary, len(m.state.LastSummary))
		for k, v := range m.state.LastSummary {
			s.LastSummary[k] = v
		}
	}
	return s
}

// Season returns the last committed season number.
func (m *Manager) Season() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Season
}

// Commit records a completed season. Seasons must advance; a season at or
// below the last committed one is rejected.
func (m *Manager) Commit(runID string, season int, totals model.Totals, summary model.Summary, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if season <= m.state.Season {
		return fmt.Errorf("commit season %d: ledger already at season %d", season, m.state.Season)
	}
	m.state.Season = season
	m.state.LastRunID = runID
	m.state.LifetimePaid += totals.PaidThisSeason
	m.state.LifetimeBonus += totals.BonusThisSeason
	m.state.LastTotals = totals
	m.state.LastSummary = summary
	m.state.LastRunAt = at

	if err := m.save(); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// Reset clears the ledger so the next run starts again at season 1.
func (m *Manager) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.state.Season
	m.state = &model.RunState{}
	if err := m.save(); err != nil {
		return fmt.Errorf("save ledger after reset: %w", err)
	}
	log.Printf("[INFO] ledger reset (was at season %d)", prev)
	return nil
}

func (m *Manager) save() error {
	return SaveState(m.filePath, m.state)
}
