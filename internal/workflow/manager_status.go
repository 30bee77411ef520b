package workflow

import (
	"context"

	"reelsmith/internal/logging"
	"reelsmith/internal/queue"
)

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running    bool
	Cycles     int
	LastError  string
	LastFolder string
	LastCycle  CycleReport
	Folders    queue.Summary
	LedgerSize int
}

// Status returns the latest workflow information.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	summary := StatusSummary{
		Running:    m.running,
		Cycles:     m.cycles,
		LastFolder: m.lastFolder,
		LastCycle:  m.lastCycle,
	}
	if m.lastErr != nil {
		summary.LastError = m.lastErr.Error()
	}
	m.mu.RUnlock()

	folders, err := m.store.Summary(ctx)
	if err != nil {
		m.logger.Warn("failed to read folder stats", logging.Error(err))
	}
	summary.Folders = folders

	if done, err := m.ledger.Snapshot(); err == nil {
		summary.LedgerSize = done.Len()
	}
	return summary
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastFolder(id string) {
	m.mu.Lock()
	m.lastFolder = id
	m.mu.Unlock()
}

func (m *Manager) setLastCycle(report CycleReport) {
	m.mu.Lock()
	m.lastCycle = report
	m.cycles++
	m.mu.Unlock()
}
