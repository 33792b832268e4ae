// Package runlog keeps a bounded history of recent ingestion runs.
package runlog

import (
	"context"
	"sync"

	"nepse-stock-scryper/internal/ingestion/dto"
)

// Log stores recent run summaries, newest first.
type Log interface {
	Append(ctx context.Context, summary dto.RunSummary) error
	Recent(ctx context.Context, limit int) ([]dto.RunSummary, error)
}

// Memory is an in-process ring buffer of run summaries.
type Memory struct {
	mu      sync.Mutex
	entries []dto.RunSummary
	next    int
	full    bool
}

// NewMemory creates a ring buffer holding up to size entries.
func NewMemory(size int) *Memory {
	if size <= 0 {
		size = 100
	}
	return &Memory{entries: make([]dto.RunSummary, size)}
}

// Append adds a summary, evicting the oldest one when full.
func (m *Memory) Append(_ context.Context, summary dto.RunSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[m.next] = summary
	m.next = (m.next + 1) % len(m.entries)
	if m.next == 0 {
		m.full = true
	}
	return nil
}

// Recent returns up to limit summaries, newest first. limit <= 0 returns all.
func (m *Memory) Recent(_ context.Context, limit int) ([]dto.RunSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.next
	if m.full {
		n = len(m.entries)
	}
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]dto.RunSummary, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (m.next - i + len(m.entries)) % len(m.entries)
		out = append(out, m.entries[idx])
	}
	return out, nil
}
