package archive

import (
	"context"
	"sync"
	"time"

	"github.com/loom-forge/weaver/core"
)

// MemoryArchive is an in-process core.Archivist used when no archive path is
// configured. Records do not survive the process.
type MemoryArchive struct {
	mu        sync.RWMutex
	summaries []core.RunSummary
}

// NewMemoryArchive creates an empty in-memory archive.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{}
}

// Record appends one lineage summary.
func (m *MemoryArchive) Record(_ context.Context, summary core.RunSummary) error {
	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries = append(m.summaries, summary)
	return nil
}

// Query returns archived summaries for a lineage id, newest first. An empty
// lineageID returns all summaries.
func (m *MemoryArchive) Query(_ context.Context, lineageID string) ([]core.RunSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []core.RunSummary
	for i := len(m.summaries) - 1; i >= 0; i-- {
		s := m.summaries[i]
		if lineageID == "" || s.LineageID == lineageID {
			out = append(out, s)
		}
	}
	return out, nil
}

// Close is a no-op for the in-memory archive.
func (m *MemoryArchive) Close() error {
	return nil
}
