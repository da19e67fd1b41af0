package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/pigpen/internal/core/domain"
	"github.com/custodia-labs/pigpen/internal/core/ports/driven"
)

// Ensure IndexRunStore implements the interface.
var _ driven.IndexRunStore = (*IndexRunStore)(nil)

// IndexRunStore is an in-memory implementation of driven.IndexRunStore.
type IndexRunStore struct {
	mu   sync.RWMutex
	runs []domain.IndexReport
}

// NewIndexRunStore creates a new in-memory index run store.
func NewIndexRunStore() *IndexRunStore {
	return &IndexRunStore{}
}

// SaveRun stores a run summary. Skipped items are dropped.
func (s *IndexRunStore) SaveRun(_ context.Context, report domain.IndexReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	report.Items = nil
	s.runs = append(s.runs, report)
	return nil
}

// LastRun returns the most recently saved run.
func (s *IndexRunStore) LastRun(_ context.Context) (*domain.IndexReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.runs) == 0 {
		return nil, domain.ErrNotFound
	}
	last := s.runs[len(s.runs)-1]
	return &last, nil
}

// Runs returns every saved run in order.
func (s *IndexRunStore) Runs() []domain.IndexReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.IndexReport(nil), s.runs...)
}
