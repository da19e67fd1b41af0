package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/pigpen/internal/core/domain"
	"github.com/custodia-labs/pigpen/internal/core/ports/driven"
)

// Ensure UsageStore implements the interface.
var _ driven.UsageStore = (*UsageStore)(nil)

// UsageStore is an in-memory implementation of driven.UsageStore.
type UsageStore struct {
	mu      sync.RWMutex
	records map[string]domain.UsageRecord
}

// NewUsageStore creates a new in-memory usage store.
func NewUsageStore() *UsageStore {
	return &UsageStore{
		records: make(map[string]domain.UsageRecord),
	}
}

// RecordAccess increments the counter for itemID.
func (s *UsageStore) RecordAccess(_ context.Context, itemID string, at time.Time) error {
	if itemID == "" {
		return fmt.Errorf("%w: empty item id", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.records[itemID]
	rec.ItemID = itemID
	rec.UsageCount++
	rec.LastAccessed = at
	s.records[itemID] = rec
	return nil
}

// Get retrieves the record for itemID.
func (s *UsageStore) Get(_ context.Context, itemID string) (*domain.UsageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[itemID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

// GetMany retrieves records for the given IDs.
func (s *UsageStore) GetMany(_ context.Context, itemIDs []string) (map[string]domain.UsageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]domain.UsageRecord, len(itemIDs))
	for _, id := range itemIDs {
		if rec, ok := s.records[id]; ok {
			result[id] = rec
		}
	}
	return result, nil
}

// Count returns the number of usage records.
func (s *UsageStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Top returns the n most used records.
func (s *UsageStore) Top(_ context.Context, n int) ([]domain.UsageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]domain.UsageRecord, 0, len(s.records))
	for _, rec := range s.records {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].UsageCount != records[j].UsageCount {
			return records[i].UsageCount > records[j].UsageCount
		}
		return records[i].ItemID < records[j].ItemID
	})
	if n < 0 {
		n = 0
	}
	if len(records) > n {
		records = records[:n]
	}
	return records, nil
}
