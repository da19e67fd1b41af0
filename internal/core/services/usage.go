package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/pigpen/internal/core/domain"
	"github.com/custodia-labs/pigpen/internal/core/ports/driven"
	"github.com/custodia-labs/pigpen/internal/core/ports/driving"
	"github.com/custodia-labs/pigpen/internal/logger"
)

// Ensure UsageService implements the interface.
var _ driving.UsageService = (*UsageService)(nil)

// UsageService records document accesses.
type UsageService struct {
	store    driven.UsageStore
	now      func() time.Time
	onRecord func()
}

// NewUsageService creates a new usage service.
func NewUsageService(store driven.UsageStore) *UsageService {
	return &UsageService{
		store: store,
		now:   time.Now,
	}
}

// SetClock replaces the clock used for access timestamps.
func (s *UsageService) SetClock(now func() time.Time) {
	s.now = now
}

// SetOnRecord registers a callback run after every recorded access.
func (s *UsageService) SetOnRecord(fn func()) {
	s.onRecord = fn
}

// RecordAccess increments the access count for itemID. Failures are
// logged and never returned.
func (s *UsageService) RecordAccess(ctx context.Context, itemID string) {
	if err := s.RecordAccessStrict(ctx, itemID); err != nil {
		logger.Warn("Failed to record access for %q: %v", itemID, err)
	}
}

// RecordAccessStrict increments the access count for itemID and returns
// any failure.
func (s *UsageService) RecordAccessStrict(ctx context.Context, itemID string) error {
	if strings.TrimSpace(itemID) == "" {
		return fmt.Errorf("%w: empty item id", domain.ErrInvalidInput)
	}

	if err := s.store.RecordAccess(ctx, itemID, s.now()); err != nil {
		return fmt.Errorf("record access: %w", err)
	}
	logger.Debug("Recorded access: %s", itemID)

	if s.onRecord != nil {
		s.onRecord()
	}
	return nil
}

// Get returns the usage record for itemID.
func (s *UsageService) Get(ctx context.Context, itemID string) (*domain.UsageRecord, error) {
	return s.store.Get(ctx, itemID)
}

// Count returns the number of items ever accessed.
func (s *UsageService) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

// Top returns the n most used items.
func (s *UsageService) Top(ctx context.Context, n int) ([]domain.UsageRecord, error) {
	return s.store.Top(ctx, n)
}
