package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/pigpen/internal/core/domain"
)

// UsageStore persists per-document access counters.
type UsageStore interface {
	// RecordAccess increments the counter for itemID and sets its last
	// access time to at, creating the record on first access.
	RecordAccess(ctx context.Context, itemID string, at time.Time) error

	// Get retrieves the record for itemID.
	// Returns domain.ErrNotFound if the item was never accessed.
	Get(ctx context.Context, itemID string) (*domain.UsageRecord, error)

	// GetMany retrieves records for the given IDs. Missing IDs are absent
	// from the returned map.
	GetMany(ctx context.Context, itemIDs []string) (map[string]domain.UsageRecord, error)

	// Count returns the number of items with at least one recorded access.
	Count(ctx context.Context) (int, error)

	// Top returns the n most used records, most used first.
	Top(ctx context.Context, n int) ([]domain.UsageRecord, error)
}
