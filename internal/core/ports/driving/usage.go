package driving

import (
	"context"

	"github.com/custodia-labs/pigpen/internal/core/domain"
)

// UsageService records and reports document access.
type UsageService interface {
	// RecordAccess counts one access of itemID. Failures are logged and
	// never returned.
	RecordAccess(ctx context.Context, itemID string)

	// RecordAccessStrict counts one access of itemID and returns any failure.
	RecordAccessStrict(ctx context.Context, itemID string) error

	// Get returns the usage record for itemID.
	Get(ctx context.Context, itemID string) (*domain.UsageRecord, error)

	// Count returns the number of items ever accessed.
	Count(ctx context.Context) (int, error)

	// Top returns the n most accessed records.
	Top(ctx context.Context, n int) ([]domain.UsageRecord, error)
}
