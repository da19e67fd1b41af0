package driving

import (
	"context"

	"github.com/custodia-labs/pigpen/internal/core/domain"
)

// IndexService rebuilds the document store from a vault.
type IndexService interface {
	// Index performs a full pass over root and reports what was written.
	Index(ctx context.Context, root string) (domain.IndexReport, error)

	// Stats reports the document count and the last recorded pass.
	Stats(ctx context.Context) (domain.StoreStats, error)
}
