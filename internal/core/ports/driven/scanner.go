package driven

import (
	"context"

	"github.com/custodia-labs/pigpen/internal/core/domain"
)

// Scanner walks a vault and produces candidate documents.
type Scanner interface {
	// Scan walks root and emits one item per visited file. The channel is
	// closed when the walk ends or ctx is cancelled. A root that does not
	// exist yields no items and no error.
	Scan(ctx context.Context, root string) (<-chan domain.ScanItem, error)
}
