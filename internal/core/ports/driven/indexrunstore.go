package driven

import (
	"context"

	"github.com/custodia-labs/pigpen/internal/core/domain"
)

// IndexRunStore persists a summary of each index pass.
type IndexRunStore interface {
	// SaveRun stores the report of a finished pass.
	SaveRun(ctx context.Context, report domain.IndexReport) error

	// LastRun returns the most recent pass.
	// Returns domain.ErrNotFound if no pass has been recorded.
	LastRun(ctx context.Context) (*domain.IndexReport, error)
}
