package driving

import (
	"context"

	"github.com/custodia-labs/pigpen/internal/core/domain"
)

// SearchService provides search capabilities to external actors.
type SearchService interface {
	// Search runs a full-text query across all indexed documents.
	// An empty query returns an empty result and no error.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// Invalidate drops any cached results.
	Invalidate()
}
