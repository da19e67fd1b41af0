package driving

import (
	"context"

	"github.com/custodia-labs/pigpen/internal/core/domain"
)

// VaultOperations is the narrow surface exposed to agent and HUD front ends.
type VaultOperations interface {
	// IndexVault runs a full index pass over path and returns the number
	// of documents written.
	IndexVault(ctx context.Context, path string) (int, error)

	// SearchVault runs query with the configured limit and ranking.
	SearchVault(ctx context.Context, query string) ([]domain.SearchResult, error)

	// RecordAccess counts one access of itemID. Failures are logged only.
	RecordAccess(ctx context.Context, itemID string)
}

// VaultEngine bundles indexing, search and usage behind one handle.
type VaultEngine interface {
	VaultOperations

	// IndexVaultReport runs a full index pass and returns the full report.
	IndexVaultReport(ctx context.Context, path string) (domain.IndexReport, error)

	// SearchVaultWith runs query with per-call options.
	SearchVaultWith(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// Stats summarises the store contents.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// TopUsed returns the n most opened documents.
	TopUsed(ctx context.Context, n int) ([]domain.UsageRecord, error)

	// Close releases the store.
	Close() error
}
