package services

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/custodia-labs/pigpen/internal/core/domain"
	"github.com/custodia-labs/pigpen/internal/core/ports/driving"
	"github.com/custodia-labs/pigpen/internal/logger"
)

// Ensure Engine implements the interface.
var _ driving.VaultEngine = (*Engine)(nil)

// Engine is the single entry point used by the CLI, MCP server, watcher
// and TUI. It owns the store handle and serialises every operation.
type Engine struct {
	mu     sync.Mutex
	index  driving.IndexService
	search driving.SearchService
	usage  driving.UsageService
	store  io.Closer
	closed bool
}

// NewEngine creates an engine over the given services. The store parameter
// is closed by Close and is optional (can be nil).
func NewEngine(
	index driving.IndexService,
	search driving.SearchService,
	usage driving.UsageService,
	store io.Closer,
) *Engine {
	return &Engine{
		index:  index,
		search: search,
		usage:  usage,
		store:  store,
	}
}

// IndexVault runs a full index pass over path and returns the number of
// documents written.
func (e *Engine) IndexVault(ctx context.Context, path string) (int, error) {
	report, err := e.IndexVaultReport(ctx, path)
	if err != nil {
		return 0, err
	}
	return report.Indexed, nil
}

// IndexVaultReport runs a full index pass over path and returns the report.
func (e *Engine) IndexVaultReport(ctx context.Context, path string) (domain.IndexReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return domain.IndexReport{}, domain.ErrEngineClosed
	}
	return e.index.Index(ctx, path)
}

// SearchVault runs query with the configured limit and ranking.
func (e *Engine) SearchVault(ctx context.Context, query string) ([]domain.SearchResult, error) {
	return e.SearchVaultWith(ctx, query, domain.SearchOptions{})
}

// SearchVaultWith runs query with per-call options.
func (e *Engine) SearchVaultWith(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, domain.ErrEngineClosed
	}
	return e.search.Search(ctx, query, opts)
}

// RecordAccess counts one access of itemID. Failures are logged only.
func (e *Engine) RecordAccess(ctx context.Context, itemID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		logger.Warn("Ignoring access to %q: %v", itemID, domain.ErrEngineClosed)
		return
	}
	e.usage.RecordAccess(ctx, itemID)
}

// Stats summarises the store contents.
func (e *Engine) Stats(ctx context.Context) (domain.StoreStats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return domain.StoreStats{}, domain.ErrEngineClosed
	}

	stats, err := e.index.Stats(ctx)
	if err != nil {
		return stats, err
	}

	used, err := e.usage.Count(ctx)
	if err != nil {
		return stats, fmt.Errorf("count usage: %w", err)
	}
	stats.UsageRecords = used

	return stats, nil
}

// TopUsed returns the n most opened documents.
func (e *Engine) TopUsed(ctx context.Context, n int) ([]domain.UsageRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, domain.ErrEngineClosed
	}
	return e.usage.Top(ctx, n)
}

// Close releases the store. It is safe to call more than once.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	if e.store == nil {
		return nil
	}
	return e.store.Close()
}
