package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/pigpen/internal/core/domain"
	"github.com/custodia-labs/pigpen/internal/core/ports/driven"
	"github.com/custodia-labs/pigpen/internal/core/ports/driving"
	"github.com/custodia-labs/pigpen/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexService performs full index passes over a vault.
// Every pass rescans the whole vault and writes all documents in one batch.
type IndexService struct {
	scanner  driven.Scanner
	docStore driven.DocumentStore
	runStore driven.IndexRunStore
	lock     driven.IndexLock

	prune     bool
	onIndexed func()
	now       func() time.Time
}

// NewIndexService creates a new index service.
// The runStore and lock parameters are optional (can be nil).
func NewIndexService(
	scanner driven.Scanner,
	docStore driven.DocumentStore,
	runStore driven.IndexRunStore,
	lock driven.IndexLock,
) *IndexService {
	return &IndexService{
		scanner:  scanner,
		docStore: docStore,
		runStore: runStore,
		lock:     lock,
		prune:    true,
		now:      time.Now,
	}
}

// SetPrune controls whether documents that vanished from the vault are
// removed after a pass.
func (s *IndexService) SetPrune(prune bool) {
	s.prune = prune
}

// SetOnIndexed registers a callback run after every committed pass.
func (s *IndexService) SetOnIndexed(fn func()) {
	s.onIndexed = fn
}

// SetClock replaces the clock used for timestamps.
func (s *IndexService) SetClock(now func() time.Time) {
	s.now = now
}

// Index scans root and upserts every qualifying document in a single
// transaction. Per-file failures are recorded in the report and never
// abort the pass. A store failure rolls the whole pass back.
func (s *IndexService) Index(ctx context.Context, root string) (domain.IndexReport, error) {
	logger.Section("Index Pass")

	report := domain.IndexReport{
		RunID:     uuid.New().String(),
		Root:      resolveRoot(root),
		StartedAt: s.now(),
	}
	logger.Debug("Run %s: root=%q", report.RunID, report.Root)

	if s.lock != nil {
		acquired, err := s.lock.TryLock()
		if err != nil {
			return report, fmt.Errorf("acquire index lock: %w", err)
		}
		if !acquired {
			return report, domain.ErrIndexInProgress
		}
		defer func() {
			if err := s.lock.Unlock(); err != nil {
				logger.Warn("Failed to release index lock: %v", err)
			}
		}()
	}

	// Cancelling scanCtx stops the walk if the pass aborts early
	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	items, err := s.scanner.Scan(scanCtx, report.Root)
	if err != nil {
		return report, fmt.Errorf("scan vault: %w", err)
	}

	batch, err := s.docStore.BeginBatch(ctx, report.Root)
	if err != nil {
		return report, fmt.Errorf("begin batch: %w", err)
	}

	seen := make(map[string]struct{})
	for item := range items {
		if item.HasDocument() {
			if _, dup := seen[item.Document.ID]; dup {
				logger.Debug("%s resolves to already indexed %s", item.Path, item.Document.ID)
				item = domain.ScanItem{Path: item.Path, Outcome: domain.ScanSkipped, Reason: domain.SkipDuplicate}
			}
		}
		if !item.HasDocument() {
			report.Skipped++
			report.Items = append(report.Items, item)
			continue
		}
		if item.Outcome == domain.ScanReadFailed {
			report.ReadFailures++
			report.Items = append(report.Items, item)
		}

		item.Document.IndexedAt = report.StartedAt
		if err := batch.Upsert(ctx, item.Document); err != nil {
			s.rollback(batch)
			return report, fmt.Errorf("index %s: %w", item.Path, err)
		}
		seen[item.Document.ID] = struct{}{}
		report.Indexed++
	}

	// A cancelled walk is partial; committing it would hide missing notes
	if err := ctx.Err(); err != nil {
		s.rollback(batch)
		return report, fmt.Errorf("index cancelled: %w", err)
	}

	if err := batch.Commit(); err != nil {
		return report, fmt.Errorf("commit index: %w", err)
	}
	report.FinishedAt = s.now()

	if s.prune {
		report.Removed = s.pruneOrphans(ctx, report, aliasRoot(root, report.Root), seen)
	}

	if s.runStore != nil {
		if err := s.runStore.SaveRun(ctx, report); err != nil {
			logger.Warn("Failed to record index run: %v", err)
		}
	}

	if s.onIndexed != nil {
		s.onIndexed()
	}

	logger.Info("Indexed %d documents (%d skipped, %d read failures, %d removed) in %s",
		report.Indexed, report.Skipped, report.ReadFailures, report.Removed, report.Duration())

	return report, nil
}

// Stats reports the document count and the last recorded pass.
func (s *IndexService) Stats(ctx context.Context) (domain.StoreStats, error) {
	var stats domain.StoreStats

	count, err := s.docStore.Count(ctx)
	if err != nil {
		return stats, fmt.Errorf("count documents: %w", err)
	}
	stats.Documents = count

	if s.runStore != nil {
		last, err := s.runStore.LastRun(ctx)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return stats, fmt.Errorf("last index run: %w", err)
		}
		stats.LastRun = last
	}

	return stats, nil
}

// pruneOrphans deletes documents under the root that the pass did not see.
// Rows written under alias, the unresolved spelling of a symlinked root,
// are orphans too. An empty pass never prunes so an unmounted vault keeps
// its index.
func (s *IndexService) pruneOrphans(
	ctx context.Context, report domain.IndexReport, alias string, seen map[string]struct{},
) int {
	if report.Indexed == 0 && report.Skipped == 0 {
		logger.Debug("Empty pass, skipping prune")
		return 0
	}

	roots := []string{report.Root}
	if alias != "" {
		roots = append(roots, alias)
	}

	var ids []string
	for _, root := range roots {
		rootIDs, err := s.docStore.ListIDs(ctx, root)
		if err != nil {
			logger.Warn("Failed to list documents for pruning: %v", err)
			return 0
		}
		ids = append(ids, rootIDs...)
	}

	var orphans []string
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			orphans = append(orphans, id)
		}
	}
	if len(orphans) == 0 {
		return 0
	}

	removed, err := s.docStore.Delete(ctx, orphans)
	if err != nil {
		logger.Warn("Failed to prune %d orphaned documents: %v", len(orphans), err)
		return 0
	}
	logger.Debug("Pruned %d orphaned documents", removed)
	return removed
}

func (s *IndexService) rollback(batch driven.DocumentBatch) {
	if err := batch.Rollback(); err != nil {
		logger.Warn("Rollback failed: %v", err)
	}
}

// resolveRoot canonicalises root so documents and prune queries agree on it.
func resolveRoot(root string) string {
	if strings.TrimSpace(root) == "" {
		return ""
	}
	abs, err := domain.DocumentID(root)
	if err != nil {
		return root
	}
	return abs
}

// aliasRoot returns the absolute, unresolved spelling of root when it
// differs from the canonical one, and "" otherwise.
func aliasRoot(root, canonical string) string {
	if strings.TrimSpace(root) == "" {
		return ""
	}
	abs, err := domain.AbsolutePath(root)
	if err != nil || abs == canonical {
		return ""
	}
	return abs
}
