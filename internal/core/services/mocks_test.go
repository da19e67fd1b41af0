package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/pigpen/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pigpen/internal/core/domain"
	"github.com/custodia-labs/pigpen/internal/core/ports/driven"
)

// --- Mock implementations ---

var errBoom = errors.New("boom")

// sliceScanner implements driven.Scanner over a fixed list of items.
type sliceScanner struct {
	items   []domain.ScanItem
	scanErr error
	roots   []string
}

func (s *sliceScanner) Scan(_ context.Context, root string) (<-chan domain.ScanItem, error) {
	s.roots = append(s.roots, root)
	if s.scanErr != nil {
		return nil, s.scanErr
	}
	ch := make(chan domain.ScanItem, len(s.items))
	for _, item := range s.items {
		// Copy the document so passes never share pointers
		if item.Document != nil {
			doc := *item.Document
			item.Document = &doc
		}
		ch <- item
	}
	close(ch)
	return ch, nil
}

func note(path, content string) domain.ScanItem {
	return domain.ScanItem{
		Path:    path,
		Outcome: domain.ScanIndexed,
		Document: &domain.Document{
			ID:      path,
			Path:    path,
			Title:   domain.TitleFromPath(path, ".md"),
			Content: content,
		},
	}
}

func unreadable(path string) domain.ScanItem {
	item := note(path, "")
	item.Outcome = domain.ScanReadFailed
	item.Reason = domain.SkipUnreadable
	item.Err = errBoom
	return item
}

func skippedItem(path string, reason domain.SkipReason) domain.ScanItem {
	return domain.ScanItem{Path: path, Outcome: domain.ScanSkipped, Reason: reason}
}

// mockLock implements driven.IndexLock.
type mockLock struct {
	busy     bool
	tryErr   error
	held     bool
	unlocked int
}

func (m *mockLock) TryLock() (bool, error) {
	if m.tryErr != nil {
		return false, m.tryErr
	}
	if m.busy || m.held {
		return false, nil
	}
	m.held = true
	return true, nil
}

func (m *mockLock) Unlock() error {
	m.held = false
	m.unlocked++
	return nil
}

// faultyDocStore wraps the memory store and injects batch failures.
type faultyDocStore struct {
	*memory.DocumentStore
	upsertErr   error
	upsertAfter int
	commitErr   error
	beginErr    error
	searchErr   error

	mu       sync.Mutex
	searches []driven.FTSQuery
}

func newFaultyDocStore() *faultyDocStore {
	return &faultyDocStore{DocumentStore: memory.NewDocumentStore()}
}

func (f *faultyDocStore) BeginBatch(ctx context.Context, root string) (driven.DocumentBatch, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	inner, err := f.DocumentStore.BeginBatch(ctx, root)
	if err != nil {
		return nil, err
	}
	return &faultyBatch{DocumentBatch: inner, store: f}, nil
}

func (f *faultyDocStore) Search(ctx context.Context, q driven.FTSQuery) ([]driven.Hit, error) {
	f.mu.Lock()
	f.searches = append(f.searches, q)
	f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.DocumentStore.Search(ctx, q)
}

func (f *faultyDocStore) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searches)
}

func (f *faultyDocStore) lastSearch() driven.FTSQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searches[len(f.searches)-1]
}

type faultyBatch struct {
	driven.DocumentBatch
	store   *faultyDocStore
	upserts int
}

func (b *faultyBatch) Upsert(ctx context.Context, doc *domain.Document) error {
	b.upserts++
	if b.store.upsertErr != nil && b.upserts > b.store.upsertAfter {
		return b.store.upsertErr
	}
	return b.DocumentBatch.Upsert(ctx, doc)
}

func (b *faultyBatch) Commit() error {
	if b.store.commitErr != nil {
		_ = b.DocumentBatch.Rollback()
		return b.store.commitErr
	}
	return b.DocumentBatch.Commit()
}

// failingRunStore implements driven.IndexRunStore and always fails.
type failingRunStore struct{}

func (failingRunStore) SaveRun(_ context.Context, _ domain.IndexReport) error {
	return errBoom
}

func (failingRunStore) LastRun(_ context.Context) (*domain.IndexReport, error) {
	return nil, errBoom
}

// failingUsageStore implements driven.UsageStore and always fails.
type failingUsageStore struct{}

func (failingUsageStore) RecordAccess(_ context.Context, _ string, _ time.Time) error {
	return errBoom
}

func (failingUsageStore) Get(_ context.Context, _ string) (*domain.UsageRecord, error) {
	return nil, errBoom
}

func (failingUsageStore) GetMany(_ context.Context, _ []string) (map[string]domain.UsageRecord, error) {
	return nil, errBoom
}

func (failingUsageStore) Count(_ context.Context) (int, error) {
	return 0, errBoom
}

func (failingUsageStore) Top(_ context.Context, _ int) ([]domain.UsageRecord, error) {
	return nil, errBoom
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// commitDocs writes docs directly into a memory store.
func commitDocs(ctx context.Context, store driven.DocumentStore, root string, docs ...domain.Document) error {
	batch, err := store.BeginBatch(ctx, root)
	if err != nil {
		return err
	}
	for i := range docs {
		if err := batch.Upsert(ctx, &docs[i]); err != nil {
			return err
		}
	}
	return batch.Commit()
}
