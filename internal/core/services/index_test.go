package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pigpen/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pigpen/internal/connectors/filesystem"
	"github.com/custodia-labs/pigpen/internal/core/domain"
)

const vault = "/vault"

func TestIndexService_Index(t *testing.T) {
	ctx := context.Background()
	scanner := &sliceScanner{items: []domain.ScanItem{
		note("/vault/plan.md", "Q1 rollout"),
		note("/vault/daily.md", "standup"),
		unreadable("/vault/locked.md"),
		skippedItem("/vault/image.png", domain.SkipExtension),
	}}
	docs := memory.NewDocumentStore()
	runs := memory.NewIndexRunStore()
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	service := NewIndexService(scanner, docs, runs, nil)
	service.SetClock(fixedClock(started))

	report, err := service.Index(ctx, vault)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Indexed)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.ReadFailures)
	assert.Equal(t, vault, report.Root)
	assert.Len(t, report.Items, 2)
	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err)

	count, err := docs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	locked, err := docs.Get(ctx, "/vault/locked.md")
	require.NoError(t, err)
	assert.Empty(t, locked.Content)
	assert.Equal(t, started, locked.IndexedAt)

	require.Len(t, runs.Runs(), 1)
	assert.Equal(t, report.RunID, runs.Runs()[0].RunID)
	assert.Equal(t, []string{vault}, scanner.roots)
}

func TestIndexService_Index_Idempotent(t *testing.T) {
	ctx := context.Background()
	scanner := &sliceScanner{items: []domain.ScanItem{
		note("/vault/a.md", "alpha"),
		note("/vault/b.md", "beta"),
	}}
	docs := memory.NewDocumentStore()
	service := NewIndexService(scanner, docs, nil, nil)

	first, err := service.Index(ctx, vault)
	require.NoError(t, err)
	second, err := service.Index(ctx, vault)
	require.NoError(t, err)

	assert.Equal(t, first.Indexed, second.Indexed)
	assert.NotEqual(t, first.RunID, second.RunID)

	count, err := docs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestIndexService_Index_UpsertReplacesContent(t *testing.T) {
	ctx := context.Background()
	scanner := &sliceScanner{items: []domain.ScanItem{note("/vault/a.md", "old text")}}
	docs := memory.NewDocumentStore()
	service := NewIndexService(scanner, docs, nil, nil)

	_, err := service.Index(ctx, vault)
	require.NoError(t, err)

	scanner.items = []domain.ScanItem{note("/vault/a.md", "new text")}
	_, err = service.Index(ctx, vault)
	require.NoError(t, err)

	doc, err := docs.Get(ctx, "/vault/a.md")
	require.NoError(t, err)
	assert.Equal(t, "new text", doc.Content)
}

func TestIndexService_Index_Prune(t *testing.T) {
	ctx := context.Background()

	t.Run("removes documents that left the vault", func(t *testing.T) {
		scanner := &sliceScanner{items: []domain.ScanItem{
			note("/vault/a.md", "alpha"),
			note("/vault/b.md", "beta"),
		}}
		docs := memory.NewDocumentStore()
		service := NewIndexService(scanner, docs, nil, nil)

		_, err := service.Index(ctx, vault)
		require.NoError(t, err)

		scanner.items = scanner.items[:1]
		report, err := service.Index(ctx, vault)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Removed)

		_, err = docs.Get(ctx, "/vault/b.md")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("disabled keeps stale documents", func(t *testing.T) {
		scanner := &sliceScanner{items: []domain.ScanItem{
			note("/vault/a.md", "alpha"),
			note("/vault/b.md", "beta"),
		}}
		docs := memory.NewDocumentStore()
		service := NewIndexService(scanner, docs, nil, nil)
		service.SetPrune(false)

		_, err := service.Index(ctx, vault)
		require.NoError(t, err)

		scanner.items = scanner.items[:1]
		report, err := service.Index(ctx, vault)
		require.NoError(t, err)
		assert.Zero(t, report.Removed)

		count, err := docs.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("empty pass never prunes", func(t *testing.T) {
		scanner := &sliceScanner{items: []domain.ScanItem{note("/vault/a.md", "alpha")}}
		docs := memory.NewDocumentStore()
		service := NewIndexService(scanner, docs, nil, nil)

		_, err := service.Index(ctx, vault)
		require.NoError(t, err)

		scanner.items = nil
		report, err := service.Index(ctx, vault)
		require.NoError(t, err)
		assert.Zero(t, report.Indexed)
		assert.Zero(t, report.Removed)

		count, err := docs.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("other roots are untouched", func(t *testing.T) {
		scanner := &sliceScanner{items: []domain.ScanItem{note("/other/x.md", "x")}}
		docs := memory.NewDocumentStore()
		service := NewIndexService(scanner, docs, nil, nil)

		_, err := service.Index(ctx, "/other")
		require.NoError(t, err)

		scanner.items = []domain.ScanItem{note("/vault/a.md", "alpha")}
		report, err := service.Index(ctx, vault)
		require.NoError(t, err)
		assert.Zero(t, report.Removed)

		count, err := docs.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})
}

func TestIndexService_Index_StoreFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	scanner := &sliceScanner{items: []domain.ScanItem{
		note("/vault/a.md", "alpha"),
		note("/vault/b.md", "beta"),
		note("/vault/c.md", "gamma"),
	}}

	t.Run("upsert", func(t *testing.T) {
		docs := newFaultyDocStore()
		docs.upsertErr = domain.ErrStorage
		docs.upsertAfter = 1
		runs := memory.NewIndexRunStore()

		_, err := NewIndexService(scanner, docs, runs, nil).Index(ctx, vault)
		require.Error(t, err)
		assert.True(t, domain.IsStorageError(err))

		count, err := docs.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.Empty(t, runs.Runs())
	})

	t.Run("commit", func(t *testing.T) {
		docs := newFaultyDocStore()
		docs.commitErr = domain.ErrStorage

		_, err := NewIndexService(scanner, docs, nil, nil).Index(ctx, vault)
		assert.ErrorIs(t, err, domain.ErrStorage)

		count, err := docs.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("begin", func(t *testing.T) {
		docs := newFaultyDocStore()
		docs.beginErr = domain.ErrStorage

		_, err := NewIndexService(scanner, docs, nil, nil).Index(ctx, vault)
		assert.ErrorIs(t, err, domain.ErrStorage)
	})
}

func TestIndexService_Index_ScanError(t *testing.T) {
	scanner := &sliceScanner{scanErr: errBoom}
	_, err := NewIndexService(scanner, memory.NewDocumentStore(), nil, nil).Index(context.Background(), vault)
	assert.ErrorIs(t, err, errBoom)
}

func TestIndexService_Index_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scanner := &sliceScanner{items: []domain.ScanItem{note("/vault/a.md", "alpha")}}
	docs := memory.NewDocumentStore()

	_, err := NewIndexService(scanner, docs, nil, nil).Index(ctx, vault)
	assert.ErrorIs(t, err, context.Canceled)

	count, err := docs.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIndexService_Index_Lock(t *testing.T) {
	ctx := context.Background()
	scanner := &sliceScanner{items: []domain.ScanItem{note("/vault/a.md", "alpha")}}

	t.Run("held elsewhere", func(t *testing.T) {
		docs := memory.NewDocumentStore()
		lock := &mockLock{busy: true}

		_, err := NewIndexService(scanner, docs, nil, lock).Index(ctx, vault)
		assert.ErrorIs(t, err, domain.ErrIndexInProgress)

		count, err := docs.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("released after pass", func(t *testing.T) {
		lock := &mockLock{}
		service := NewIndexService(scanner, memory.NewDocumentStore(), nil, lock)

		_, err := service.Index(ctx, vault)
		require.NoError(t, err)
		assert.False(t, lock.held)
		assert.Equal(t, 1, lock.unlocked)

		_, err = service.Index(ctx, vault)
		require.NoError(t, err)
	})

	t.Run("released after failure", func(t *testing.T) {
		docs := newFaultyDocStore()
		docs.commitErr = domain.ErrStorage
		lock := &mockLock{}

		_, err := NewIndexService(scanner, docs, nil, lock).Index(ctx, vault)
		require.Error(t, err)
		assert.False(t, lock.held)
	})

	t.Run("lock error", func(t *testing.T) {
		lock := &mockLock{tryErr: errBoom}
		_, err := NewIndexService(scanner, memory.NewDocumentStore(), nil, lock).Index(ctx, vault)
		assert.ErrorIs(t, err, errBoom)
	})
}

func TestIndexService_Index_RunStoreFailureIsNotFatal(t *testing.T) {
	scanner := &sliceScanner{items: []domain.ScanItem{note("/vault/a.md", "alpha")}}

	report, err := NewIndexService(scanner, memory.NewDocumentStore(), failingRunStore{}, nil).
		Index(context.Background(), vault)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Indexed)
}

func TestIndexService_Index_OnIndexed(t *testing.T) {
	scanner := &sliceScanner{items: []domain.ScanItem{note("/vault/a.md", "alpha")}}
	service := NewIndexService(scanner, newFaultyDocStore(), nil, nil)

	calls := 0
	service.SetOnIndexed(func() { calls++ })

	_, err := service.Index(context.Background(), vault)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestIndexService_Stats(t *testing.T) {
	ctx := context.Background()
	scanner := &sliceScanner{items: []domain.ScanItem{
		note("/vault/a.md", "alpha"),
		note("/vault/b.md", "beta"),
	}}
	docs := memory.NewDocumentStore()
	runs := memory.NewIndexRunStore()
	service := NewIndexService(scanner, docs, runs, nil)

	stats, err := service.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Documents)
	assert.Nil(t, stats.LastRun)

	report, err := service.Index(ctx, vault)
	require.NoError(t, err)

	stats, err = service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Documents)
	require.NotNil(t, stats.LastRun)
	assert.Equal(t, report.RunID, stats.LastRun.RunID)
}

func TestIndexService_Stats_RunStoreError(t *testing.T) {
	service := NewIndexService(&sliceScanner{}, memory.NewDocumentStore(), failingRunStore{}, nil)
	_, err := service.Stats(context.Background())
	assert.True(t, errors.Is(err, errBoom))
}

// linkVault points link at target, skipping the test where symlinks are
// unavailable.
func linkVault(t *testing.T, target, link string) {
	t.Helper()
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
}

func writeNote(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestIndexService_Index_SymlinkedRoot(t *testing.T) {
	ctx := context.Background()
	tmp, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	target := filepath.Join(tmp, "real")
	writeNote(t, filepath.Join(target, "a.md"), "Q1 rollout")
	link := filepath.Join(tmp, "vault")
	linkVault(t, target, link)

	docs := memory.NewDocumentStore()
	service := NewIndexService(filesystem.NewScanner(filesystem.ScanOptions{}), docs, nil, nil)

	report, err := service.Index(ctx, link)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Indexed)
	assert.Zero(t, report.Skipped)
	assert.Empty(t, report.Items)
	assert.Equal(t, target, report.Root)

	doc, err := docs.Get(ctx, filepath.Join(target, "a.md"))
	require.NoError(t, err)
	assert.Equal(t, "Q1 rollout", doc.Content)
}

func TestIndexService_Index_VaultMovedBehindSymlink(t *testing.T) {
	ctx := context.Background()
	tmp, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	vaultDir := filepath.Join(tmp, "vault")
	writeNote(t, filepath.Join(vaultDir, "a.md"), "Q1 rollout")

	docs := memory.NewDocumentStore()
	service := NewIndexService(filesystem.NewScanner(filesystem.ScanOptions{}), docs, nil, nil)

	_, err = service.Index(ctx, vaultDir)
	require.NoError(t, err)

	moved := filepath.Join(tmp, "moved")
	require.NoError(t, os.Rename(vaultDir, moved))
	linkVault(t, moved, vaultDir)

	report, err := service.Index(ctx, vaultDir)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Indexed)
	assert.Equal(t, 1, report.Removed)

	ids, err := docs.ListIDs(ctx, moved)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(moved, "a.md")}, ids)

	count, err := docs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIndexService_Index_DuplicateIDsSkipped(t *testing.T) {
	ctx := context.Background()
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	writeNote(t, filepath.Join(root, "a.md"), "Q1 rollout")
	linkVault(t, filepath.Join(root, "a.md"), filepath.Join(root, "b.md"))

	docs := memory.NewDocumentStore()
	service := NewIndexService(filesystem.NewScanner(filesystem.ScanOptions{}), docs, nil, nil)

	report, err := service.Index(ctx, root)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Indexed)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Items, 1)
	assert.Equal(t, domain.SkipDuplicate, report.Items[0].Reason)
	assert.Equal(t, filepath.Join(root, "b.md"), report.Items[0].Path)
}
