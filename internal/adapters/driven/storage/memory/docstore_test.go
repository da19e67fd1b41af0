package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pigpen/internal/core/domain"
	"github.com/custodia-labs/pigpen/internal/core/ports/driven"
)

func commit(t *testing.T, store *DocumentStore, root string, docs ...domain.Document) {
	t.Helper()
	ctx := context.Background()
	batch, err := store.BeginBatch(ctx, root)
	require.NoError(t, err)
	for i := range docs {
		require.NoError(t, batch.Upsert(ctx, &docs[i]))
	}
	require.NoError(t, batch.Commit())
}

func TestDocumentStore_BatchCommitAndGet(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	commit(t, store, "/v", domain.Document{ID: "/v/a.md", Path: "/v/a.md", Title: "a", Content: "alpha"})

	doc, err := store.Get(ctx, "/v/a.md")
	require.NoError(t, err)
	assert.Equal(t, "alpha", doc.Content)

	_, err = store.Get(ctx, "/v/missing.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_RollbackDiscards(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	batch, err := store.BeginBatch(ctx, "/v")
	require.NoError(t, err)
	require.NoError(t, batch.Upsert(ctx, &domain.Document{ID: "x"}))
	require.NoError(t, batch.Rollback())

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDocumentStore_UpsertReplaces(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	commit(t, store, "/v", domain.Document{ID: "a", Content: "one"})
	commit(t, store, "/v", domain.Document{ID: "a", Content: "two"})

	n, _ := store.Count(ctx)
	assert.Equal(t, 1, n)
	doc, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "two", doc.Content)
}

func TestDocumentStore_Search(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	commit(t, store, "/v",
		domain.Document{ID: "a", Title: "a", Content: "rollout rollout plan"},
		domain.Document{ID: "b", Title: "b", Content: "the Rollout"},
		domain.Document{ID: "c", Title: "c", Content: "groceries"},
	)

	hits, err := store.Search(ctx, driven.FTSQuery{Match: "rollout"})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].ID)
	assert.InDelta(t, 2.0, hits[0].Relevance, 1e-9)
	assert.Equal(t, "the [Rollout]", hits[1].Preview)

	_, err = store.Search(ctx, driven.FTSQuery{Match: `"open`})
	assert.ErrorIs(t, err, domain.ErrMalformedQuery)

	hits, err = store.Search(ctx, driven.FTSQuery{Match: "rollout", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestDocumentStore_ListIDsAndDelete(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	commit(t, store, "/v", domain.Document{ID: "b"}, domain.Document{ID: "a"})
	commit(t, store, "/w", domain.Document{ID: "c"})

	ids, err := store.ListIDs(ctx, "/v")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	removed, err := store.Delete(ctx, []string{"a", "zzz"})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	n, _ := store.Count(ctx)
	assert.Equal(t, 2, n)
}

func TestUsageStore(t *testing.T) {
	store := NewUsageStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.RecordAccess(ctx, "a", now))
	require.NoError(t, store.RecordAccess(ctx, "a", now.Add(time.Second)))
	require.NoError(t, store.RecordAccess(ctx, "b", now))
	assert.ErrorIs(t, store.RecordAccess(ctx, "", now), domain.ErrInvalidInput)

	rec, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.UsageCount)
	assert.True(t, now.Add(time.Second).Equal(rec.LastAccessed))

	_, err = store.Get(ctx, "never")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	many, err := store.GetMany(ctx, []string{"a", "never"})
	require.NoError(t, err)
	assert.Len(t, many, 1)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	top, err := store.Top(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "a", top[0].ItemID)
}

func TestIndexRunStore(t *testing.T) {
	store := NewIndexRunStore()
	ctx := context.Background()

	_, err := store.LastRun(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.SaveRun(ctx, domain.IndexReport{RunID: "1", Items: []domain.ScanItem{{Path: "x"}}}))
	require.NoError(t, store.SaveRun(ctx, domain.IndexReport{RunID: "2"}))

	last, err := store.LastRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2", last.RunID)
	assert.Nil(t, store.Runs()[0].Items)
}
