package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pigpen/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pigpen/internal/core/domain"
)

func newMemoryEngine() (*Engine, *memory.UsageStore) {
	docs := memory.NewDocumentStore()
	usage := memory.NewUsageStore()
	scanner := &sliceScanner{items: []domain.ScanItem{note("/vault/plan.md", "Q1 rollout")}}
	return NewEngine(
		NewIndexService(scanner, docs, nil, nil),
		NewSearchService(docs, usage, defaultSearchSettings()),
		NewUsageService(usage),
		nil,
	), usage
}

func TestEngineState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", EngineUninitialized.String())
	assert.Equal(t, "ready", EngineReady.String())
	assert.Equal(t, "closed", EngineClosed.String())
	assert.Equal(t, "unknown", EngineState(99).String())
}

func TestEngineHost_BeforeAttach(t *testing.T) {
	ctx := context.Background()
	host := NewEngineHost()
	assert.Equal(t, EngineUninitialized, host.State())

	_, err := host.IndexVault(ctx, vault)
	require.ErrorIs(t, err, domain.ErrNotInitialized)
	assert.Equal(t, "search engine not initialized", err.Error())

	_, err = host.SearchVault(ctx, "rollout")
	assert.ErrorIs(t, err, domain.ErrNotInitialized)

	assert.NotPanics(t, func() { host.RecordAccess(ctx, "a") })
}

func TestEngineHost_Attach(t *testing.T) {
	ctx := context.Background()
	host := NewEngineHost()
	engine, usage := newMemoryEngine()

	require.NoError(t, host.Attach(engine))
	assert.Equal(t, EngineReady, host.State())

	got, err := host.Engine()
	require.NoError(t, err)
	assert.Same(t, engine, got)

	n, err := host.IndexVault(ctx, vault)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	results, err := host.SearchVault(ctx, "rollout")
	require.NoError(t, err)
	require.Len(t, results, 1)

	host.RecordAccess(ctx, results[0].ID)
	rec, err := usage.Get(ctx, results[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.UsageCount)
}

func TestEngineHost_Close(t *testing.T) {
	ctx := context.Background()
	host := NewEngineHost()
	engine, _ := newMemoryEngine()
	require.NoError(t, host.Attach(engine))

	require.NoError(t, host.Close())
	require.NoError(t, host.Close())
	assert.Equal(t, EngineClosed, host.State())

	_, err := host.SearchVault(ctx, "rollout")
	assert.ErrorIs(t, err, domain.ErrEngineClosed)

	other, _ := newMemoryEngine()
	assert.ErrorIs(t, host.Attach(other), domain.ErrEngineClosed)

	// The engine itself was closed too
	_, err = engine.SearchVault(ctx, "rollout")
	assert.ErrorIs(t, err, domain.ErrEngineClosed)
}

func TestEngineHost_CloseBeforeAttach(t *testing.T) {
	host := NewEngineHost()
	require.NoError(t, host.Close())
	assert.Equal(t, EngineClosed, host.State())
}
