package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pigpen/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pigpen/internal/core/domain"
)

func TestUsageService_RecordAccess(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUsageStore()
	service := NewUsageService(store)

	first := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	service.SetClock(fixedClock(first))
	service.RecordAccess(ctx, "/vault/plan.md")

	rec, err := service.Get(ctx, "/vault/plan.md")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.UsageCount)
	assert.Equal(t, first, rec.LastAccessed)

	second := first.Add(time.Hour)
	service.SetClock(fixedClock(second))
	service.RecordAccess(ctx, "/vault/plan.md")

	rec, err = service.Get(ctx, "/vault/plan.md")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.UsageCount)
	assert.Equal(t, second, rec.LastAccessed)
}

func TestUsageService_RecordAccess_UnknownIDIsAccepted(t *testing.T) {
	ctx := context.Background()
	service := NewUsageService(memory.NewUsageStore())

	require.NoError(t, service.RecordAccessStrict(ctx, "never-indexed"))

	rec, err := service.Get(ctx, "never-indexed")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.UsageCount)
}

func TestUsageService_RecordAccessStrict_EmptyID(t *testing.T) {
	service := NewUsageService(memory.NewUsageStore())

	err := service.RecordAccessStrict(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUsageService_FailuresAreSwallowed(t *testing.T) {
	service := NewUsageService(failingUsageStore{})

	assert.NotPanics(t, func() {
		service.RecordAccess(context.Background(), "/vault/plan.md")
	})
	assert.ErrorIs(t, service.RecordAccessStrict(context.Background(), "/vault/plan.md"), errBoom)
}

func TestUsageService_OnRecord(t *testing.T) {
	service := NewUsageService(memory.NewUsageStore())
	calls := 0
	service.SetOnRecord(func() { calls++ })

	service.RecordAccess(context.Background(), "a")
	service.RecordAccess(context.Background(), "")
	assert.Equal(t, 1, calls)
}

func TestUsageService_GetNotFound(t *testing.T) {
	_, err := NewUsageService(memory.NewUsageStore()).Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUsageService_TopAndCount(t *testing.T) {
	ctx := context.Background()
	service := NewUsageService(memory.NewUsageStore())

	for range 3 {
		service.RecordAccess(ctx, "b")
	}
	service.RecordAccess(ctx, "a")

	count, err := service.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	top, err := service.Top(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "b", top[0].ItemID)
	assert.Equal(t, int64(3), top[0].UsageCount)
}
