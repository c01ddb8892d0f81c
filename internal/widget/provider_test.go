package widget

import (
	"context"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payout-sync/internal/models"
	"payout-sync/internal/redis"
	"payout-sync/internal/storage"
)

func newTestProvider(t *testing.T) (*Provider, *storage.Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewFromAddr(mr.Addr())
	t.Cleanup(func() { rdb.Close() })

	log := slog.New(slog.DiscardHandler)
	cache := storage.NewCache(log, rdb)
	return NewProvider(log, cache), cache
}

func cachedPayouts() []models.Payout {
	return []models.Payout{
		{Amount: "33.00", Currency: "USD", Status: models.StatusPayable, CreatedAt: "2026-08-15T00:00:00Z", PaymentProcessor: "paypal"},
		{Amount: "120.50", Currency: "USD", Status: models.StatusCompleted, CreatedAt: "2026-08-01T00:00:00Z", PaymentProcessor: "bank"},
		{Amount: "88.00", Currency: "USD", Status: models.StatusCompleted, CreatedAt: "2026-07-01T00:00:00Z", PaymentProcessor: "bank"},
		{Amount: "12.00", Currency: "USD", Status: models.StatusCompleted, CreatedAt: "2026-06-01T00:00:00Z", PaymentProcessor: "bank"},
	}
}

func TestSummary_EmptyCache(t *testing.T) {
	p, _ := newTestProvider(t)

	s := p.Summary(context.Background())
	assert.False(t, s.HasData)
	assert.Empty(t, s.Recent)
	assert.Empty(t, s.PayableAmount)
}

func TestSummary_PayableAndRecent(t *testing.T) {
	p, cache := newTestProvider(t)
	ctx := context.Background()
	require.NoError(t, cache.SavePayouts(ctx, cachedPayouts()))

	s := p.Summary(ctx)
	assert.True(t, s.HasData)
	assert.Equal(t, "33.00", s.PayableAmount)
	assert.Equal(t, "USD", s.PayableCurrency)
	assert.Len(t, s.Recent, 3)
	require.NotNil(t, s.UpdatedAt)
}

func TestSummary_NoPayable(t *testing.T) {
	p, cache := newTestProvider(t)
	ctx := context.Background()
	require.NoError(t, cache.SavePayouts(ctx, cachedPayouts()[1:]))

	s := p.Summary(ctx)
	assert.True(t, s.HasData)
	assert.Empty(t, s.PayableAmount)
}

func TestSummary_RebuildsOnlyAfterDataChanged(t *testing.T) {
	p, cache := newTestProvider(t)
	ctx := context.Background()
	require.NoError(t, cache.SavePayouts(ctx, cachedPayouts()))

	first := p.Summary(ctx)
	require.True(t, first.HasData)

	// cache changes without a notification: stale summary is served
	require.NoError(t, cache.ClearPayouts(ctx))
	cachedAgain := p.Summary(ctx)
	assert.True(t, cachedAgain.HasData)

	p.DataChanged()
	rebuilt := p.Summary(ctx)
	assert.False(t, rebuilt.HasData)
}
