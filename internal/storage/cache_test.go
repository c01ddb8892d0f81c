package storage

import (
	"context"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payout-sync/internal/models"
	"payout-sync/internal/redis"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewFromAddr(mr.Addr())
	t.Cleanup(func() { rdb.Close() })
	return NewCache(slog.New(slog.DiscardHandler), rdb), mr
}

func somePayouts() []models.Payout {
	id := "p1"
	return []models.Payout{
		{ID: &id, Amount: "120.50", Currency: "USD", Status: models.StatusCompleted, CreatedAt: "2026-08-01T00:00:00Z", PaymentProcessor: "bank"},
		{Amount: "33.00", Currency: "USD", Status: models.StatusPayable, CreatedAt: "2026-08-15T00:00:00Z", PaymentProcessor: "paypal"},
	}
}

func TestCache_PayoutsRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	got, stamp := cache.LoadPayouts(ctx)
	assert.Nil(t, got)
	assert.Nil(t, stamp)

	require.NoError(t, cache.SavePayouts(ctx, somePayouts()))

	got, stamp = cache.LoadPayouts(ctx)
	require.Len(t, got, 2)
	assert.Equal(t, "120.50", got[0].Amount)
	require.NotNil(t, got[0].ID)
	assert.Equal(t, "p1", *got[0].ID)
	require.NotNil(t, stamp)
}

func TestCache_SaveOverwritesWholesale(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SavePayouts(ctx, somePayouts()))
	require.NoError(t, cache.SavePayouts(ctx, somePayouts()[:1]))

	got, _ := cache.LoadPayouts(ctx)
	require.Len(t, got, 1)
}

func TestCache_ClearPayouts(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SavePayouts(ctx, somePayouts()))
	require.NoError(t, cache.ClearPayouts(ctx))

	got, stamp := cache.LoadPayouts(ctx)
	assert.Nil(t, got)
	assert.Nil(t, stamp)
}

func TestCache_CorruptPayloadReadsEmpty(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	mr.Set(keyPayouts, "{not json")
	mr.Set(keyPayoutsUpdatedAt, "1700000000000")

	got, stamp := cache.LoadPayouts(ctx)
	assert.Nil(t, got)
	assert.Nil(t, stamp)
}

func TestCache_ProfileRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	got, stamp := cache.LoadProfile(ctx)
	assert.Nil(t, got)
	assert.Nil(t, stamp)

	email := "c@example.com"
	require.NoError(t, cache.SaveProfile(ctx, models.User{UserID: "u1", Name: "Creator", Email: &email}))

	got, stamp = cache.LoadProfile(ctx)
	require.NotNil(t, got)
	assert.Equal(t, "Creator", got.Name)
	require.NotNil(t, stamp)

	require.NoError(t, cache.ClearProfile(ctx))
	got, _ = cache.LoadProfile(ctx)
	assert.Nil(t, got)
}

func TestCache_SlotsAreIndependent(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SavePayouts(ctx, somePayouts()))
	require.NoError(t, cache.SaveProfile(ctx, models.User{UserID: "u1", Name: "Creator"}))

	require.NoError(t, cache.ClearProfile(ctx))

	payouts, _ := cache.LoadPayouts(ctx)
	assert.Len(t, payouts, 2)
	profile, _ := cache.LoadProfile(ctx)
	assert.Nil(t, profile)
}

func TestArchiveSimulator_Deterministic(t *testing.T) {
	sim := NewArchiveSimulator("payouts", "https://archive.local")
	ctx := context.Background()

	url1, err := sim.ArchiveSnapshot(ctx, somePayouts())
	require.NoError(t, err)
	url2, err := sim.ArchiveSnapshot(ctx, somePayouts())
	require.NoError(t, err)
	assert.Equal(t, url1, url2)
	assert.Contains(t, url1, "https://archive.local/payouts/snapshots/")

	_, err = sim.ArchiveSnapshot(ctx, nil)
	assert.Error(t, err)
}
