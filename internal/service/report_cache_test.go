package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-ledger/internal/models"
)

func newTestCache(t *testing.T) *ReportCache {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewReportCache(client, time.Minute)
}

func TestReportCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	var miss models.ProfitAndLoss
	gen, ok := cache.Get(ctx, &miss, "pnl", "2025-01-01", "2025-01-31")
	assert.False(t, ok)

	report := models.ProfitAndLoss{StartDate: "2025-01-01", EndDate: "2025-01-31", NetProfit: 5000}
	cache.Set(ctx, gen, report, "pnl", "2025-01-01", "2025-01-31")

	var hit models.ProfitAndLoss
	_, ok = cache.Get(ctx, &hit, "pnl", "2025-01-01", "2025-01-31")
	require.True(t, ok)
	assert.Equal(t, int64(5000), hit.NetProfit)
}

func TestReportCacheBumpOrphansAllEntries(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	gen, _ := cache.Get(ctx, &models.ProfitAndLoss{}, "pnl", "2025-01-01", "2025-01-31")
	cache.Set(ctx, gen, models.ProfitAndLoss{NetProfit: 5000}, "pnl", "2025-01-01", "2025-01-31")

	cache.Bump(ctx)

	var stale models.ProfitAndLoss
	_, ok := cache.Get(ctx, &stale, "pnl", "2025-01-01", "2025-01-31")
	assert.False(t, ok, "bump must invalidate every cached report")
}

// A posting that commits while a report is being computed must not let the
// stale report be cached under the new generation.
func TestReportCacheConcurrentBumpOrphansInFlightSet(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	// Reader misses and captures the current generation.
	var miss models.ProfitAndLoss
	gen, ok := cache.Get(ctx, &miss, "pnl", "2025-01-01", "2025-01-31")
	require.False(t, ok)

	// A posting commits before the reader finishes computing.
	cache.Bump(ctx)

	// The reader stores its now-stale result under the captured generation.
	cache.Set(ctx, gen, models.ProfitAndLoss{NetProfit: 5000}, "pnl", "2025-01-01", "2025-01-31")

	// Post-bump readers must not see the stale report.
	var got models.ProfitAndLoss
	_, ok = cache.Get(ctx, &got, "pnl", "2025-01-01", "2025-01-31")
	assert.False(t, ok)
}

func TestReportCacheNilClientIsNoOp(t *testing.T) {
	ctx := context.Background()
	var cache *ReportCache

	gen, ok := cache.Get(ctx, &models.ProfitAndLoss{}, "pnl", "2025-01-01", "2025-01-31")
	assert.False(t, ok)
	cache.Set(ctx, gen, models.ProfitAndLoss{}, "pnl", "2025-01-01", "2025-01-31")
	cache.Bump(ctx)
}
