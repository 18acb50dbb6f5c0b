package analytics

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supplypulse/backend/internal/domain"
)

func snapshotWithOrders(n int, orders int, revenue float64) domain.Snapshot {
	return domain.Snapshot{
		ID:           fmt.Sprintf("snap-%02d", n),
		Period:       domain.PeriodDaily,
		Date:         day(n),
		TotalOrders:  orders,
		TotalRevenue: revenue,
	}
}

func TestForecastNeedsTwoSnapshots(t *testing.T) {
	assert.Equal(t, domain.Forecasts{DemandTrend: "stable"}, ForecastNextPeriod(nil))

	single := []domain.Snapshot{snapshotWithOrders(1, 10, 100)}
	f := ForecastNextPeriod(single)
	assert.Equal(t, 0, f.NextPeriodOrders)
	assert.Equal(t, 0.0, f.NextPeriodRevenue)
	assert.Equal(t, "stable", f.DemandTrend)
}

func TestForecastTrendBands(t *testing.T) {
	rising := ForecastNextPeriod([]domain.Snapshot{
		snapshotWithOrders(1, 10, 100),
		snapshotWithOrders(2, 20, 200),
	})
	assert.Equal(t, "rising", rising.DemandTrend)
	assert.Equal(t, 40, rising.NextPeriodOrders)
	assert.Equal(t, 400.0, rising.NextPeriodRevenue)

	falling := ForecastNextPeriod([]domain.Snapshot{
		snapshotWithOrders(1, 20, 200),
		snapshotWithOrders(2, 10, 100),
	})
	assert.Equal(t, "falling", falling.DemandTrend)
	assert.Equal(t, 5, falling.NextPeriodOrders)

	// Growth inside the band reads as stable.
	stable := ForecastNextPeriod([]domain.Snapshot{
		snapshotWithOrders(1, 100, 1000),
		snapshotWithOrders(2, 102, 1020),
	})
	assert.Equal(t, "stable", stable.DemandTrend)
	assert.Equal(t, 104, stable.NextPeriodOrders)
}

func TestForecastSkipsZeroOrderPriors(t *testing.T) {
	f := ForecastNextPeriod([]domain.Snapshot{
		snapshotWithOrders(1, 0, 0),
		snapshotWithOrders(2, 10, 100),
		snapshotWithOrders(3, 10, 100),
	})
	assert.Equal(t, "stable", f.DemandTrend)
	assert.Equal(t, 10, f.NextPeriodOrders)

	// Every prior is zero: no growth samples, the latest carries forward.
	f = ForecastNextPeriod([]domain.Snapshot{
		snapshotWithOrders(1, 0, 0),
		snapshotWithOrders(2, 0, 0),
		snapshotWithOrders(3, 5, 50),
	})
	assert.Equal(t, "stable", f.DemandTrend)
	assert.Equal(t, 5, f.NextPeriodOrders)
}

func TestForecastFloorsAtZero(t *testing.T) {
	f := ForecastNextPeriod([]domain.Snapshot{
		snapshotWithOrders(1, 10, 100),
		snapshotWithOrders(2, 0, 0),
	})
	assert.Equal(t, "falling", f.DemandTrend)
	assert.Equal(t, 0, f.NextPeriodOrders)
	assert.Equal(t, 0.0, f.NextPeriodRevenue)
}

func TestRefreshForecastWritesIntoLatestSnapshot(t *testing.T) {
	agg, store := newTestAggregator(t)
	ctx := context.Background()

	for n, orders := range map[int]int{10: 10, 11: 20, 12: 40} {
		s := snapshotWithOrders(n, orders, float64(orders)*10)
		require.NoError(t, store.Snapshots().Upsert(ctx, &s))
	}

	forecast, err := agg.RefreshForecast(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rising", forecast.DemandTrend)
	assert.Equal(t, 80, forecast.NextPeriodOrders)

	latest, err := store.Snapshots().Get(ctx, domain.PeriodDaily, day(12))
	require.NoError(t, err)
	assert.Equal(t, *forecast, latest.Forecasts)
}

func TestRefreshForecastWithoutHistory(t *testing.T) {
	agg, _ := newTestAggregator(t)

	_, err := agg.RefreshForecast(context.Background())
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestGenerateSnapshotPreservesForecast(t *testing.T) {
	agg, store := newTestAggregator(t)
	ctx := context.Background()

	for n, orders := range map[int]int{10: 10, 11: 20} {
		s := snapshotWithOrders(n, orders, float64(orders)*10)
		require.NoError(t, store.Snapshots().Upsert(ctx, &s))
	}
	_, err := agg.RefreshForecast(ctx)
	require.NoError(t, err)

	seedDeliveredOrder(store, "o1", 11, 100, 0)
	regenerated, err := agg.GenerateSnapshot(ctx, domain.PeriodDaily, day(11))
	require.NoError(t, err)

	assert.Equal(t, 1, regenerated.TotalOrders)
	assert.Equal(t, "rising", regenerated.Forecasts.DemandTrend)
	assert.Equal(t, 40, regenerated.Forecasts.NextPeriodOrders)
}
