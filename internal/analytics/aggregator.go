// Package analytics derives period-keyed metric snapshots from raw order,
// product and supplier data and serves the aggregated views built on them.
package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/supplypulse/backend/internal/analytics/calc"
	"github.com/supplypulse/backend/internal/cache"
	"github.com/supplypulse/backend/internal/domain"
	"github.com/supplypulse/backend/internal/repository"
)

type Aggregator struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	suppliers repository.SupplierRepository
	snapshots repository.SnapshotRepository
	kpiCache  cache.DashboardKPICache
	now       func() time.Time
}

func NewAggregator(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	suppliers repository.SupplierRepository,
	snapshots repository.SnapshotRepository,
	kpiCache cache.DashboardKPICache,
) *Aggregator {
	return &Aggregator{
		orders:    orders,
		products:  products,
		suppliers: suppliers,
		snapshots: snapshots,
		kpiCache:  kpiCache,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the aggregator clock. Used by tests.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// GenerateSnapshot computes the full metric snapshot for the period window
// containing refDate and upserts it under its (period, windowStart) key.
// Regenerating the same window replaces the metrics in place, so repeated
// runs are safe.
func (a *Aggregator) GenerateSnapshot(ctx context.Context, period domain.Period, refDate time.Time) (*domain.Snapshot, error) {
	start, end := windowBounds(period, refDate)

	orders, err := a.orders.ListInWindow(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load window orders: %w", err)
	}

	window, err := resolveWindow(ctx, orders, a.products, a.suppliers)
	if err != nil {
		return nil, err
	}

	delivery := calc.Delivery(window)
	supplierMetrics := calc.Suppliers(window)
	productMetrics := calc.Products(window)
	regionMetrics := calc.Regions(window)
	kpis := calc.KPIs(delivery, supplierMetrics, productMetrics)

	var revenue float64
	for _, o := range orders {
		revenue += o.TotalOrderValue
	}

	snapshot := &domain.Snapshot{
		ID:            uuid.NewString(),
		Period:        period,
		Date:          start,
		TotalOrders:   len(orders),
		TotalRevenue:  revenue,
		SupplierCount: len(supplierMetrics),
		Delivery:      delivery,
		Suppliers:     supplierMetrics,
		Products:      productMetrics,
		Regions:       regionMetrics,
		KPIs:          kpis,
		GeneratedAt:   a.now(),
	}

	// Preserve an existing forecast; RefreshForecast owns that field.
	if existing, err := a.snapshots.Get(ctx, period, start); err == nil {
		snapshot.Forecasts = existing.Forecasts
	}

	if err := a.snapshots.Upsert(ctx, snapshot); err != nil {
		return nil, err
	}

	if err := a.kpiCache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate kpi cache")
	}

	log.Info().Str("period", string(period)).Time("window_start", start).
		Int("orders", snapshot.TotalOrders).Msg("snapshot generated")

	return snapshot, nil
}

// AggregatedMetrics is a roll-up over a range of stored snapshots.
type AggregatedMetrics struct {
	Period        domain.Period          `json:"period"`
	Start         time.Time              `json:"start"`
	End           time.Time              `json:"end"`
	SnapshotCount int                    `json:"snapshot_count"`
	TotalOrders   int                    `json:"total_orders"`
	TotalRevenue  float64                `json:"total_revenue"`
	Delivery      domain.DeliveryMetrics `json:"delivery"`
	KPIs          domain.KPISet          `json:"kpis"`
}

// GetAggregated rolls up the snapshots in [start, end): additive fields are
// summed, the success rate is recomputed from the summed counts, average
// delivery time is weighted by each snapshot's delivery count, and KPI
// indices are averaged weighted by snapshot count.
func (a *Aggregator) GetAggregated(ctx context.Context, period domain.Period, start, end time.Time) (*AggregatedMetrics, error) {
	snapshots, err := a.snapshots.ListRange(ctx, period, start, end)
	if err != nil {
		return nil, err
	}

	out := &AggregatedMetrics{
		Period:        period,
		Start:         start,
		End:           end,
		SnapshotCount: len(snapshots),
	}
	if len(snapshots) == 0 {
		return out, nil
	}

	var weightedTime float64
	var timeWeight int
	var kpiSums [5]float64
	for _, s := range snapshots {
		out.TotalOrders += s.TotalOrders
		out.TotalRevenue += s.TotalRevenue
		out.Delivery.OnTime += s.Delivery.OnTime
		out.Delivery.Delayed += s.Delivery.Delayed

		deliveries := s.Delivery.OnTime + s.Delivery.Delayed
		weightedTime += s.Delivery.AverageDeliveryTime * float64(deliveries)
		timeWeight += deliveries

		kpiSums[0] += float64(s.KPIs.SupplierPerformance)
		kpiSums[1] += float64(s.KPIs.DeliveryEfficiency)
		kpiSums[2] += float64(s.KPIs.InventoryHealth)
		kpiSums[3] += float64(s.KPIs.CostOptimization)
		kpiSums[4] += float64(s.KPIs.CustomerSatisfaction)
	}

	total := out.Delivery.OnTime + out.Delivery.Delayed
	if total > 0 {
		out.Delivery.SuccessRate = int(math.Round(float64(out.Delivery.OnTime) / float64(total) * 100))
	}
	if timeWeight > 0 {
		out.Delivery.AverageDeliveryTime = math.Round(weightedTime/float64(timeWeight)*10) / 10
	}

	n := float64(len(snapshots))
	out.KPIs = domain.KPISet{
		SupplierPerformance:  int(math.Round(kpiSums[0] / n)),
		DeliveryEfficiency:   int(math.Round(kpiSums[1] / n)),
		InventoryHealth:      int(math.Round(kpiSums[2] / n)),
		CostOptimization:     int(math.Round(kpiSums[3] / n)),
		CustomerSatisfaction: int(math.Round(kpiSums[4] / n)),
	}

	return out, nil
}

// DashboardKPIs returns the latest daily snapshot's KPI set, zero-valued when
// no snapshot exists yet. The result is cached.
func (a *Aggregator) DashboardKPIs(ctx context.Context) (*domain.KPISet, error) {
	if cached, ok, err := a.kpiCache.Get(ctx); err == nil && ok {
		return cached, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("kpi cache read failed")
	}

	latest, err := a.snapshots.Latest(ctx, domain.PeriodDaily, 1)
	if err != nil {
		return nil, err
	}

	kpis := &domain.KPISet{}
	if len(latest) > 0 {
		*kpis = latest[0].KPIs
	}

	if err := a.kpiCache.Set(ctx, kpis); err != nil {
		log.Warn().Err(err).Msg("kpi cache write failed")
	}

	return kpis, nil
}

// DailyDeliveryPoint is one day in the delivery time series.
type DailyDeliveryPoint struct {
	Date     time.Time              `json:"date"`
	Delivery domain.DeliveryMetrics `json:"delivery"`
}

// DeliveryDaily returns the per-day delivery series for [start, end). Days
// are served from stored daily snapshots when available; otherwise the series
// is derived directly from the raw orders.
func (a *Aggregator) DeliveryDaily(ctx context.Context, start, end time.Time) ([]DailyDeliveryPoint, error) {
	snapshots, err := a.snapshots.ListRange(ctx, domain.PeriodDaily, start, end)
	if err != nil {
		return nil, err
	}

	if len(snapshots) > 0 {
		points := make([]DailyDeliveryPoint, 0, len(snapshots))
		for _, s := range snapshots {
			points = append(points, DailyDeliveryPoint{Date: s.Date, Delivery: s.Delivery})
		}
		return points, nil
	}

	orders, err := a.orders.ListInWindow(ctx, start, end)
	if err != nil {
		return nil, err
	}

	byDay := map[time.Time][]domain.Order{}
	for _, o := range orders {
		day, _ := windowBounds(domain.PeriodDaily, o.OrderDate)
		byDay[day] = append(byDay[day], o)
	}

	var points []DailyDeliveryPoint
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		dayOrders, ok := byDay[day]
		if !ok {
			continue
		}
		points = append(points, DailyDeliveryPoint{
			Date:     day,
			Delivery: calc.Delivery(calc.Window{Orders: dayOrders}),
		})
	}

	return points, nil
}
