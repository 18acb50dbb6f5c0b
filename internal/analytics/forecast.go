package analytics

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/supplypulse/backend/internal/domain"
)

const (
	forecastHistoryLimit = 30
	trendBand            = 0.05
)

// ForecastNextPeriod projects the next period from historical snapshots,
// ordered oldest first. The mean period-over-period growth of order counts is
// applied to the most recent period; comparisons against a zero-order prior
// are skipped. Fewer than two snapshots yields a neutral zero forecast.
func ForecastNextPeriod(history []domain.Snapshot) domain.Forecasts {
	if len(history) < 2 {
		return domain.Forecasts{DemandTrend: "stable"}
	}

	var growthSum float64
	var samples int
	for i := 1; i < len(history); i++ {
		prior := history[i-1].TotalOrders
		if prior == 0 {
			continue
		}
		growthSum += float64(history[i].TotalOrders-prior) / float64(prior)
		samples++
	}

	var meanGrowth float64
	if samples > 0 {
		meanGrowth = growthSum / float64(samples)
	}

	latest := history[len(history)-1]
	nextOrders := math.Round(float64(latest.TotalOrders) * (1 + meanGrowth))
	if nextOrders < 0 {
		nextOrders = 0
	}
	nextRevenue := latest.TotalRevenue * (1 + meanGrowth)
	if nextRevenue < 0 {
		nextRevenue = 0
	}

	trend := "stable"
	if meanGrowth > trendBand {
		trend = "rising"
	} else if meanGrowth < -trendBand {
		trend = "falling"
	}

	return domain.Forecasts{
		NextPeriodOrders:  int(nextOrders),
		NextPeriodRevenue: nextRevenue,
		DemandTrend:       trend,
	}
}

// RefreshForecast recomputes the forecast from the recent daily history and
// writes it into the latest daily snapshot.
func (a *Aggregator) RefreshForecast(ctx context.Context) (*domain.Forecasts, error) {
	recent, err := a.snapshots.Latest(ctx, domain.PeriodDaily, forecastHistoryLimit)
	if err != nil {
		return nil, err
	}
	if len(recent) == 0 {
		return nil, &domain.NotFoundError{Entity: "snapshot", ID: "latest daily"}
	}

	// Latest returns newest first; the forecaster wants chronological order.
	history := make([]domain.Snapshot, len(recent))
	for i, s := range recent {
		history[len(recent)-1-i] = s
	}

	forecast := ForecastNextPeriod(history)

	latest := history[len(history)-1]
	latest.Forecasts = forecast
	if err := a.snapshots.Upsert(ctx, &latest); err != nil {
		return nil, fmt.Errorf("failed to store forecast: %w", err)
	}

	log.Info().Str("trend", forecast.DemandTrend).
		Int("next_period_orders", forecast.NextPeriodOrders).Msg("forecast refreshed")

	return &forecast, nil
}
