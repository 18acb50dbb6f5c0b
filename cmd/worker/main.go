// The worker runs the internal ops server and the daily snapshot scheduler.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/supplypulse/backend/internal/analytics"
	"github.com/supplypulse/backend/internal/cache"
	"github.com/supplypulse/backend/internal/config"
	"github.com/supplypulse/backend/internal/domain"
	"github.com/supplypulse/backend/internal/repository/postgres"
	"github.com/supplypulse/backend/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	kpiCache, err := cache.NewDashboardKPICache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("KPI cache unavailable, continuing without caching")
		kpiCache = cache.NewNoopDashboardKPICache()
	}

	aggregator := analytics.NewAggregator(
		postgres.NewOrderRepository(db),
		postgres.NewProductRepository(db),
		postgres.NewSupplierRepository(db),
		postgres.NewSnapshotRepository(db),
		kpiCache,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go runScheduler(ctx, aggregator)

	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	r.HandleFunc("/internal/snapshots/generate", func(w http.ResponseWriter, r *http.Request) {
		period := domain.PeriodDaily
		if raw := r.URL.Query().Get("period"); raw != "" {
			parsed, ok := domain.ParsePeriod(raw)
			if !ok {
				http.Error(w, "unknown period", http.StatusBadRequest)
				return
			}
			period = parsed
		}

		refDate := time.Now().UTC()
		if raw := r.URL.Query().Get("date"); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			refDate = parsed
		}

		snapshot, err := aggregator.GenerateSnapshot(r.Context(), period, refDate)
		if err != nil {
			logger.Log.Error().Err(err).Msg("on-demand snapshot generation failed")
			http.Error(w, "snapshot generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(snapshot)
	}).Methods("POST")

	srv := &http.Server{
		Addr:    ":" + cfg.Server.OpsPort,
		Handler: r,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.OpsPort).Msg("Starting ops server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start ops server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down worker...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Ops server forced to shutdown")
	}
}

// runScheduler generates the previous day's snapshot and refreshes the
// forecast shortly after each midnight. The snapshot upsert is all-or-nothing,
// so cancellation mid-cycle never leaves partial writes.
func runScheduler(ctx context.Context, aggregator *analytics.Aggregator) {
	schedLog := logger.With("scheduler")

	for {
		next := nextMidnight(time.Now().UTC()).Add(5 * time.Minute)
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		yesterday := time.Now().UTC().AddDate(0, 0, -1)

		if _, err := aggregator.GenerateSnapshot(runCtx, domain.PeriodDaily, yesterday); err != nil {
			schedLog.Error().Err(err).Msg("scheduled snapshot generation failed")
		} else if _, err := aggregator.RefreshForecast(runCtx); err != nil {
			schedLog.Error().Err(err).Msg("scheduled forecast refresh failed")
		}

		cancel()
	}
}

func nextMidnight(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, 1)
}
