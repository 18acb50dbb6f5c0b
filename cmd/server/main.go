package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/supplypulse/backend/internal/analytics"
	"github.com/supplypulse/backend/internal/api"
	"github.com/supplypulse/backend/internal/cache"
	"github.com/supplypulse/backend/internal/config"
	"github.com/supplypulse/backend/internal/notify"
	"github.com/supplypulse/backend/internal/order"
	"github.com/supplypulse/backend/internal/repository/postgres"
	"github.com/supplypulse/backend/internal/stock"
	"github.com/supplypulse/backend/internal/storage"
	"github.com/supplypulse/backend/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	orderRepo := postgres.NewOrderRepository(db)
	productRepo := postgres.NewProductRepository(db)
	supplierRepo := postgres.NewSupplierRepository(db)
	snapshotRepo := postgres.NewSnapshotRepository(db)

	notifier, err := notify.NewNotifier(cfg.Notify)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Notification publisher unavailable, falling back to log notifier")
		notifier = notify.NewLogNotifier()
	}

	kpiCache, err := cache.NewDashboardKPICache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("KPI cache unavailable, continuing without caching")
		kpiCache = cache.NewNoopDashboardKPICache()
	}

	ledger := stock.NewLedger(productRepo, notifier)
	orderService := order.NewService(orderRepo, productRepo, ledger, notifier, order.DefaultPolicy())
	aggregator := analytics.NewAggregator(orderRepo, productRepo, supplierRepo, snapshotRepo, kpiCache)

	var reports storage.ObjectStorage
	if cfg.Export.Enabled {
		client, err := storage.NewMinioClient(cfg.Export)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Report storage unavailable, exports are download-only")
		} else {
			reports = client
		}
	}

	router := api.NewRouter(&api.Services{
		Orders:     orderService,
		Aggregator: aggregator,
		Reports:    reports,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
