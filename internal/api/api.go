package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/supplypulse/backend/internal/analytics"
	"github.com/supplypulse/backend/internal/api/handlers"
	"github.com/supplypulse/backend/internal/api/middleware"
	"github.com/supplypulse/backend/internal/order"
	"github.com/supplypulse/backend/internal/storage"
)

type Services struct {
	Orders     *order.Service
	Aggregator *analytics.Aggregator
	Reports    storage.ObjectStorage
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", "X-User-Role"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")
	apiGroup.Use(middleware.RequireActor())

	if services != nil {
		if services.Orders != nil {
			orderHandler := handlers.NewOrderHandler(services.Orders, services.Reports)
			orderGroup := apiGroup.Group("/orders")
			{
				orderGroup.POST("", orderHandler.Place)
				orderGroup.GET("", orderHandler.List)
				orderGroup.GET("/unclaimed", orderHandler.Unclaimed)
				orderGroup.GET("/export", orderHandler.Export)
				orderGroup.GET("/:id", orderHandler.Get)
				orderGroup.PUT("/:id/status", orderHandler.Transition)
				orderGroup.POST("/:id/claim", orderHandler.Claim)
				orderGroup.PUT("/:id/assign", orderHandler.Assign)
				orderGroup.PUT("/:id/tracking", orderHandler.SetTracking)
			}
		}

		if services.Aggregator != nil {
			analyticsHandler := handlers.NewAnalyticsHandler(services.Aggregator)
			analyticsGroup := apiGroup.Group("/analytics")
			{
				analyticsGroup.POST("/generate", analyticsHandler.Generate)
				analyticsGroup.GET("/aggregate", analyticsHandler.Aggregate)
				analyticsGroup.GET("/kpis", analyticsHandler.DashboardKPIs)
				analyticsGroup.POST("/forecast", analyticsHandler.Forecast)
				analyticsGroup.GET("/delivery/daily", analyticsHandler.DeliveryDaily)
				analyticsGroup.POST("/suppliers/compare", analyticsHandler.CompareSuppliers)
				analyticsGroup.GET("/suppliers/:id", analyticsHandler.SupplierMetrics)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
