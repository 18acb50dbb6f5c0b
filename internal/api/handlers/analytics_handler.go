package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/supplypulse/backend/internal/analytics"
	"github.com/supplypulse/backend/internal/domain"
)

type AnalyticsHandler struct {
	aggregator *analytics.Aggregator
}

func NewAnalyticsHandler(aggregator *analytics.Aggregator) *AnalyticsHandler {
	return &AnalyticsHandler{aggregator: aggregator}
}

type generateRequest struct {
	Period string `json:"period"`
	Date   string `json:"date"`
}

// Generate computes and stores the snapshot for a period window.
func (h *AnalyticsHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	period := domain.PeriodDaily
	if req.Period != "" {
		parsed, ok := domain.ParsePeriod(req.Period)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown period"})
			return
		}
		period = parsed
	}

	refDate := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
		refDate = parsed
	}

	snapshot, err := h.aggregator.GenerateSnapshot(c.Request.Context(), period, refDate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// Aggregate rolls up stored snapshots over a date range.
func (h *AnalyticsHandler) Aggregate(c *gin.Context) {
	period, ok := domain.ParsePeriod(c.DefaultQuery("period", string(domain.PeriodDaily)))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown period"})
		return
	}

	start, end, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, aggErr := h.aggregator.GetAggregated(c.Request.Context(), period, start, end)
	if aggErr != nil {
		respondError(c, aggErr)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DashboardKPIs returns the latest KPI set.
func (h *AnalyticsHandler) DashboardKPIs(c *gin.Context) {
	kpis, err := h.aggregator.DashboardKPIs(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, kpis)
}

// Forecast recomputes and returns the demand forecast.
func (h *AnalyticsHandler) Forecast(c *gin.Context) {
	forecast, err := h.aggregator.RefreshForecast(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, forecast)
}

// DeliveryDaily returns the per-day delivery series for a date range.
func (h *AnalyticsHandler) DeliveryDaily(c *gin.Context) {
	start, end, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	points, serErr := h.aggregator.DeliveryDaily(c.Request.Context(), start, end)
	if serErr != nil {
		respondError(c, serErr)
		return
	}

	c.JSON(http.StatusOK, points)
}

type compareRequest struct {
	SupplierIDs []string `json:"supplier_ids" binding:"required"`
	MetricIDs   []string `json:"metric_ids"`
}

// CompareSuppliers returns per-metric values for a set of suppliers.
func (h *AnalyticsHandler) CompareSuppliers(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.aggregator.CompareSuppliers(c.Request.Context(), req.SupplierIDs, req.MetricIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SupplierMetrics returns one supplier's live order statistics.
func (h *AnalyticsHandler) SupplierMetrics(c *gin.Context) {
	stats, err := h.aggregator.SupplierMetrics(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func parseDateRange(c *gin.Context) (time.Time, time.Time, error) {
	const layout = "2006-01-02"

	startRaw := strings.TrimSpace(c.Query("start"))
	endRaw := strings.TrimSpace(c.Query("end"))

	end := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -30)

	if startRaw != "" {
		parsed, err := time.Parse(layout, startRaw)
		if err != nil {
			return time.Time{}, time.Time{}, &domain.ValidationError{Field: "start", Reason: "expected YYYY-MM-DD"}
		}
		start = parsed
	}
	if endRaw != "" {
		parsed, err := time.Parse(layout, endRaw)
		if err != nil {
			return time.Time{}, time.Time{}, &domain.ValidationError{Field: "end", Reason: "expected YYYY-MM-DD"}
		}
		end = parsed.AddDate(0, 0, 1)
	}

	if !start.Before(end) {
		return time.Time{}, time.Time{}, &domain.ValidationError{Field: "start", Reason: "start must be before end"}
	}

	return start, end, nil
}
