package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/supplypulse/backend/internal/api/middleware"
	"github.com/supplypulse/backend/internal/domain"
	"github.com/supplypulse/backend/internal/export"
	"github.com/supplypulse/backend/internal/order"
	"github.com/supplypulse/backend/internal/storage"
)

type OrderHandler struct {
	orders  *order.Service
	reports storage.ObjectStorage
}

// NewOrderHandler wires the order endpoints. reports may be nil when no
// object storage is configured; exports are then download-only.
func NewOrderHandler(orders *order.Service, reports storage.ObjectStorage) *OrderHandler {
	return &OrderHandler{orders: orders, reports: reports}
}

// Place creates a new order for the calling client.
func (h *OrderHandler) Place(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	var req order.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	placed, err := h.orders.Place(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, placed)
}

// Get returns a single order, subject to role access.
func (h *OrderHandler) Get(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	found, err := h.orders.Get(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, found)
}

// List returns orders visible to the caller.
func (h *OrderHandler) List(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	filter := domain.OrderFilter{
		Region: c.Query("region"),
		Limit:  parsePositiveIntWithDefault(c.Query("limit"), 50),
		Offset: parseNonNegativeInt(c.Query("offset")),
	}
	if raw := c.Query("status"); raw != "" {
		status, ok := domain.ParseStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
			return
		}
		filter.Status = status
	}

	orders, err := h.orders.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

// Unclaimed returns orders not yet claimed by any supplier.
func (h *OrderHandler) Unclaimed(c *gin.Context) {
	orders, err := h.orders.Unclaimed(c.Request.Context(),
		parsePositiveIntWithDefault(c.Query("limit"), 50),
		parseNonNegativeInt(c.Query("offset")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

type transitionRequest struct {
	Status   string `json:"status" binding:"required"`
	Comment  string `json:"comment"`
	Location string `json:"location"`
}

// Transition moves an order to a new status.
func (h *OrderHandler) Transition(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	status, ok := domain.ParseStatus(req.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	updated, err := h.orders.Transition(c.Request.Context(), c.Param("id"), status, actor, req.Comment, req.Location)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Claim attaches the calling supplier to an unassigned order.
func (h *OrderHandler) Claim(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if actor.Role != order.RoleSupplier {
		c.JSON(http.StatusForbidden, gin.H{"error": "only suppliers may claim orders"})
		return
	}

	claimed, err := h.orders.Claim(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, claimed)
}

type assignRequest struct {
	EmployeeID string `json:"employee_id" binding:"required"`
}

// Assign attaches an employee to an order.
func (h *OrderHandler) Assign(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := h.orders.AssignEmployee(c.Request.Context(), c.Param("id"), req.EmployeeID, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

type trackingRequest struct {
	TrackingNumber string `json:"tracking_number" binding:"required"`
}

// SetTracking records the shipment tracking number.
func (h *OrderHandler) SetTracking(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	var req trackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := h.orders.SetTracking(c.Request.Context(), c.Param("id"), req.TrackingNumber, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Export streams the caller's order list as CSV and, when object storage is
// configured, archives a copy.
func (h *OrderHandler) Export(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	orders, err := h.orders.List(c.Request.Context(), actor, domain.OrderFilter{Limit: 200})
	if err != nil {
		respondError(c, err)
		return
	}

	data, err := export.OrdersCSV(orders)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := "orders-" + time.Now().UTC().Format("2006-01-02") + ".csv"
	if h.reports != nil {
		key := "exports/" + filename
		if err := h.reports.UploadObject(c.Request.Context(), key, "text/csv", data); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to archive export")
		}
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", data)
}
