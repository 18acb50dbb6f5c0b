package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supplypulse/backend/internal/analytics"
	"github.com/supplypulse/backend/internal/cache"
	"github.com/supplypulse/backend/internal/domain"
	"github.com/supplypulse/backend/internal/notify"
	"github.com/supplypulse/backend/internal/order"
	"github.com/supplypulse/backend/internal/repository/memory"
	"github.com/supplypulse/backend/internal/stock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) (*gin.Engine, *memory.Store) {
	t.Helper()

	store := memory.New()
	store.SeedProduct(domain.Product{
		ID: "p1", SKU: "SKU-1", Name: "Widget", Category: "parts",
		Price: 50, Cost: 30, SupplierID: "s1",
		StockQuantity: 10, ReorderLevel: 2, IsActive: true,
	})
	store.SeedSupplier(domain.Supplier{ID: "s1", Name: "Acme", Rating: 4})

	notifier := notify.NewLogNotifier()
	ledger := stock.NewLedger(store.Products(), notifier)
	orders := order.NewService(store.Orders(), store.Products(), ledger, notifier, order.DefaultPolicy())
	aggregator := analytics.NewAggregator(store.Orders(), store.Products(), store.Suppliers(),
		store.Snapshots(), cache.NewNoopDashboardKPICache())

	return NewRouter(&Services{Orders: orders, Aggregator: aggregator}, nil), store
}

func doJSON(router *gin.Engine, method, path, userID, role string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
		req.Header.Set("X-User-Role", role)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthIsPublic(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/health", "", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMissingIdentityIsRejected(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/api/v1/orders", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(router, http.MethodGet, "/api/v1/orders", "u1", "superuser", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPlaceOrderEndToEnd(t *testing.T) {
	router, _ := newTestRouter(t)

	body := order.PlaceOrderRequest{
		Items:  []order.PlaceOrderItem{{ProductID: "p1", Quantity: 2}},
		Region: "north",
	}
	rec := doJSON(router, http.MethodPost, "/api/v1/orders", "c1", order.RoleClient, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var placed domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &placed))
	assert.Equal(t, domain.StatusCreated, placed.Status)
	assert.Equal(t, "c1", placed.ClientID)
	require.Len(t, placed.Items, 1)
	assert.Equal(t, 50.0, placed.Items[0].UnitPrice)

	rec = doJSON(router, http.MethodGet, "/api/v1/orders/"+placed.ID, "c1", order.RoleClient, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Another client cannot see it.
	rec = doJSON(router, http.MethodGet, "/api/v1/orders/"+placed.ID, "c2", order.RoleClient, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	router, _ := newTestRouter(t)

	body := order.PlaceOrderRequest{
		Items: []order.PlaceOrderItem{{ProductID: "p1", Quantity: 11}},
	}
	rec := doJSON(router, http.MethodPost, "/api/v1/orders", "c1", order.RoleClient, body)
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "p1", resp["product_id"])
	assert.Equal(t, 11.0, resp["requested"])
	assert.Equal(t, 10.0, resp["available"])
}

func TestTransitionErrorMapping(t *testing.T) {
	router, _ := newTestRouter(t)

	body := order.PlaceOrderRequest{
		Items: []order.PlaceOrderItem{{ProductID: "p1", Quantity: 1}},
	}
	rec := doJSON(router, http.MethodPost, "/api/v1/orders", "c1", order.RoleClient, body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var placed domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &placed))

	// Skipping states is forbidden even for admins.
	rec = doJSON(router, http.MethodPut, "/api/v1/orders/"+placed.ID+"/status",
		"a1", order.RoleAdmin, gin.H{"status": "shipped"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(router, http.MethodPut, "/api/v1/orders/ghost/status",
		"a1", order.RoleAdmin, gin.H{"status": "confirmed"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(router, http.MethodPut, "/api/v1/orders/"+placed.ID+"/status",
		"a1", order.RoleAdmin, gin.H{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClaimRequiresSupplierRole(t *testing.T) {
	router, _ := newTestRouter(t)

	body := order.PlaceOrderRequest{
		Items: []order.PlaceOrderItem{{ProductID: "p1", Quantity: 1}},
	}
	rec := doJSON(router, http.MethodPost, "/api/v1/orders", "c1", order.RoleClient, body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var placed domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &placed))

	rec = doJSON(router, http.MethodPost, "/api/v1/orders/"+placed.ID+"/claim",
		"e1", order.RoleEmployee, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(router, http.MethodPost, "/api/v1/orders/"+placed.ID+"/claim",
		"s1", order.RoleSupplier, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var claimed domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &claimed))
	assert.Equal(t, domain.StatusConfirmed, claimed.Status)
	require.NotNil(t, claimed.SupplierID)
	assert.Equal(t, "s1", *claimed.SupplierID)
}

func TestDashboardKPIsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/api/v1/analytics/kpis", "m1", order.RoleManager, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var kpis domain.KPISet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &kpis))
	assert.Equal(t, domain.KPISet{}, kpis)
}

func TestOrderExportDownload(t *testing.T) {
	router, _ := newTestRouter(t)

	body := order.PlaceOrderRequest{
		Items: []order.PlaceOrderItem{{ProductID: "p1", Quantity: 1}},
	}
	rec := doJSON(router, http.MethodPost, "/api/v1/orders", "c1", order.RoleClient, body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(router, http.MethodGet, "/api/v1/orders/export", "c1", order.RoleClient, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Body.String(), "order_id")
}
