package calc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supplypulse/backend/internal/domain"
)

func intPtr(v int) *int { return &v }

func orderAt(id string, day int, items ...domain.OrderItem) domain.Order {
	return domain.Order{
		ID:        id,
		OrderDate: time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC),
		Items:     items,
		Region:    "north",
	}
}

func testWindow() Window {
	delivered1 := orderAt("o1", 1, domain.OrderItem{
		ProductID: "p1", NameSnapshot: "Widget", Quantity: 2, UnitPrice: 50, TotalPrice: 100,
	})
	delivered1.Status = domain.StatusDelivered
	delivered1.TotalOrderValue = 100
	delivered1.ShippingTime = intPtr(3)
	delivered1.DeliveryDelay = intPtr(0)

	delivered2 := orderAt("o2", 2,
		domain.OrderItem{ProductID: "p1", NameSnapshot: "Widget", Quantity: 1, UnitPrice: 50, TotalPrice: 50},
		domain.OrderItem{ProductID: "p2", NameSnapshot: "Gadget", Quantity: 4, UnitPrice: 25, TotalPrice: 100},
	)
	delivered2.Status = domain.StatusDelivered
	delivered2.TotalOrderValue = 150
	delivered2.Region = "south"
	delivered2.ShippingTime = intPtr(6)
	delivered2.DeliveryDelay = intPtr(2)

	pending := orderAt("o3", 3, domain.OrderItem{
		ProductID: "p2", NameSnapshot: "Gadget", Quantity: 1, UnitPrice: 25, TotalPrice: 25,
	})
	pending.Status = domain.StatusProcessing
	pending.TotalOrderValue = 25

	return Window{
		Orders: []domain.Order{delivered1, delivered2, pending},
		Products: map[string]*domain.Product{
			"p1": {ID: "p1", Name: "Widget", Category: "parts", Price: 50, Cost: 30,
				SupplierID: "s1", StockQuantity: 20, ReorderLevel: 5, IsActive: true},
			"p2": {ID: "p2", Name: "Gadget", Category: "tools", Price: 25, Cost: 10,
				SupplierID: "s2", StockQuantity: 3, ReorderLevel: 5, IsActive: true},
		},
		Suppliers: map[string]*domain.Supplier{
			"s1": {ID: "s1", Name: "Acme", Rating: 4.5, PriceCompetitiveness: 80},
			"s2": {ID: "s2", Name: "Globex", Rating: 3.0, PriceCompetitiveness: 60},
		},
	}
}

func TestDeliveryMetrics(t *testing.T) {
	m := Delivery(testWindow())

	assert.Equal(t, 1, m.OnTime)
	assert.Equal(t, 1, m.Delayed)
	assert.Equal(t, 50, m.SuccessRate)
	assert.Equal(t, 4.5, m.AverageDeliveryTime)
}

func TestDeliveryEmptyWindowYieldsZeros(t *testing.T) {
	m := Delivery(Window{})

	assert.Equal(t, 0, m.OnTime)
	assert.Equal(t, 0, m.Delayed)
	assert.Equal(t, 0, m.SuccessRate)
	assert.Equal(t, 0.0, m.AverageDeliveryTime)
}

func TestSupplierMetricsAttribution(t *testing.T) {
	metrics := Suppliers(testWindow())
	require.Len(t, metrics, 2)

	byID := map[string]domain.SupplierMetrics{}
	for _, m := range metrics {
		byID[m.SupplierID] = m
	}

	acme := byID["s1"]
	assert.Equal(t, "Acme", acme.SupplierName)
	assert.Equal(t, 3, acme.ItemsSold)
	assert.Equal(t, 150.0, acme.Revenue)
	assert.Equal(t, 90.0, acme.CostOfGoodsSold)
	assert.Equal(t, 60.0, acme.Profit)
	assert.Equal(t, 40, acme.ProfitMargin)
	// On-time attribution is once per order: o1 on time, o2 late.
	assert.Equal(t, 2, acme.OrderCount)
	assert.Equal(t, 1, acme.OnTimeCount)
	assert.Equal(t, 1, acme.LateCount)
	assert.Equal(t, 50, acme.OnTimeDeliveryRate)
	assert.Equal(t, 90.0, acme.QualityScore)
	assert.Equal(t, 80.0, acme.CostEfficiencyScore)
	require.Len(t, acme.TopProducts, 1)
	assert.Equal(t, 150.0, acme.TopProducts[0].Revenue)

	globex := byID["s2"]
	assert.Equal(t, 5, globex.ItemsSold)
	assert.Equal(t, 125.0, globex.Revenue)
	assert.Equal(t, 2, globex.OrderCount)
}

func TestPercentageFieldsStayBounded(t *testing.T) {
	// A supplier selling below cost must not produce a margin outside [-..] bounds
	// for rate fields; rates with no data are 0.
	w := Window{
		Orders: []domain.Order{orderAt("o1", 1, domain.OrderItem{
			ProductID: "p1", Quantity: 1, UnitPrice: 10, TotalPrice: 10,
		})},
		Products: map[string]*domain.Product{
			"p1": {ID: "p1", Category: "parts", Cost: 30, SupplierID: "s1", IsActive: true},
		},
		Suppliers: map[string]*domain.Supplier{
			"s1": {ID: "s1", Name: "Acme", Rating: 9, PriceCompetitiveness: 150},
		},
	}

	metrics := Suppliers(w)
	require.Len(t, metrics, 1)
	assert.Equal(t, 0, metrics[0].OnTimeDeliveryRate)
	assert.LessOrEqual(t, metrics[0].QualityScore, 100.0)
	assert.LessOrEqual(t, metrics[0].CostEfficiencyScore, 100.0)
}

func TestCategoryAndInventoryMetrics(t *testing.T) {
	m := Products(testWindow())

	require.Len(t, m.ByCategory, 2)
	assert.Equal(t, "parts", m.ByCategory[0].Category)
	assert.Equal(t, 3, m.ByCategory[0].QuantitySold)
	assert.Equal(t, 150.0, m.ByCategory[0].Revenue)
	assert.Equal(t, 40, m.ByCategory[0].ProfitMargin)

	inv := m.Inventory
	assert.Equal(t, 2, inv.ActiveProductCount)
	assert.Equal(t, 23, inv.TotalStockUnits)
	assert.Equal(t, 630.0, inv.StockValueAtCost)
	assert.Equal(t, 1075.0, inv.StockValueAtPrice)
	require.Equal(t, 1, inv.BelowReorderCount)
	assert.Equal(t, "Gadget", inv.BelowReorderItems[0].Name)
	assert.Equal(t, 0, inv.LowStockCount)
}

func TestInventoryLowStockBand(t *testing.T) {
	w := Window{Products: map[string]*domain.Product{
		// Above reorder but under the absolute low-stock band.
		"p1": {ID: "p1", StockQuantity: 7, ReorderLevel: 3, IsActive: true},
		// Healthy.
		"p2": {ID: "p2", StockQuantity: 50, ReorderLevel: 10, IsActive: true},
		// Inactive products are excluded entirely.
		"p3": {ID: "p3", StockQuantity: 0, ReorderLevel: 5, IsActive: false},
	}}

	inv := Products(w).Inventory
	assert.Equal(t, 2, inv.ActiveProductCount)
	assert.Equal(t, 0, inv.BelowReorderCount)
	assert.Equal(t, 1, inv.LowStockCount)
}

func TestRegionMetrics(t *testing.T) {
	metrics := Regions(testWindow())
	require.Len(t, metrics, 2)

	byRegion := map[string]domain.RegionMetrics{}
	for _, m := range metrics {
		byRegion[m.Region] = m
	}

	north := byRegion["north"]
	assert.Equal(t, 2, north.OrderCount)
	assert.Equal(t, 125.0, north.Revenue)
	assert.Equal(t, 3.0, north.AverageShippingTime)

	south := byRegion["south"]
	assert.Equal(t, 1, south.OrderCount)
	assert.Equal(t, 6.0, south.AverageShippingTime)
}

func TestKPIComposerBounds(t *testing.T) {
	w := testWindow()
	kpis := KPIs(Delivery(w), Suppliers(w), Products(w))

	for _, v := range []int{
		kpis.SupplierPerformance, kpis.DeliveryEfficiency, kpis.InventoryHealth,
		kpis.CostOptimization, kpis.CustomerSatisfaction,
	} {
		assert.GreaterOrEqual(t, v, 0)
		assert.LessOrEqual(t, v, 100)
	}

	// No data source exists for these two; they stay neutral.
	assert.Equal(t, 0, kpis.CostOptimization)
	assert.Equal(t, 0, kpis.CustomerSatisfaction)
}

func TestDeliveryEfficiencyIndex(t *testing.T) {
	// 100% success at one day average scores the maximum.
	perfect := domain.DeliveryMetrics{OnTime: 10, Delayed: 0, AverageDeliveryTime: 1, SuccessRate: 100}
	assert.Equal(t, 100, deliveryEfficiencyIndex(perfect))

	// Degrades 15 normalized points per extra day.
	slower := domain.DeliveryMetrics{OnTime: 10, Delayed: 0, AverageDeliveryTime: 3, SuccessRate: 100}
	assert.Equal(t, 91, deliveryEfficiencyIndex(slower))

	// Same-day deliveries are the fastest case, not missing data.
	sameDay := domain.DeliveryMetrics{OnTime: 10, Delayed: 0, AverageDeliveryTime: 0, SuccessRate: 100}
	assert.Equal(t, 100, deliveryEfficiencyIndex(sameDay))

	assert.Equal(t, 0, deliveryEfficiencyIndex(domain.DeliveryMetrics{}))
}

func TestInventoryHealthIndex(t *testing.T) {
	assert.Equal(t, 70, inventoryHealthIndex(domain.InventorySummary{}))

	healthy := domain.InventorySummary{ActiveProductCount: 10}
	assert.Equal(t, 100, inventoryHealthIndex(healthy))

	troubled := domain.InventorySummary{ActiveProductCount: 10, BelowReorderCount: 5, LowStockCount: 5}
	assert.Equal(t, 50, inventoryHealthIndex(troubled))

	allBad := domain.InventorySummary{ActiveProductCount: 2, BelowReorderCount: 2, LowStockCount: 2}
	assert.Equal(t, 0, inventoryHealthIndex(allBad))
}

func TestSupplierPerformanceIndexWeighting(t *testing.T) {
	suppliers := []domain.SupplierMetrics{
		{OrderCount: 3, OnTimeDeliveryRate: 100, ProfitMargin: 100, QualityScore: 100, CostEfficiencyScore: 100},
		{OrderCount: 0, OnTimeDeliveryRate: 0, ProfitMargin: 0, QualityScore: 0, CostEfficiencyScore: 0},
	}

	// Weighted 3:1 toward the perfect supplier.
	assert.Equal(t, 75, supplierPerformanceIndex(suppliers))
	assert.Equal(t, 0, supplierPerformanceIndex(nil))
}
