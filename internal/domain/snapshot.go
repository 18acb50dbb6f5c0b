package domain

import "time"

// Period is a snapshot granularity.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// ParsePeriod validates a period string.
func ParsePeriod(s string) (Period, bool) {
	switch Period(s) {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return Period(s), true
	}

	return "", false
}

// DeliveryMetrics aggregates delivery performance over a window.
type DeliveryMetrics struct {
	OnTime              int     `json:"on_time" db:"on_time"`
	Delayed             int     `json:"delayed" db:"delayed"`
	AverageDeliveryTime float64 `json:"average_delivery_time" db:"average_delivery_time"`
	SuccessRate         int     `json:"success_rate" db:"success_rate"`
}

// TopProduct is one revenue-ranked product entry.
type TopProduct struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

// SupplierMetrics is the per-supplier scorecard for a window.
type SupplierMetrics struct {
	SupplierID          string       `json:"supplier_id"`
	SupplierName        string       `json:"supplier_name"`
	OrderCount          int          `json:"order_count"`
	ItemsSold           int          `json:"items_sold"`
	Revenue             float64      `json:"revenue"`
	CostOfGoodsSold     float64      `json:"cost_of_goods_sold"`
	Profit              float64      `json:"profit"`
	ProfitMargin        int          `json:"profit_margin"`
	OnTimeCount         int          `json:"on_time_count"`
	LateCount           int          `json:"late_count"`
	OnTimeDeliveryRate  int          `json:"on_time_delivery_rate"`
	QualityScore        float64      `json:"quality_score"`
	CostEfficiencyScore float64      `json:"cost_efficiency_score"`
	TopProducts         []TopProduct `json:"top_products"`
}

// CategoryMetrics is the per-category sales rollup for a window.
type CategoryMetrics struct {
	Category     string       `json:"category"`
	QuantitySold int          `json:"quantity_sold"`
	Revenue      float64      `json:"revenue"`
	Cost         float64      `json:"cost"`
	Profit       float64      `json:"profit"`
	ProfitMargin int          `json:"profit_margin"`
	TopProducts  []TopProduct `json:"top_products"`
}

// LowStockProduct identifies a product below its reorder level.
type LowStockProduct struct {
	ProductID     string `json:"product_id"`
	Name          string `json:"name"`
	SKU           string `json:"sku"`
	StockQuantity int    `json:"stock_quantity"`
	ReorderLevel  int    `json:"reorder_level"`
}

// InventorySummary covers all active products, sold in the window or not.
type InventorySummary struct {
	TotalStockUnits    int               `json:"total_stock_units"`
	StockValueAtCost   float64           `json:"stock_value_at_cost"`
	StockValueAtPrice  float64           `json:"stock_value_at_price"`
	BelowReorderCount  int               `json:"below_reorder_count"`
	BelowReorderItems  []LowStockProduct `json:"below_reorder_items"`
	LowStockCount      int               `json:"low_stock_count"`
	ActiveProductCount int               `json:"active_product_count"`
}

// ProductMetrics groups the category rollups with the inventory summary.
type ProductMetrics struct {
	ByCategory []CategoryMetrics `json:"by_category"`
	Inventory  InventorySummary  `json:"inventory"`
}

// RegionMetrics is the per-region order rollup for a window.
type RegionMetrics struct {
	Region              string  `json:"region"`
	OrderCount          int     `json:"order_count"`
	Revenue             float64 `json:"revenue"`
	AverageShippingTime float64 `json:"average_shipping_time"`
}

// Forecasts is the projected next-period demand.
type Forecasts struct {
	NextPeriodOrders  int     `json:"next_period_orders"`
	NextPeriodRevenue float64 `json:"next_period_revenue"`
	DemandTrend       string  `json:"demand_trend"`
}

// KPISet holds the five bounded composite indices.
type KPISet struct {
	SupplierPerformance  int `json:"supplier_performance" db:"kpi_supplier_performance"`
	DeliveryEfficiency   int `json:"delivery_efficiency" db:"kpi_delivery_efficiency"`
	InventoryHealth      int `json:"inventory_health" db:"kpi_inventory_health"`
	CostOptimization     int `json:"cost_optimization" db:"kpi_cost_optimization"`
	CustomerSatisfaction int `json:"customer_satisfaction" db:"kpi_customer_satisfaction"`
}

// Snapshot is one analytics record, uniquely keyed by (Period, Date). The key
// never changes once written; regeneration replaces the metric fields in place.
type Snapshot struct {
	ID            string            `json:"id" db:"id"`
	Period        Period            `json:"period" db:"period"`
	Date          time.Time         `json:"date" db:"period_start"`
	TotalOrders   int               `json:"total_orders" db:"total_orders"`
	TotalRevenue  float64           `json:"total_revenue" db:"total_revenue"`
	SupplierCount int               `json:"supplier_count" db:"supplier_count"`
	Delivery      DeliveryMetrics   `json:"delivery"`
	Suppliers     []SupplierMetrics `json:"suppliers"`
	Products      ProductMetrics    `json:"products"`
	Regions       []RegionMetrics   `json:"regions"`
	Forecasts     Forecasts         `json:"forecasts"`
	KPIs          KPISet            `json:"kpis"`
	GeneratedAt   time.Time         `json:"generated_at" db:"generated_at"`
	UpdatedAt     time.Time         `json:"updated_at" db:"updated_at"`
}
