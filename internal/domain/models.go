package domain

import "time"

// LowStockThreshold is the absolute stock band under which a product counts as
// low-stock even when it is still above its reorder level.
const LowStockThreshold = 10

// Product represents a sellable item owned by a supplier.
type Product struct {
	ID               string    `json:"id" db:"id"`
	SKU              string    `json:"sku" db:"sku"`
	Name             string    `json:"name" db:"name"`
	Category         string    `json:"category" db:"category"`
	Price            float64   `json:"price" db:"price"`
	Cost             float64   `json:"cost" db:"cost"`
	SupplierID       string    `json:"supplier_id" db:"supplier_id"`
	StockQuantity    int       `json:"stock_quantity" db:"stock_quantity"`
	ReorderLevel     int       `json:"reorder_level" db:"reorder_level"`
	TargetStockLevel int       `json:"target_stock_level" db:"target_stock_level"`
	IsActive         bool      `json:"is_active" db:"is_active"`
	LastStockUpdate  time.Time `json:"last_stock_update" db:"last_stock_update"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// BelowReorder reports whether the product's stock has fallen below its
// reorder level.
func (p *Product) BelowReorder() bool {
	return p.StockQuantity < p.ReorderLevel
}

// OrderItem is one product/quantity line within an order. Name, SKU and unit
// price are snapshotted from the product at placement time.
type OrderItem struct {
	ProductID    string  `json:"product_id" db:"product_id"`
	NameSnapshot string  `json:"name" db:"name_snapshot"`
	SKUSnapshot  string  `json:"sku" db:"sku_snapshot"`
	Quantity     int     `json:"quantity" db:"quantity"`
	UnitPrice    float64 `json:"unit_price" db:"unit_price"`
	TotalPrice   float64 `json:"total_price" db:"total_price"`
}

// StatusChange is one append-only entry in an order's status history.
type StatusChange struct {
	Status    OrderStatus `json:"status" db:"status"`
	Timestamp time.Time   `json:"timestamp" db:"timestamp"`
	Actor     string      `json:"actor" db:"actor"`
	Comment   string      `json:"comment,omitempty" db:"comment"`
	Location  string      `json:"location,omitempty" db:"location"`
}

// Order represents a client order through its full lifecycle.
type Order struct {
	ID                    string         `json:"id" db:"id"`
	ClientID              string         `json:"client_id" db:"client_id"`
	SupplierID            *string        `json:"supplier_id" db:"supplier_id"`
	EmployeeID            *string        `json:"employee_id" db:"employee_id"`
	Items                 []OrderItem    `json:"items" db:"-"`
	OrderDate             time.Time      `json:"order_date" db:"order_date"`
	EstimatedDeliveryDate *time.Time     `json:"estimated_delivery_date" db:"estimated_delivery_date"`
	ActualDeliveryDate    *time.Time     `json:"actual_delivery_date" db:"actual_delivery_date"`
	Status                OrderStatus    `json:"status" db:"status"`
	StatusHistory         []StatusChange `json:"status_history" db:"-"`
	TotalOrderValue       float64        `json:"total_order_value" db:"total_order_value"`
	PaymentStatus         string         `json:"payment_status" db:"payment_status"`
	PaymentMethod         string         `json:"payment_method" db:"payment_method"`
	ShippingMethod        string         `json:"shipping_method" db:"shipping_method"`
	TrackingNumber        string         `json:"tracking_number" db:"tracking_number"`
	ShippingCost          float64        `json:"shipping_cost" db:"shipping_cost"`
	ShippingTime          *int           `json:"shipping_time" db:"shipping_time"`
	DeliveryDelay         *int           `json:"delivery_delay" db:"delivery_delay"`
	Region                string         `json:"region" db:"region"`
	Priority              string         `json:"priority" db:"priority"`
	Notes                 string         `json:"notes,omitempty" db:"notes"`
	StockReverted         bool           `json:"stock_reverted" db:"stock_reverted"`
	CreatedAt             time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at" db:"updated_at"`
}

// RecomputeDeliveryKPIs derives shipping time and delivery delay whenever the
// actual delivery date is known. Shipping time is whole days between order and
// actual delivery; delivery delay is whole days actual exceeds estimated,
// floored at zero. Both stay nil until the dates exist.
func (o *Order) RecomputeDeliveryKPIs() {
	if o.ActualDeliveryDate == nil {
		return
	}

	shipping := daysBetween(o.OrderDate, *o.ActualDeliveryDate)
	if shipping < 0 {
		shipping = 0
	}
	o.ShippingTime = &shipping

	if o.EstimatedDeliveryDate == nil {
		return
	}

	delay := daysBetween(*o.EstimatedDeliveryDate, *o.ActualDeliveryDate)
	if delay < 0 {
		delay = 0
	}
	o.DeliveryDelay = &delay
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// Supplier represents a supplier profile with its scorecard inputs.
type Supplier struct {
	ID                   string    `json:"id" db:"id"`
	Name                 string    `json:"name" db:"name"`
	Email                string    `json:"email" db:"email"`
	Phone                string    `json:"phone" db:"phone"`
	Rating               float64   `json:"rating" db:"rating"`
	Reliability          float64   `json:"reliability" db:"reliability"`
	AvgDeliveryTime      float64   `json:"avg_delivery_time" db:"avg_delivery_time"`
	PriceCompetitiveness float64   `json:"price_competitiveness" db:"price_competitiveness"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	ClientID   string
	SupplierID string
	EmployeeID string
	Status     OrderStatus
	Region     string
	From       *time.Time
	To         *time.Time
	Unclaimed  bool
	Limit      int
	Offset     int
}
