package analytics

import (
	"context"
	"fmt"
	"math"

	"github.com/supplypulse/backend/internal/domain"
)

// Comparison metric identifiers.
const (
	MetricOnTimeDeliveryRate = "onTimeDeliveryRate"
	MetricQualityScore       = "qualityScore"
	MetricAverageOrderValue  = "averageOrderValue"
	MetricDefectRate         = "defectRate"
	MetricLeadTime           = "leadTime"
)

// SupplierComparison holds one supplier's values for the requested metrics.
type SupplierComparison struct {
	SupplierID   string             `json:"supplier_id"`
	SupplierName string             `json:"supplier_name"`
	Metrics      map[string]float64 `json:"metrics"`
}

// SupplierStats is the per-supplier order summary.
type SupplierStats struct {
	SupplierID         string  `json:"supplier_id"`
	SupplierName       string  `json:"supplier_name"`
	TotalOrders        int     `json:"total_orders"`
	TotalRevenue       float64 `json:"total_revenue"`
	AverageOrderValue  float64 `json:"average_order_value"`
	OnTimeDeliveryRate int     `json:"on_time_delivery_rate"`
	ReturnedOrders     int     `json:"returned_orders"`
	Rating             float64 `json:"rating"`
	AvgDeliveryTime    float64 `json:"avg_delivery_time"`
}

// CompareSuppliers reshapes live orders and supplier profiles into one value
// per requested metric per supplier. Unknown metric identifiers are rejected;
// missing data degrades to zero.
func (a *Aggregator) CompareSuppliers(ctx context.Context, supplierIDs, metricIDs []string) ([]SupplierComparison, error) {
	if len(supplierIDs) == 0 {
		return nil, &domain.ValidationError{Field: "supplier_ids", Reason: "at least one supplier is required"}
	}
	if len(metricIDs) == 0 {
		metricIDs = []string{MetricOnTimeDeliveryRate, MetricQualityScore, MetricAverageOrderValue}
	}
	for _, id := range metricIDs {
		switch id {
		case MetricOnTimeDeliveryRate, MetricQualityScore, MetricAverageOrderValue,
			MetricDefectRate, MetricLeadTime:
		default:
			return nil, &domain.ValidationError{Field: "metric_ids", Reason: "unknown metric " + id}
		}
	}

	out := make([]SupplierComparison, 0, len(supplierIDs))
	for _, supplierID := range supplierIDs {
		stats, err := a.SupplierMetrics(ctx, supplierID)
		if err != nil {
			return nil, err
		}

		values := make(map[string]float64, len(metricIDs))
		for _, id := range metricIDs {
			switch id {
			case MetricOnTimeDeliveryRate:
				values[id] = float64(stats.OnTimeDeliveryRate)
			case MetricQualityScore:
				values[id] = math.Min(100, stats.Rating*20)
			case MetricAverageOrderValue:
				values[id] = stats.AverageOrderValue
			case MetricDefectRate:
				if stats.TotalOrders > 0 {
					values[id] = math.Round(float64(stats.ReturnedOrders) / float64(stats.TotalOrders) * 100)
				}
			case MetricLeadTime:
				values[id] = stats.AvgDeliveryTime
			}
		}

		out = append(out, SupplierComparison{
			SupplierID:   supplierID,
			SupplierName: stats.SupplierName,
			Metrics:      values,
		})
	}

	return out, nil
}

// SupplierMetrics derives one supplier's order statistics from live data.
func (a *Aggregator) SupplierMetrics(ctx context.Context, supplierID string) (*SupplierStats, error) {
	supplier, err := a.suppliers.GetByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	orders, err := a.orders.List(ctx, domain.OrderFilter{SupplierID: supplierID, Limit: 200})
	if err != nil {
		return nil, fmt.Errorf("failed to load supplier orders: %w", err)
	}

	stats := &SupplierStats{
		SupplierID:      supplier.ID,
		SupplierName:    supplier.Name,
		Rating:          supplier.Rating,
		AvgDeliveryTime: supplier.AvgDeliveryTime,
	}

	var onTime, late int
	for _, o := range orders {
		stats.TotalOrders++
		stats.TotalRevenue += o.TotalOrderValue
		if o.Status == domain.StatusReturned {
			stats.ReturnedOrders++
		}
		if o.DeliveryDelay != nil {
			if *o.DeliveryDelay == 0 {
				onTime++
			} else {
				late++
			}
		}
	}

	if stats.TotalOrders > 0 {
		stats.AverageOrderValue = math.Round(stats.TotalRevenue/float64(stats.TotalOrders)*100) / 100
	}
	if onTime+late > 0 {
		stats.OnTimeDeliveryRate = int(math.Round(float64(onTime) / float64(onTime+late) * 100))
	}

	return stats, nil
}
