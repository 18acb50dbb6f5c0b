package calc

import (
	"math"

	"github.com/supplypulse/backend/internal/domain"
)

// inventoryHealthDefault is the neutral score reported when there are no
// active products to assess.
const inventoryHealthDefault = 70

// KPIs composes the calculator outputs into the five bounded indices. The
// cost optimization and customer satisfaction indices have no data source in
// this domain and are reported as zero rather than fabricated.
func KPIs(delivery domain.DeliveryMetrics, suppliers []domain.SupplierMetrics, products domain.ProductMetrics) domain.KPISet {
	return domain.KPISet{
		SupplierPerformance: supplierPerformanceIndex(suppliers),
		DeliveryEfficiency:  deliveryEfficiencyIndex(delivery),
		InventoryHealth:     inventoryHealthIndex(products.Inventory),
	}
}

// supplierPerformanceIndex is the order-count-weighted mean of each
// supplier's composite score. Suppliers without orders contribute weight 1 so
// the denominator never collapses.
func supplierPerformanceIndex(suppliers []domain.SupplierMetrics) int {
	if len(suppliers) == 0 {
		return 0
	}

	var weightedSum, totalWeight float64
	for _, s := range suppliers {
		score := float64(s.OnTimeDeliveryRate)*0.4 +
			float64(s.ProfitMargin)*0.3 +
			s.QualityScore*0.15 +
			s.CostEfficiencyScore*0.15

		weight := float64(s.OrderCount)
		if weight == 0 {
			weight = 1
		}

		weightedSum += clamp(score) * weight
		totalWeight += weight
	}

	return int(math.Round(clamp(weightedSum / totalWeight)))
}

// deliveryEfficiencyIndex blends success rate, normalized average delivery
// time (1 day scores 100, minus 15 points per additional day; same-day
// averages score above 100 before the final clamp) and the on-time rate.
func deliveryEfficiencyIndex(d domain.DeliveryMetrics) int {
	normalizedAvgTime := 0.0
	if d.OnTime+d.Delayed > 0 {
		normalizedAvgTime = math.Max(0, 100-(d.AverageDeliveryTime-1)*15)
	}

	onTimeRate := float64(pct(float64(d.OnTime), float64(d.OnTime+d.Delayed)))

	score := float64(d.SuccessRate)*0.5 + normalizedAvgTime*0.3 + onTimeRate*0.2

	return int(math.Round(clamp(score)))
}

func inventoryHealthIndex(inv domain.InventorySummary) int {
	if inv.ActiveProductCount == 0 {
		return inventoryHealthDefault
	}

	troubled := float64(inv.BelowReorderCount + inv.LowStockCount)
	score := math.Round((1 - troubled/(2*float64(inv.ActiveProductCount))) * 100)

	return int(math.Max(0, score))
}
