package calc

import (
	"sort"

	"github.com/supplypulse/backend/internal/domain"
)

const topProductCount = 5

// Suppliers builds the per-supplier scorecards for the window. Line items are
// attributed to the product's owning supplier; on-time and late counts are
// attributed once per order, not once per line.
func Suppliers(w Window) []domain.SupplierMetrics {
	type acc struct {
		metrics    domain.SupplierMetrics
		products   map[string]*domain.TopProduct
		seenOrders map[string]bool
	}

	accs := map[string]*acc{}
	get := func(supplierID string) *acc {
		a, ok := accs[supplierID]
		if !ok {
			a = &acc{
				products:   map[string]*domain.TopProduct{},
				seenOrders: map[string]bool{},
			}
			a.metrics.SupplierID = supplierID
			if sup, ok := w.Suppliers[supplierID]; ok {
				a.metrics.SupplierName = sup.Name
				a.metrics.QualityScore = clamp(sup.Rating * 20)
				a.metrics.CostEfficiencyScore = clamp(sup.PriceCompetitiveness)
			}
			accs[supplierID] = a
		}
		return a
	}

	for _, o := range w.Orders {
		for _, item := range o.Items {
			product, ok := w.Products[item.ProductID]
			if !ok {
				continue
			}

			a := get(product.SupplierID)
			a.metrics.ItemsSold += item.Quantity
			a.metrics.Revenue += item.TotalPrice
			a.metrics.CostOfGoodsSold += product.Cost * float64(item.Quantity)

			tp, ok := a.products[item.ProductID]
			if !ok {
				tp = &domain.TopProduct{ProductID: item.ProductID, Name: item.NameSnapshot}
				a.products[item.ProductID] = tp
			}
			tp.Quantity += item.Quantity
			tp.Revenue += item.TotalPrice

			if !a.seenOrders[o.ID] {
				a.seenOrders[o.ID] = true
				a.metrics.OrderCount++
				if o.DeliveryDelay != nil {
					if *o.DeliveryDelay == 0 {
						a.metrics.OnTimeCount++
					} else {
						a.metrics.LateCount++
					}
				}
			}
		}
	}

	out := make([]domain.SupplierMetrics, 0, len(accs))
	for _, a := range accs {
		m := a.metrics
		m.Profit = m.Revenue - m.CostOfGoodsSold
		m.ProfitMargin = pct(m.Profit, m.Revenue)
		m.OnTimeDeliveryRate = pct(float64(m.OnTimeCount), float64(m.OnTimeCount+m.LateCount))
		m.TopProducts = topProducts(a.products, topProductCount)
		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Revenue > out[j].Revenue })

	return out
}
