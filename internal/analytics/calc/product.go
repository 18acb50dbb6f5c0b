package calc

import (
	"sort"

	"github.com/supplypulse/backend/internal/domain"
)

// Products derives the per-category sales rollups and the inventory summary.
// Category rollups cover only products sold in the window; the inventory
// summary covers every active product regardless of sales.
func Products(w Window) domain.ProductMetrics {
	return domain.ProductMetrics{
		ByCategory: categories(w),
		Inventory:  inventory(w),
	}
}

func categories(w Window) []domain.CategoryMetrics {
	type acc struct {
		metrics  domain.CategoryMetrics
		products map[string]*domain.TopProduct
	}

	accs := map[string]*acc{}
	for _, o := range w.Orders {
		for _, item := range o.Items {
			product, ok := w.Products[item.ProductID]
			if !ok {
				continue
			}

			a, ok := accs[product.Category]
			if !ok {
				a = &acc{products: map[string]*domain.TopProduct{}}
				a.metrics.Category = product.Category
				accs[product.Category] = a
			}

			a.metrics.QuantitySold += item.Quantity
			a.metrics.Revenue += item.TotalPrice
			a.metrics.Cost += product.Cost * float64(item.Quantity)

			tp, ok := a.products[item.ProductID]
			if !ok {
				tp = &domain.TopProduct{ProductID: item.ProductID, Name: item.NameSnapshot}
				a.products[item.ProductID] = tp
			}
			tp.Quantity += item.Quantity
			tp.Revenue += item.TotalPrice
		}
	}

	out := make([]domain.CategoryMetrics, 0, len(accs))
	for _, a := range accs {
		m := a.metrics
		m.Profit = m.Revenue - m.Cost
		m.ProfitMargin = pct(m.Profit, m.Revenue)
		m.TopProducts = topProducts(a.products, topProductCount)
		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Revenue > out[j].Revenue })

	return out
}

func inventory(w Window) domain.InventorySummary {
	var s domain.InventorySummary

	for _, p := range w.Products {
		if !p.IsActive {
			continue
		}

		s.ActiveProductCount++
		s.TotalStockUnits += p.StockQuantity
		s.StockValueAtCost += p.Cost * float64(p.StockQuantity)
		s.StockValueAtPrice += p.Price * float64(p.StockQuantity)

		if p.BelowReorder() {
			s.BelowReorderCount++
			s.BelowReorderItems = append(s.BelowReorderItems, domain.LowStockProduct{
				ProductID:     p.ID,
				Name:          p.Name,
				SKU:           p.SKU,
				StockQuantity: p.StockQuantity,
				ReorderLevel:  p.ReorderLevel,
			})
		} else if p.StockQuantity < domain.LowStockThreshold {
			s.LowStockCount++
		}
	}

	sort.Slice(s.BelowReorderItems, func(i, j int) bool {
		return s.BelowReorderItems[i].Name < s.BelowReorderItems[j].Name
	})

	return s
}
