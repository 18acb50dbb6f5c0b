package calc

import (
	"sort"

	"github.com/supplypulse/backend/internal/domain"
)

// Regions groups the window's orders by recorded region, summing order count
// and revenue and averaging shipping time over delivered orders.
func Regions(w Window) []domain.RegionMetrics {
	type acc struct {
		metrics   domain.RegionMetrics
		totalTime float64
		timed     int
	}

	accs := map[string]*acc{}
	for _, o := range w.Orders {
		region := o.Region
		if region == "" {
			region = "unknown"
		}

		a, ok := accs[region]
		if !ok {
			a = &acc{}
			a.metrics.Region = region
			accs[region] = a
		}

		a.metrics.OrderCount++
		a.metrics.Revenue += o.TotalOrderValue
		if o.Status == domain.StatusDelivered && o.ShippingTime != nil {
			a.totalTime += float64(*o.ShippingTime)
			a.timed++
		}
	}

	out := make([]domain.RegionMetrics, 0, len(accs))
	for _, a := range accs {
		m := a.metrics
		if a.timed > 0 {
			m.AverageShippingTime = round1(a.totalTime / float64(a.timed))
		}
		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].OrderCount > out[j].OrderCount })

	return out
}
