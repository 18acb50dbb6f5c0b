package calc

import "github.com/supplypulse/backend/internal/domain"

// Delivery derives on-time/delayed counts, average delivery time and the
// delivery success rate for the window. An empty window yields all zeros.
func Delivery(w Window) domain.DeliveryMetrics {
	var m domain.DeliveryMetrics

	var totalTime float64
	var timed int
	for _, o := range w.Orders {
		if o.DeliveryDelay != nil {
			if *o.DeliveryDelay == 0 {
				m.OnTime++
			} else {
				m.Delayed++
			}
		}
		if o.Status == domain.StatusDelivered && o.ShippingTime != nil {
			totalTime += float64(*o.ShippingTime)
			timed++
		}
	}

	if timed > 0 {
		m.AverageDeliveryTime = round1(totalTime / float64(timed))
	}
	m.SuccessRate = pct(float64(m.OnTime), float64(m.OnTime+m.Delayed))

	return m
}
