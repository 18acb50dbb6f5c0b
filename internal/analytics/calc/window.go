// Package calc holds the pure metric calculators. Every function takes a
// fully resolved window of entities and derives numbers without touching
// storage or mutating its input. Zero denominators always yield zero.
package calc

import (
	"math"
	"sort"

	"github.com/supplypulse/backend/internal/domain"
)

// Window is one time window's worth of resolved data.
type Window struct {
	Orders    []domain.Order
	Products  map[string]*domain.Product
	Suppliers map[string]*domain.Supplier
}

// pct computes round(num/den*100) as an int, 0 when den is 0.
func pct(num, den float64) int {
	if den == 0 {
		return 0
	}

	return int(math.Round(num / den * 100))
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// clamp bounds v to [0, 100].
func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}

	return v
}

// topProducts keeps the n highest-revenue entries, ties broken by name.
func topProducts(byProduct map[string]*domain.TopProduct, n int) []domain.TopProduct {
	out := make([]domain.TopProduct, 0, len(byProduct))
	for _, tp := range byProduct {
		out = append(out, *tp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Name < out[j].Name
	})

	if len(out) > n {
		out = out[:n]
	}

	return out
}
