package analytics

import (
	"context"
	"fmt"

	"github.com/supplypulse/backend/internal/analytics/calc"
	"github.com/supplypulse/backend/internal/domain"
	"github.com/supplypulse/backend/internal/repository"
)

// collectProductRefs returns one unresolved reference per distinct product
// appearing in the orders' line items.
func collectProductRefs(orders []domain.Order) []domain.Ref[domain.Product] {
	seen := map[string]bool{}
	var refs []domain.Ref[domain.Product]
	for _, o := range orders {
		for _, item := range o.Items {
			if seen[item.ProductID] {
				continue
			}
			seen[item.ProductID] = true
			refs = append(refs, domain.UnresolvedRef[domain.Product](item.ProductID))
		}
	}

	return refs
}

// resolveWindow loads everything the calculators need and returns a window of
// fully resolved data. References that cannot be resolved are dropped here;
// calculators skip lines whose product is absent rather than guessing.
func resolveWindow(ctx context.Context, orders []domain.Order,
	products repository.ProductRepository, suppliers repository.SupplierRepository) (calc.Window, error) {

	refs := collectProductRefs(orders)
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ID())
	}

	soldProducts, err := products.GetByIDs(ctx, ids)
	if err != nil {
		return calc.Window{}, fmt.Errorf("failed to resolve products: %w", err)
	}

	resolved := make([]domain.Ref[domain.Product], 0, len(refs))
	for _, ref := range refs {
		if p, ok := soldProducts[ref.ID()]; ok {
			resolved = append(resolved, domain.ResolvedRef(ref.ID(), p))
		}
	}

	// The inventory summary spans all active products, sold or not.
	active, err := products.ListActive(ctx)
	if err != nil {
		return calc.Window{}, fmt.Errorf("failed to list active products: %w", err)
	}

	productMap := make(map[string]*domain.Product, len(resolved)+len(active))
	for _, ref := range resolved {
		if p, ok := ref.Value(); ok {
			productMap[ref.ID()] = p
		}
	}
	for i := range active {
		productMap[active[i].ID] = &active[i]
	}

	supplierList, err := suppliers.List(ctx)
	if err != nil {
		return calc.Window{}, fmt.Errorf("failed to list suppliers: %w", err)
	}
	supplierMap := make(map[string]*domain.Supplier, len(supplierList))
	for i := range supplierList {
		supplierMap[supplierList[i].ID] = &supplierList[i]
	}

	return calc.Window{
		Orders:    orders,
		Products:  productMap,
		Suppliers: supplierMap,
	}, nil
}
