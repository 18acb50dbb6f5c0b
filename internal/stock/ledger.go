// Package stock owns every mutation of product quantity-on-hand. All callers
// go through ApplyDelta so the non-negativity floor holds under concurrency.
package stock

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/supplypulse/backend/internal/domain"
	"github.com/supplypulse/backend/internal/notify"
	"github.com/supplypulse/backend/internal/repository"
)

type Ledger struct {
	products repository.ProductRepository
	notifier notify.Notifier
}

func NewLedger(products repository.ProductRepository, notifier notify.Notifier) *Ledger {
	return &Ledger{products: products, notifier: notifier}
}

// ApplyDelta adds a signed quantity change to a product's stock. The write is
// a single conditional update at the repository, so a delta that would push
// the quantity negative fails with InsufficientStockError and changes nothing.
// Falling below the reorder level is advisory: it emits a signal, not an
// error. Callers running multi-step flows compensate their own deltas.
func (l *Ledger) ApplyDelta(ctx context.Context, productID string, delta int) (*domain.Product, error) {
	product, err := l.products.UpdateStock(ctx, productID, delta)
	if err != nil {
		return nil, err
	}

	if product.BelowReorder() {
		log.Warn().
			Str("product_id", product.ID).
			Str("sku", product.SKU).
			Int("stock_quantity", product.StockQuantity).
			Int("reorder_level", product.ReorderLevel).
			Msg("product below reorder level")

		l.notifier.Notify(ctx, notify.EventStockBelowReorder, product.SupplierID, map[string]interface{}{
			"product_id":     product.ID,
			"sku":            product.SKU,
			"name":           product.Name,
			"stock_quantity": product.StockQuantity,
			"reorder_level":  product.ReorderLevel,
		})
	}

	return product, nil
}
