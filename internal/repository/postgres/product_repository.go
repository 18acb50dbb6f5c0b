package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/supplypulse/backend/internal/domain"
)

type productRepository struct {
	db *DB
}

func NewProductRepository(db *DB) *productRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT id, sku, name, category, price, cost, supplier_id, stock_quantity,
			reorder_level, target_stock_level, is_active, last_stock_update,
			created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var product domain.Product
	if err := sqlx.GetContext(ctx, r.db, &product, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "product", ID: id}
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Product, error) {
	if len(ids) == 0 {
		return map[string]*domain.Product{}, nil
	}

	query := `
		SELECT id, sku, name, category, price, cost, supplier_id, stock_quantity,
			reorder_level, target_stock_level, is_active, last_stock_update,
			created_at, updated_at
		FROM products
		WHERE id = ANY($1)
	`

	var products []domain.Product
	if err := sqlx.SelectContext(ctx, r.db, &products, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	byID := make(map[string]*domain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	return byID, nil
}

func (r *productRepository) ListActive(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, sku, name, category, price, cost, supplier_id, stock_quantity,
			reorder_level, target_stock_level, is_active, last_stock_update,
			created_at, updated_at
		FROM products
		WHERE is_active = TRUE
		ORDER BY name
	`

	var products []domain.Product
	if err := sqlx.SelectContext(ctx, r.db, &products, query); err != nil {
		return nil, fmt.Errorf("failed to list active products: %w", err)
	}

	return products, nil
}

// UpdateStock applies a signed delta as a single conditional update so the
// quantity can never cross below zero, even under concurrent placements.
func (r *productRepository) UpdateStock(ctx context.Context, id string, delta int) (*domain.Product, error) {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity + $2,
			last_stock_update = NOW(),
			updated_at = NOW()
		WHERE id = $1 AND stock_quantity + $2 >= 0
		RETURNING id, sku, name, category, price, cost, supplier_id, stock_quantity,
			reorder_level, target_stock_level, is_active, last_stock_update,
			created_at, updated_at
	`

	var product domain.Product
	err := sqlx.GetContext(ctx, r.db, &product, query, id, delta)
	if err == nil {
		return &product, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	// No row matched: either the product is gone or the floor was hit.
	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}

	return nil, &domain.InsufficientStockError{
		ProductID: id,
		Requested: -delta,
		Available: current.StockQuantity,
	}
}
