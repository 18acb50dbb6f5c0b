package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/supplypulse/backend/internal/domain"
)

type supplierRepository struct {
	db *DB
}

func NewSupplierRepository(db *DB) *supplierRepository {
	return &supplierRepository{db: db}
}

func (r *supplierRepository) GetByID(ctx context.Context, id string) (*domain.Supplier, error) {
	query := `
		SELECT id, name, email, phone, rating, reliability, avg_delivery_time,
			price_competitiveness, created_at
		FROM suppliers
		WHERE id = $1
	`

	var supplier domain.Supplier
	if err := sqlx.GetContext(ctx, r.db, &supplier, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "supplier", ID: id}
		}
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}

	return &supplier, nil
}

func (r *supplierRepository) List(ctx context.Context) ([]domain.Supplier, error) {
	query := `
		SELECT id, name, email, phone, rating, reliability, avg_delivery_time,
			price_competitiveness, created_at
		FROM suppliers
		ORDER BY name
	`

	var suppliers []domain.Supplier
	if err := sqlx.SelectContext(ctx, r.db, &suppliers, query); err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}

	return suppliers, nil
}
