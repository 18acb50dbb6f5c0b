package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/supplypulse/backend/internal/domain"
)

type orderRepository struct {
	db *DB
}

func NewOrderRepository(db *DB) *orderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `
	id, client_id, supplier_id, employee_id, order_date, estimated_delivery_date,
	actual_delivery_date, status, total_order_value, payment_status, payment_method,
	shipping_method, tracking_number, shipping_cost, shipping_time, delivery_delay,
	region, priority, notes, stock_reverted, created_at, updated_at
`

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO orders (` + orderColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
				$12, $13, $14, $15, $16, $17, $18, $19, $20, NOW(), NOW())
		`
		_, err := tx.ExecContext(ctx, query,
			order.ID, order.ClientID, order.SupplierID, order.EmployeeID,
			order.OrderDate, order.EstimatedDeliveryDate, order.ActualDeliveryDate,
			order.Status, order.TotalOrderValue, order.PaymentStatus,
			order.PaymentMethod, order.ShippingMethod, order.TrackingNumber,
			order.ShippingCost, order.ShippingTime, order.DeliveryDelay,
			order.Region, order.Priority, order.Notes, order.StockReverted,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		if err := r.insertItems(ctx, tx, order.ID, order.Items); err != nil {
			return err
		}

		return r.insertHistory(ctx, tx, order.ID, order.StatusHistory)
	})
}

func (r *orderRepository) Update(ctx context.Context, order *domain.Order) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE orders
			SET supplier_id = $2, employee_id = $3, estimated_delivery_date = $4,
				actual_delivery_date = $5, status = $6, total_order_value = $7,
				payment_status = $8, tracking_number = $9, shipping_time = $10,
				delivery_delay = $11, notes = $12, stock_reverted = $13,
				updated_at = NOW()
			WHERE id = $1
		`
		res, err := tx.ExecContext(ctx, query,
			order.ID, order.SupplierID, order.EmployeeID, order.EstimatedDeliveryDate,
			order.ActualDeliveryDate, order.Status, order.TotalOrderValue,
			order.PaymentStatus, order.TrackingNumber, order.ShippingTime,
			order.DeliveryDelay, order.Notes, order.StockReverted,
		)
		if err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return &domain.NotFoundError{Entity: "order", ID: order.ID}
		}

		// History is append-only; rewrite the tail past what is stored.
		delQuery := `DELETE FROM order_status_history WHERE order_id = $1`
		if _, err := tx.ExecContext(ctx, delQuery, order.ID); err != nil {
			return fmt.Errorf("failed to refresh status history: %w", err)
		}

		return r.insertHistory(ctx, tx, order.ID, order.StatusHistory)
	})
}

func (r *orderRepository) insertItems(ctx context.Context, tx *sql.Tx, orderID string, items []domain.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, product_id, name_snapshot, sku_snapshot,
			quantity, unit_price, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare item insert: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		_, err := stmt.ExecContext(ctx, orderID, item.ProductID, item.NameSnapshot,
			item.SKUSnapshot, item.Quantity, item.UnitPrice, item.TotalPrice)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return nil
}

func (r *orderRepository) insertHistory(ctx context.Context, tx *sql.Tx, orderID string, history []domain.StatusChange) error {
	query := `
		INSERT INTO order_status_history (order_id, status, timestamp, actor, comment, location)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare history insert: %w", err)
	}
	defer stmt.Close()

	for _, change := range history {
		_, err := stmt.ExecContext(ctx, orderID, change.Status, change.Timestamp,
			change.Actor, change.Comment, change.Location)
		if err != nil {
			return fmt.Errorf("failed to insert status change: %w", err)
		}
	}

	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var order domain.Order
	if err := sqlx.GetContext(ctx, r.db, &order, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "order", ID: id}
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if err := r.loadDetails(ctx, &order); err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepository) loadDetails(ctx context.Context, order *domain.Order) error {
	itemQuery := `
		SELECT product_id, name_snapshot, sku_snapshot, quantity, unit_price, total_price
		FROM order_items
		WHERE order_id = $1
	`
	if err := sqlx.SelectContext(ctx, r.db, &order.Items, itemQuery, order.ID); err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}

	historyQuery := `
		SELECT status, timestamp, actor, comment, location
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY timestamp ASC
	`
	if err := sqlx.SelectContext(ctx, r.db, &order.StatusHistory, historyQuery, order.ID); err != nil {
		return fmt.Errorf("failed to load status history: %w", err)
	}

	return nil
}

func (r *orderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.ClientID != "" {
		conditions = append(conditions, "client_id = "+arg(filter.ClientID))
	}
	if filter.SupplierID != "" {
		conditions = append(conditions, "supplier_id = "+arg(filter.SupplierID))
	}
	if filter.EmployeeID != "" {
		conditions = append(conditions, "employee_id = "+arg(filter.EmployeeID))
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = "+arg(filter.Status))
	}
	if filter.Region != "" {
		conditions = append(conditions, "region = "+arg(filter.Region))
	}
	if filter.From != nil {
		conditions = append(conditions, "order_date >= "+arg(*filter.From))
	}
	if filter.To != nil {
		conditions = append(conditions, "order_date < "+arg(*filter.To))
	}
	if filter.Unclaimed {
		conditions = append(conditions, "supplier_id IS NULL")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` +
		strings.Join(conditions, " AND ") +
		` ORDER BY order_date DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)

	var orders []domain.Order
	if err := sqlx.SelectContext(ctx, r.db, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	for i := range orders {
		if err := r.loadDetails(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

func (r *orderRepository) ListInWindow(ctx context.Context, start, end time.Time) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE order_date >= $1 AND order_date < $2
		ORDER BY order_date ASC`

	var orders []domain.Order
	if err := sqlx.SelectContext(ctx, r.db, &orders, query, start, end); err != nil {
		return nil, fmt.Errorf("failed to list orders in window: %w", err)
	}

	for i := range orders {
		if err := r.loadDetails(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}

	return orders, nil
}
