package repository

import (
	"context"
	"time"

	"github.com/supplypulse/backend/internal/domain"
)

// OrderRepository persists orders and their history.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	Update(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	ListInWindow(ctx context.Context, start, end time.Time) ([]domain.Order, error)
}

// ProductRepository persists products. UpdateStock is the single mutation path
// for quantity-on-hand: it applies the signed delta atomically and refuses any
// change that would push the quantity negative.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Product, error)
	ListActive(ctx context.Context) ([]domain.Product, error)
	UpdateStock(ctx context.Context, id string, delta int) (*domain.Product, error)
}

// SupplierRepository reads supplier profiles.
type SupplierRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Supplier, error)
	List(ctx context.Context) ([]domain.Supplier, error)
}

// SnapshotRepository persists analytics snapshots keyed by (period, date).
type SnapshotRepository interface {
	Upsert(ctx context.Context, snapshot *domain.Snapshot) error
	Get(ctx context.Context, period domain.Period, date time.Time) (*domain.Snapshot, error)
	ListRange(ctx context.Context, period domain.Period, start, end time.Time) ([]domain.Snapshot, error)
	Latest(ctx context.Context, period domain.Period, limit int) ([]domain.Snapshot, error)
}
