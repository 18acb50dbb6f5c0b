// Package memory provides in-memory repositories with the same semantics as
// the postgres implementations, used by the engine and aggregator tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/supplypulse/backend/internal/domain"
)

type Store struct {
	mu        sync.RWMutex
	orders    map[string]*domain.Order
	products  map[string]*domain.Product
	suppliers map[string]*domain.Supplier
	snapshots map[string]*domain.Snapshot
}

func New() *Store {
	return &Store{
		orders:    map[string]*domain.Order{},
		products:  map[string]*domain.Product{},
		suppliers: map[string]*domain.Supplier{},
		snapshots: map[string]*domain.Snapshot{},
	}
}

// SeedProduct adds or replaces a product.
func (s *Store) SeedProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := p
	s.products[p.ID] = &cp
}

// SeedSupplier adds or replaces a supplier.
func (s *Store) SeedSupplier(sup domain.Supplier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := sup
	s.suppliers[sup.ID] = &cp
}

// SeedOrder adds or replaces an order without lifecycle checks.
func (s *Store) SeedOrder(o domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := cloneOrder(&o)
	s.orders[o.ID] = cp
}

func cloneOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	cp.StatusHistory = append([]domain.StatusChange(nil), o.StatusHistory...)
	return &cp
}

func cloneSnapshot(s *domain.Snapshot) *domain.Snapshot {
	cp := *s
	cp.Suppliers = append([]domain.SupplierMetrics(nil), s.Suppliers...)
	cp.Regions = append([]domain.RegionMetrics(nil), s.Regions...)
	cp.Products.ByCategory = append([]domain.CategoryMetrics(nil), s.Products.ByCategory...)
	cp.Products.Inventory.BelowReorderItems = append([]domain.LowStockProduct(nil), s.Products.Inventory.BelowReorderItems...)
	return &cp
}

// Orders returns the store as an OrderRepository.
func (s *Store) Orders() *OrderRepo { return &OrderRepo{s} }

// Products returns the store as a ProductRepository.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s} }

// Suppliers returns the store as a SupplierRepository.
func (s *Store) Suppliers() *SupplierRepo { return &SupplierRepo{s} }

// Snapshots returns the store as a SnapshotRepository.
func (s *Store) Snapshots() *SnapshotRepo { return &SnapshotRepo{s} }

type OrderRepo struct{ s *Store }

func (r *OrderRepo) Create(ctx context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[order.ID]; ok {
		return &domain.ConflictError{OrderID: order.ID, Reason: "order already exists"}
	}
	r.s.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *OrderRepo) Update(ctx context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[order.ID]; !ok {
		return &domain.NotFoundError{Entity: "order", ID: order.ID}
	}
	r.s.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	order, ok := r.s.orders[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "order", ID: id}
	}
	return cloneOrder(order), nil
}

func (r *OrderRepo) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.Order
	for _, o := range r.s.orders {
		if filter.ClientID != "" && o.ClientID != filter.ClientID {
			continue
		}
		if filter.SupplierID != "" && (o.SupplierID == nil || *o.SupplierID != filter.SupplierID) {
			continue
		}
		if filter.EmployeeID != "" && (o.EmployeeID == nil || *o.EmployeeID != filter.EmployeeID) {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.Region != "" && o.Region != filter.Region {
			continue
		}
		if filter.From != nil && o.OrderDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !o.OrderDate.Before(*filter.To) {
			continue
		}
		if filter.Unclaimed && o.SupplierID != nil {
			continue
		}
		out = append(out, *cloneOrder(o))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}

	return out, nil
}

func (r *OrderRepo) ListInWindow(ctx context.Context, start, end time.Time) ([]domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.Order
	for _, o := range r.s.orders {
		if o.OrderDate.Before(start) || !o.OrderDate.Before(end) {
			continue
		}
		out = append(out, *cloneOrder(o))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.Before(out[j].OrderDate) })

	return out, nil
}

type ProductRepo struct{ s *Store }

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "product", ID: id}
	}
	cp := *p
	return &cp, nil
}

func (r *ProductRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]*domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func (r *ProductRepo) ListActive(ctx context.Context) ([]domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Product
	for _, p := range r.s.products {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// UpdateStock mirrors the conditional SQL update: the check and the write
// happen under one lock so the quantity can never go negative.
func (r *ProductRepo) UpdateStock(ctx context.Context, id string, delta int) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "product", ID: id}
	}
	if p.StockQuantity+delta < 0 {
		return nil, &domain.InsufficientStockError{
			ProductID: id,
			Requested: -delta,
			Available: p.StockQuantity,
		}
	}

	p.StockQuantity += delta
	p.LastStockUpdate = time.Now().UTC()
	p.UpdatedAt = p.LastStockUpdate

	cp := *p
	return &cp, nil
}

type SupplierRepo struct{ s *Store }

func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*domain.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sup, ok := r.s.suppliers[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "supplier", ID: id}
	}
	cp := *sup
	return &cp, nil
}

func (r *SupplierRepo) List(ctx context.Context) ([]domain.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Supplier
	for _, sup := range r.s.suppliers {
		out = append(out, *sup)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type SnapshotRepo struct{ s *Store }

func snapshotKey(period domain.Period, date time.Time) string {
	return fmt.Sprintf("%s/%s", period, date.UTC().Format("2006-01-02T15:04:05"))
}

func (r *SnapshotRepo) Upsert(ctx context.Context, snapshot *domain.Snapshot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := snapshotKey(snapshot.Period, snapshot.Date)
	if existing, ok := r.s.snapshots[key]; ok {
		// Replace metric fields in place; the key and identity never change.
		cp := cloneSnapshot(snapshot)
		cp.ID = existing.ID
		cp.Period = existing.Period
		cp.Date = existing.Date
		cp.UpdatedAt = time.Now().UTC()
		r.s.snapshots[key] = cp
		snapshot.ID = existing.ID
		return nil
	}

	cp := cloneSnapshot(snapshot)
	cp.UpdatedAt = time.Now().UTC()
	r.s.snapshots[key] = cp
	return nil
}

func (r *SnapshotRepo) Get(ctx context.Context, period domain.Period, date time.Time) (*domain.Snapshot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	s, ok := r.s.snapshots[snapshotKey(period, date)]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "snapshot", ID: snapshotKey(period, date)}
	}
	return cloneSnapshot(s), nil
}

func (r *SnapshotRepo) ListRange(ctx context.Context, period domain.Period, start, end time.Time) ([]domain.Snapshot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.Snapshot
	for _, s := range r.s.snapshots {
		if s.Period != period || s.Date.Before(start) || !s.Date.Before(end) {
			continue
		}
		out = append(out, *cloneSnapshot(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *SnapshotRepo) Latest(ctx context.Context, period domain.Period, limit int) ([]domain.Snapshot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.Snapshot
	for _, s := range r.s.snapshots {
		if s.Period != period {
			continue
		}
		out = append(out, *cloneSnapshot(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
