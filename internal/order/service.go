package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/supplypulse/backend/internal/domain"
	"github.com/supplypulse/backend/internal/notify"
	"github.com/supplypulse/backend/internal/repository"
	"github.com/supplypulse/backend/internal/stock"
)

// Service drives the order lifecycle: placement, status transitions, claims
// and the stock side effects they trigger.
type Service struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	ledger   *stock.Ledger
	notifier notify.Notifier
	policy   RolePolicy
	now      func() time.Time
}

func NewService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	ledger *stock.Ledger,
	notifier notify.Notifier,
	policy RolePolicy,
) *Service {
	return &Service{
		orders:   orders,
		products: products,
		ledger:   ledger,
		notifier: notifier,
		policy:   policy,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// PlaceOrderItem is one requested line. Prices are never taken from the
// caller; they are snapshotted from the product at placement.
type PlaceOrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// PlaceOrderRequest is the payload for placing a new order.
type PlaceOrderRequest struct {
	Items                 []PlaceOrderItem `json:"items"`
	EstimatedDeliveryDate *time.Time       `json:"estimated_delivery_date"`
	PaymentMethod         string           `json:"payment_method"`
	ShippingMethod        string           `json:"shipping_method"`
	ShippingCost          float64          `json:"shipping_cost"`
	Region                string           `json:"region"`
	Priority              string           `json:"priority"`
	Notes                 string           `json:"notes"`
}

// Place creates an order all-or-nothing: every line is validated and
// sufficiency-checked before any stock is touched, one -quantity delta is
// applied per line, and already-applied deltas are compensated if a later
// step fails. Stock is left exactly as found on any error.
func (s *Service) Place(ctx context.Context, actor Actor, req PlaceOrderRequest) (*domain.Order, error) {
	if len(req.Items) == 0 {
		return nil, &domain.ValidationError{Field: "items", Reason: "order must contain at least one item"}
	}

	ids := make([]string, 0, len(req.Items))
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, &domain.ValidationError{Field: "items", Reason: "quantity must be positive"}
		}
		ids = append(ids, line.ProductID)
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	// Full sufficiency pass before any delta is applied.
	for _, line := range req.Items {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, &domain.NotFoundError{Entity: "product", ID: line.ProductID}
		}
		if !product.IsActive {
			return nil, &domain.ValidationError{Field: "items", Reason: "product " + product.SKU + " is not active"}
		}
		if product.StockQuantity < line.Quantity {
			return nil, &domain.InsufficientStockError{
				ProductID: line.ProductID,
				Requested: line.Quantity,
				Available: product.StockQuantity,
			}
		}
	}

	now := s.now()
	items := make([]domain.OrderItem, 0, len(req.Items))
	total := 0.0
	for _, line := range req.Items {
		product := products[line.ProductID]
		lineTotal := product.Price * float64(line.Quantity)
		items = append(items, domain.OrderItem{
			ProductID:    product.ID,
			NameSnapshot: product.Name,
			SKUSnapshot:  product.SKU,
			Quantity:     line.Quantity,
			UnitPrice:    product.Price,
			TotalPrice:   lineTotal,
		})
		total += lineTotal
	}

	applied, err := s.applyDeltas(ctx, items, -1)
	if err != nil {
		if compErr := s.compensate(ctx, applied); compErr != nil {
			return nil, compErr
		}
		return nil, err
	}

	order := &domain.Order{
		ID:                    uuid.NewString(),
		ClientID:              actor.ID,
		Items:                 items,
		OrderDate:             now,
		EstimatedDeliveryDate: req.EstimatedDeliveryDate,
		Status:                domain.StatusCreated,
		StatusHistory: []domain.StatusChange{{
			Status:    domain.StatusCreated,
			Timestamp: now,
			Actor:     actor.ID,
		}},
		TotalOrderValue: total,
		PaymentStatus:   "pending",
		PaymentMethod:   req.PaymentMethod,
		ShippingMethod:  req.ShippingMethod,
		ShippingCost:    req.ShippingCost,
		Region:          req.Region,
		Priority:        req.Priority,
		Notes:           req.Notes,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		if compErr := s.compensate(ctx, items); compErr != nil {
			return nil, compErr
		}
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	s.notifier.Notify(ctx, notify.EventOrderCreated, order.ClientID, map[string]interface{}{
		"order_id":    order.ID,
		"total_value": order.TotalOrderValue,
	})

	return order, nil
}

// applyDeltas applies sign*quantity per line, returning the lines whose
// deltas landed so the caller can compensate on failure.
func (s *Service) applyDeltas(ctx context.Context, items []domain.OrderItem, sign int) ([]domain.OrderItem, error) {
	applied := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		if _, err := s.ledger.ApplyDelta(ctx, item.ProductID, sign*item.Quantity); err != nil {
			return applied, err
		}
		applied = append(applied, item)
	}

	return applied, nil
}

func (s *Service) compensate(ctx context.Context, applied []domain.OrderItem) error {
	for _, item := range applied {
		if _, err := s.ledger.ApplyDelta(ctx, item.ProductID, item.Quantity); err != nil {
			log.Error().Err(err).Str("product_id", item.ProductID).
				Msg("stock compensation failed, manual reconciliation required")
			return &domain.ConsistencyError{
				Op:     "order placement",
				Detail: "stock compensation failed for product " + item.ProductID,
			}
		}
	}

	return nil
}

// Transition moves an order to a new status. The edge must be legal in the
// lifecycle graph and permitted for the actor's role. Delivery stamps the
// actual delivery date and recomputes the shipping KPIs; cancellation reverts
// the placement stock deltas exactly once.
func (s *Service) Transition(ctx context.Context, orderID string, newStatus domain.OrderStatus, actor Actor, comment, location string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(order.Status, newStatus) {
		return nil, &domain.InvalidTransitionError{From: order.Status, To: newStatus}
	}
	if !s.policy.CanSetStatus(actor.Role, newStatus) {
		return nil, &domain.InvalidTransitionError{From: order.Status, To: newStatus, Role: actor.Role}
	}

	now := s.now()
	prev := order.Status
	order.Status = newStatus
	order.StatusHistory = append(order.StatusHistory, domain.StatusChange{
		Status:    newStatus,
		Timestamp: now,
		Actor:     actor.ID,
		Comment:   comment,
		Location:  location,
	})

	if newStatus == domain.StatusDelivered {
		order.ActualDeliveryDate = &now
		order.RecomputeDeliveryKPIs()
	}

	if newStatus == domain.StatusCancelled && prev != domain.StatusCancelled && !order.StockReverted {
		applied, err := s.applyDeltas(ctx, order.Items, 1)
		if err != nil {
			// Roll the reversion back so a retry starts clean.
			for _, item := range applied {
				if _, rbErr := s.ledger.ApplyDelta(ctx, item.ProductID, -item.Quantity); rbErr != nil {
					return nil, &domain.ConsistencyError{
						Op:     "order cancellation",
						Detail: "partial stock reversion on order " + order.ID,
					}
				}
			}
			return nil, fmt.Errorf("failed to revert stock: %w", err)
		}
		order.StockReverted = true
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to persist transition: %w", err)
	}

	s.notifyTransition(ctx, order, newStatus)

	return order, nil
}

func (s *Service) notifyTransition(ctx context.Context, order *domain.Order, status domain.OrderStatus) {
	var event string
	switch status {
	case domain.StatusConfirmed:
		event = notify.EventOrderConfirmed
	case domain.StatusShipped:
		event = notify.EventOrderShipped
	case domain.StatusDelivered:
		event = notify.EventOrderDelivered
	default:
		return
	}

	s.notifier.Notify(ctx, event, order.ClientID, map[string]interface{}{
		"order_id": order.ID,
		"status":   string(status),
	})
}

// Claim attaches a supplier to an unassigned order. Claiming an order held by
// another supplier fails with ConflictError; claiming one still in created
// status also performs the created to confirmed step, atomically from the
// caller's point of view.
func (s *Service) Claim(ctx context.Context, orderID string, actor Actor) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.SupplierID != nil {
		if *order.SupplierID == actor.ID {
			return order, nil
		}
		return nil, &domain.ConflictError{OrderID: orderID, Reason: "already claimed by another supplier"}
	}

	supplierID := actor.ID
	order.SupplierID = &supplierID

	if order.Status == domain.StatusCreated {
		now := s.now()
		order.Status = domain.StatusConfirmed
		order.StatusHistory = append(order.StatusHistory, domain.StatusChange{
			Status:    domain.StatusConfirmed,
			Timestamp: now,
			Actor:     actor.ID,
			Comment:   "claimed by supplier",
		})
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to persist claim: %w", err)
	}

	s.notifier.Notify(ctx, notify.EventOrderClaimed, order.ClientID, map[string]interface{}{
		"order_id":    order.ID,
		"supplier_id": supplierID,
	})

	return order, nil
}

// AssignEmployee attaches a staff member to an order.
func (s *Service) AssignEmployee(ctx context.Context, orderID, employeeID string, actor Actor) (*domain.Order, error) {
	if actor.Role != RoleManager && actor.Role != RoleAdmin {
		return nil, &domain.ValidationError{Field: "role", Reason: "only managers may assign employees"}
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order.EmployeeID = &employeeID
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to persist assignment: %w", err)
	}

	s.notifier.Notify(ctx, notify.EventOrderAssigned, employeeID, map[string]interface{}{
		"order_id": order.ID,
	})

	return order, nil
}

// SetTracking records the shipment tracking number.
func (s *Service) SetTracking(ctx context.Context, orderID, trackingNumber string, actor Actor) (*domain.Order, error) {
	if trackingNumber == "" {
		return nil, &domain.ValidationError{Field: "tracking_number", Reason: "tracking number is required"}
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order.TrackingNumber = trackingNumber
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to persist tracking number: %w", err)
	}

	s.notifier.Notify(ctx, notify.EventOrderTracking, order.ClientID, map[string]interface{}{
		"order_id":        order.ID,
		"tracking_number": trackingNumber,
	})

	return order, nil
}

// Get returns one order, enforcing role-scoped access: clients see their own
// orders, suppliers see orders they claimed or that are still unclaimed,
// staff see everything.
func (s *Service) Get(ctx context.Context, orderID string, actor Actor) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case RoleClient:
		if order.ClientID != actor.ID {
			return nil, &domain.NotFoundError{Entity: "order", ID: orderID}
		}
	case RoleSupplier:
		if order.SupplierID != nil && *order.SupplierID != actor.ID {
			return nil, &domain.NotFoundError{Entity: "order", ID: orderID}
		}
	}

	return order, nil
}

// List returns orders visible to the actor, narrowed by the filter.
func (s *Service) List(ctx context.Context, actor Actor, filter domain.OrderFilter) ([]domain.Order, error) {
	switch actor.Role {
	case RoleClient:
		filter.ClientID = actor.ID
	case RoleSupplier:
		if !filter.Unclaimed {
			filter.SupplierID = actor.ID
		}
	}

	return s.orders.List(ctx, filter)
}

// Unclaimed returns orders no supplier has claimed yet.
func (s *Service) Unclaimed(ctx context.Context, limit, offset int) ([]domain.Order, error) {
	return s.orders.List(ctx, domain.OrderFilter{
		Unclaimed: true,
		Limit:     limit,
		Offset:    offset,
	})
}
