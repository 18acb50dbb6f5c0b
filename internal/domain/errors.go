package domain

import "fmt"

// ValidationError reports missing or malformed caller input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}

	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// InsufficientStockError reports a requested quantity exceeding available stock.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// InvalidTransitionError reports a status change that is not a legal state edge
// or is not permitted for the actor's role.
type InvalidTransitionError struct {
	From   OrderStatus
	To     OrderStatus
	Role   string
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	if e.Role != "" {
		return fmt.Sprintf("transition %s -> %s not permitted for role %s", e.From, e.To, e.Role)
	}
	if e.Reason != "" {
		return fmt.Sprintf("invalid transition %s -> %s: %s", e.From, e.To, e.Reason)
	}

	return fmt.Sprintf("invalid transition %s -> %s", e.From, e.To)
}

// ConflictError reports a claim against an order already assigned elsewhere.
type ConflictError struct {
	OrderID string
	Reason  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on order %s: %s", e.OrderID, e.Reason)
}

// ConsistencyError reports a multi-step operation that partially applied.
type ConsistencyError struct {
	Op     string
	Detail string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency failure during %s: %s", e.Op, e.Detail)
}
