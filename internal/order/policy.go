package order

import "github.com/supplypulse/backend/internal/domain"

// Actor is a verified caller identity supplied by the auth layer.
type Actor struct {
	ID   string
	Role string
}

// Known roles.
const (
	RoleClient   = "client"
	RoleSupplier = "supplier"
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

// RolePolicy decides whether a role may set a given order status.
type RolePolicy interface {
	CanSetStatus(role string, status domain.OrderStatus) bool
}

type defaultPolicy struct {
	allowed map[string]map[domain.OrderStatus]bool
}

// DefaultPolicy returns the standard role to allowed-status table. Clients
// can cancel and acknowledge receipt, suppliers move fulfilment forward,
// employees manage everything up to delivery, managers additionally cancel,
// admins have no restriction.
func DefaultPolicy() RolePolicy {
	statuses := func(list ...domain.OrderStatus) map[domain.OrderStatus]bool {
		m := make(map[domain.OrderStatus]bool, len(list))
		for _, s := range list {
			m[s] = true
		}
		return m
	}

	return &defaultPolicy{allowed: map[string]map[domain.OrderStatus]bool{
		RoleClient:   statuses(domain.StatusCancelled, domain.StatusReceived),
		RoleSupplier: statuses(domain.StatusProcessing, domain.StatusShipped),
		RoleEmployee: statuses(domain.StatusConfirmed, domain.StatusProcessing,
			domain.StatusShipped, domain.StatusInTransit, domain.StatusDelivered),
		RoleManager: statuses(domain.StatusConfirmed, domain.StatusProcessing,
			domain.StatusShipped, domain.StatusInTransit, domain.StatusDelivered,
			domain.StatusCancelled),
	}}
}

func (p *defaultPolicy) CanSetStatus(role string, status domain.OrderStatus) bool {
	if role == RoleAdmin {
		return true
	}

	return p.allowed[role][status]
}
