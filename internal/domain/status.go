package domain

import "strings"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusCreated    OrderStatus = "created"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusInTransit  OrderStatus = "in_transit"
	StatusDelivered  OrderStatus = "delivered"
	StatusReceived   OrderStatus = "received"
	StatusCancelled  OrderStatus = "cancelled"
	StatusReturned   OrderStatus = "returned"
)

var statusLabels = map[OrderStatus]string{
	StatusCreated:    "Created",
	StatusConfirmed:  "Confirmed",
	StatusProcessing: "Processing",
	StatusShipped:    "Shipped",
	StatusInTransit:  "In Transit",
	StatusDelivered:  "Delivered",
	StatusReceived:   "Received",
	StatusCancelled:  "Cancelled",
	StatusReturned:   "Returned",
}

var statusCodes = map[string]OrderStatus{
	"created":    StatusCreated,
	"confirmed":  StatusConfirmed,
	"processing": StatusProcessing,
	"shipped":    StatusShipped,
	"in_transit": StatusInTransit,
	"delivered":  StatusDelivered,
	"received":   StatusReceived,
	"cancelled":  StatusCancelled,
	"returned":   StatusReturned,
}

// legalEdges holds the forward edges of the lifecycle graph. Cancellation is
// reachable from every non-terminal status and from delivered; returned only
// from delivered.
var legalEdges = map[OrderStatus][]OrderStatus{
	StatusCreated:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusInTransit, StatusDelivered, StatusCancelled},
	StatusInTransit:  {StatusDelivered, StatusCancelled},
	StatusDelivered:  {StatusReceived, StatusReturned, StatusCancelled},
}

var terminalStatuses = map[OrderStatus]bool{
	StatusReceived:  true,
	StatusCancelled: true,
	StatusReturned:  true,
}

// StatusLabel returns a human-readable label for an order status.
func StatusLabel(status OrderStatus) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}

	return "Unknown"
}

// ParseStatus returns the status for a given label or code (case-insensitive).
func ParseStatus(s string) (OrderStatus, bool) {
	status, ok := statusCodes[strings.ToLower(strings.TrimSpace(s))]

	return status, ok
}

// IsTerminal reports whether no further transitions are allowed from status.
func IsTerminal(status OrderStatus) bool {
	return terminalStatuses[status]
}

// CanTransition reports whether from -> to is a legal lifecycle edge.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range legalEdges[from] {
		if next == to {
			return true
		}
	}

	return false
}

// AllStatuses returns every known status in lifecycle order.
func AllStatuses() []OrderStatus {
	return []OrderStatus{
		StatusCreated, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusInTransit, StatusDelivered, StatusReceived, StatusCancelled,
		StatusReturned,
	}
}
