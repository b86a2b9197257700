package enums

import "fmt"

// OrderStatus is the fulfilment label of an order. Any status may be assigned
// from any other; the ordering only drives progress rendering.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
)

var orderedOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	return s.Position() > 0
}

// Position returns the 1-based step of the status in the fulfilment sequence,
// or 0 for unknown values.
func (s OrderStatus) Position() int {
	for i, candidate := range orderedOrderStatuses {
		if candidate == s {
			return i + 1
		}
	}
	return 0
}

// OrderStatuses returns the statuses in fulfilment order.
func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(orderedOrderStatuses))
	copy(out, orderedOrderStatuses)
	return out
}

// ParseOrderStatus converts raw input into an OrderStatus. Matching is exact.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range orderedOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
