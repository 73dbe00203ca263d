package ordermodels

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	StatusNew       OrderStatus = "new"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus is orthogonal to OrderStatus. It never forces an order-status
// transition by itself; downstream fulfillment gates on it.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// statusGraph enumerates the adjacent next states per status:
// new → confirmed → shipped → delivered, with cancelled reachable from any
// non-terminal state. Transitions are strictly one step at a time; skipping a
// fulfillment stage is rejected.
var statusGraph = map[OrderStatus][]OrderStatus{
	StatusNew:       {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered, StatusCancelled},
	StatusDelivered: {},
	StatusCancelled: {},
}

// IsValid reports whether s is a known status.
func (s OrderStatus) IsValid() bool {
	_, ok := statusGraph[s]
	return ok
}

// IsTerminal reports whether no further transitions exist from s.
func (s OrderStatus) IsTerminal() bool {
	next, ok := statusGraph[s]
	return ok && len(next) == 0
}

// CanTransitionTo reports whether target is reachable from s in one step.
// A no-op transition to the same status is allowed.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if !target.IsValid() {
		return false
	}
	if s == target {
		return true
	}
	for _, next := range statusGraph[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsValid reports whether p is a known payment status.
func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}

// CanTransitionTo enforces pending → paid | failed. Same-status writes are
// allowed.
func (p PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	if !target.IsValid() {
		return false
	}
	if p == target {
		return true
	}
	return p == PaymentPending || p == ""
}
