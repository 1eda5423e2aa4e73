package models

import "fmt"

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusPaid       OrderStatus = "paid"
	StatusShipped    OrderStatus = "shipped"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending      PaymentStatus = "pending"
	PaymentVerification PaymentStatus = "pending_verification"
	PaymentCompleted    PaymentStatus = "completed"
)

var validNext = map[OrderStatus]map[OrderStatus]bool{
	StatusPending:    {StatusProcessing: true, StatusPaid: true, StatusCancelled: true},
	StatusProcessing: {StatusPaid: true, StatusShipped: true, StatusCancelled: true},
	StatusPaid:       {StatusProcessing: true, StatusShipped: true, StatusCancelled: true},
	StatusShipped:    {StatusCompleted: true},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusPending, StatusProcessing, StatusPaid, StatusShipped, StatusCompleted, StatusCancelled:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// CanTransition reports whether an admin may move an order from one status
// to another. Writing the current status again is allowed and is a no-op;
// the quantities_reduced flag keeps replays from re-decrementing stock.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	return validNext[from][to]
}

// TriggersReduction reports whether a transition must decrement inventory.
// Edge-triggered: only entering paid/processing from a status that is
// neither counts.
func TriggersReduction(from, to OrderStatus) bool {
	if to != StatusPaid && to != StatusProcessing {
		return false
	}
	return from != StatusPaid && from != StatusProcessing
}
