package entity

import "time"

const (
	OrderEventPaid      = "order_paid"
	OrderEventCancelled = "order_cancelled"
	OrderEventRefunded  = "order_refunded"
)

type OrderEvent struct {
	ID uint64

	OrderID   string
	EventType string

	OldStatus OrderStatus
	NewStatus OrderStatus

	PaymentID *string

	CreatedAt time.Time
}
