package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInvalidTransition is returned by the status transition methods
	// (MarkAsPaid, Cancel, MarkAsRefunded) when the current status does not allow the move.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInvalidState rejects inconsistent stored or decoded data when an order
	// or payment is restored. Transitions never return it.
	ErrInvalidState = errors.New("invalid persisted state")
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

func ParseOrderStatus(raw string) (OrderStatus, error) {
	switch status := OrderStatus(strings.ToLower(strings.TrimSpace(raw))); status {
	case OrderStatusPending, OrderStatusPaid, OrderStatusCancelled, OrderStatusRefunded:
		return status, nil
	default:
		return "", fmt.Errorf("unknown order status %q", raw)
	}
}

func (s OrderStatus) String() string {
	return string(s)
}

func (s OrderStatus) IsPaid() bool {
	return s == OrderStatusPaid
}

func (s OrderStatus) CanBePaid() bool {
	return s == OrderStatusPending
}

func (s OrderStatus) CanBeRefunded() bool {
	return s == OrderStatusPaid
}

// Order is mutated only through its transition methods. The status it was
// last loaded or saved with is kept so stores can write conditionally.
type Order struct {
	id            string
	amount        int64
	currency      string
	customerEmail string
	status        OrderStatus
	paidAt        *time.Time
	createdAt     time.Time

	storedStatus OrderStatus
}

// OrderState is the full persisted form of an order.
type OrderState struct {
	ID            string
	Amount        int64
	Currency      string
	CustomerEmail string
	Status        OrderStatus
	PaidAt        *time.Time
	CreatedAt     time.Time
}

func NewOrder(id string, amount int64, currency, customerEmail string, createdAt time.Time) (*Order, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("order %s: %w", id, ErrInvalidAmount)
	}
	return &Order{
		id:            id,
		amount:        amount,
		currency:      strings.ToUpper(strings.TrimSpace(currency)),
		customerEmail: customerEmail,
		status:        OrderStatusPending,
		createdAt:     createdAt,
	}, nil
}

// RestoreOrder rebuilds an order from storage. The result counts as already
// persisted with state.Status.
func RestoreOrder(state OrderState) (*Order, error) {
	if state.Amount <= 0 {
		return nil, fmt.Errorf("order %s: %w", state.ID, ErrInvalidAmount)
	}
	if _, err := ParseOrderStatus(string(state.Status)); err != nil {
		return nil, fmt.Errorf("order %s: %w: %v", state.ID, ErrInvalidState, err)
	}
	if (state.PaidAt != nil) != state.Status.IsPaid() {
		return nil, fmt.Errorf("order %s: %w: paid_at does not match status %s", state.ID, ErrInvalidState, state.Status)
	}

	order := &Order{
		id:            state.ID,
		amount:        state.Amount,
		currency:      strings.ToUpper(strings.TrimSpace(state.Currency)),
		customerEmail: state.CustomerEmail,
		status:        state.Status,
		createdAt:     state.CreatedAt,
		storedStatus:  state.Status,
	}
	if state.PaidAt != nil {
		paidAt := *state.PaidAt
		order.paidAt = &paidAt
	}
	return order, nil
}

func (o *Order) ID() string            { return o.id }
func (o *Order) Amount() int64         { return o.amount }
func (o *Order) Currency() string      { return o.currency }
func (o *Order) CustomerEmail() string { return o.customerEmail }
func (o *Order) Status() OrderStatus   { return o.status }
func (o *Order) CreatedAt() time.Time  { return o.createdAt }

func (o *Order) PaidAt() *time.Time {
	if o.paidAt == nil {
		return nil
	}
	paidAt := *o.paidAt
	return &paidAt
}

func (o *Order) MarkAsPaid(paidAt time.Time) error {
	if !o.status.CanBePaid() {
		return fmt.Errorf("%w: cannot pay order with status: %s", ErrInvalidTransition, o.status)
	}
	o.status = OrderStatusPaid
	o.paidAt = &paidAt
	return nil
}

func (o *Order) Cancel() error {
	if o.status != OrderStatusPending {
		return fmt.Errorf("%w: cannot cancel order with status: %s", ErrInvalidTransition, o.status)
	}
	o.status = OrderStatusCancelled
	return nil
}

func (o *Order) MarkAsRefunded() error {
	if !o.status.CanBeRefunded() {
		return fmt.Errorf("%w: cannot refund order with status: %s", ErrInvalidTransition, o.status)
	}
	o.status = OrderStatusRefunded
	o.paidAt = nil
	return nil
}

// StoredStatus reports the status last written to or read from storage.
// ok is false for an order that has never been persisted.
func (o *Order) StoredStatus() (status OrderStatus, ok bool) {
	return o.storedStatus, o.storedStatus != ""
}

// MarkStored is called by stores after a successful write.
func (o *Order) MarkStored() {
	o.storedStatus = o.status
}

// State returns a detached copy of the order's persisted form.
func (o *Order) State() OrderState {
	return OrderState{
		ID:            o.id,
		Amount:        o.amount,
		Currency:      o.currency,
		CustomerEmail: o.customerEmail,
		Status:        o.status,
		PaidAt:        o.PaidAt(),
		CreatedAt:     o.createdAt,
	}
}

// Snapshot returns an independent copy of the order.
func (o *Order) Snapshot() *Order {
	clone := *o
	clone.paidAt = o.PaidAt()
	return &clone
}
