package entity

import (
	"fmt"
	"strings"
	"time"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	switch status := PaymentStatus(strings.ToLower(strings.TrimSpace(raw))); status {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return status, nil
	default:
		return "", fmt.Errorf("unknown payment status %q", raw)
	}
}

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) IsSuccessful() bool {
	return s == PaymentStatusCompleted
}

// Payment is the record of a single charge attempt. It has no setters.
type Payment struct {
	id                   string
	orderID              string
	amount               int64
	currency             string
	status               PaymentStatus
	gatewayTransactionID string
	gatewayName          string
	createdAt            time.Time
	failureReason        *string
}

type PaymentState struct {
	ID                   string
	OrderID              string
	Amount               int64
	Currency             string
	Status               PaymentStatus
	GatewayTransactionID string
	GatewayName          string
	CreatedAt            time.Time
	FailureReason        *string
}

func NewCompletedPayment(id, orderID string, amount int64, currency, transactionID, gatewayName string, createdAt time.Time) (*Payment, error) {
	return RestorePayment(PaymentState{
		ID:                   id,
		OrderID:              orderID,
		Amount:               amount,
		Currency:             currency,
		Status:               PaymentStatusCompleted,
		GatewayTransactionID: transactionID,
		GatewayName:          gatewayName,
		CreatedAt:            createdAt,
	})
}

func NewFailedPayment(id, orderID string, amount int64, currency, transactionID, gatewayName, reason string, createdAt time.Time) (*Payment, error) {
	return RestorePayment(PaymentState{
		ID:                   id,
		OrderID:              orderID,
		Amount:               amount,
		Currency:             currency,
		Status:               PaymentStatusFailed,
		GatewayTransactionID: transactionID,
		GatewayName:          gatewayName,
		CreatedAt:            createdAt,
		FailureReason:        &reason,
	})
}

// RestorePayment validates state and builds a payment from it.
func RestorePayment(state PaymentState) (*Payment, error) {
	if state.Amount <= 0 {
		return nil, fmt.Errorf("payment %s: %w", state.ID, ErrInvalidAmount)
	}
	if _, err := ParsePaymentStatus(string(state.Status)); err != nil {
		return nil, fmt.Errorf("payment %s: %w: %v", state.ID, ErrInvalidState, err)
	}
	if (state.FailureReason != nil) != (state.Status == PaymentStatusFailed) {
		return nil, fmt.Errorf("payment %s: %w: failure_reason does not match status %s", state.ID, ErrInvalidState, state.Status)
	}

	payment := &Payment{
		id:                   state.ID,
		orderID:              state.OrderID,
		amount:               state.Amount,
		currency:             strings.ToUpper(strings.TrimSpace(state.Currency)),
		status:               state.Status,
		gatewayTransactionID: state.GatewayTransactionID,
		gatewayName:          state.GatewayName,
		createdAt:            state.CreatedAt,
	}
	if state.FailureReason != nil {
		reason := *state.FailureReason
		payment.failureReason = &reason
	}
	return payment, nil
}

func (p *Payment) ID() string                   { return p.id }
func (p *Payment) OrderID() string              { return p.orderID }
func (p *Payment) Amount() int64                { return p.amount }
func (p *Payment) Currency() string             { return p.currency }
func (p *Payment) Status() PaymentStatus        { return p.status }
func (p *Payment) GatewayTransactionID() string { return p.gatewayTransactionID }
func (p *Payment) GatewayName() string          { return p.gatewayName }
func (p *Payment) CreatedAt() time.Time         { return p.createdAt }
func (p *Payment) IsSuccessful() bool           { return p.status.IsSuccessful() }

func (p *Payment) FailureReason() *string {
	if p.failureReason == nil {
		return nil
	}
	reason := *p.failureReason
	return &reason
}

func (p *Payment) State() PaymentState {
	return PaymentState{
		ID:                   p.id,
		OrderID:              p.orderID,
		Amount:               p.amount,
		Currency:             p.currency,
		Status:               p.status,
		GatewayTransactionID: p.gatewayTransactionID,
		GatewayName:          p.gatewayName,
		CreatedAt:            p.createdAt,
		FailureReason:        p.FailureReason(),
	}
}
