package events

import (
	"context"
	"time"

	"github.com/vibast-solutions/ms-go-order-payments/app/entity"
)

const (
	envelopeVersion = 1

	PaymentCompleted = "payment.completed"
	PaymentFailed    = "payment.failed"
)

// Envelope is the message body published for every event; EventType doubles
// as the routing key.
type Envelope struct {
	Version   int         `json:"version"`
	EventType string      `json:"event_type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

type PaymentPayload struct {
	PaymentID            string  `json:"payment_id"`
	OrderID              string  `json:"order_id"`
	Amount               int64   `json:"amount"`
	Currency             string  `json:"currency"`
	Status               string  `json:"status"`
	GatewayName          string  `json:"gateway_name"`
	GatewayTransactionID string  `json:"gateway_transaction_id"`
	FailureReason        *string `json:"failure_reason,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, event Envelope) error
	Close() error
}

// NewPaymentEvent picks payment.completed or payment.failed from the payment status.
func NewPaymentEvent(payment *entity.Payment, now time.Time) Envelope {
	eventType := PaymentFailed
	if payment.IsSuccessful() {
		eventType = PaymentCompleted
	}

	return Envelope{
		Version:   envelopeVersion,
		EventType: eventType,
		Timestamp: now.UTC(),
		Payload: PaymentPayload{
			PaymentID:            payment.ID(),
			OrderID:              payment.OrderID(),
			Amount:               payment.Amount(),
			Currency:             payment.Currency(),
			Status:               payment.Status().String(),
			GatewayName:          payment.GatewayName(),
			GatewayTransactionID: payment.GatewayTransactionID(),
			FailureReason:        payment.FailureReason(),
		},
	}
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Envelope) error { return nil }
func (NopPublisher) Close() error                            { return nil }
