package service

import (
	"errors"
	"fmt"

	"github.com/vibast-solutions/ms-go-order-payments/app/entity"
)

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrOrderNotFound       = errors.New("order not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrOrderAlreadyExists  = errors.New("order already exists")
	ErrOrderAlreadyPaid    = errors.New("order already paid")
	ErrOrderNotPayable     = errors.New("order cannot be paid")
	ErrOrderNotCancellable = errors.New("order cannot be cancelled")
	ErrOrderNotRefundable  = errors.New("order cannot be refunded")
	ErrCurrencyUnsupported = errors.New("currency not supported")
	ErrGatewayFailed       = errors.New("payment gateway error")
	ErrConcurrentUpdate    = errors.New("order was updated concurrently")
)

const (
	defaultDeclineReason = "Payment declined"
	unknownFailureReason = "Unknown error"
)

// PaymentError is a business failure with a caller-facing message. Kind is
// one of the sentinel errors above and is what errors.Is matches against.
type PaymentError struct {
	Kind    error
	OrderID string
	Message string
}

func (e *PaymentError) Error() string {
	return e.Message
}

func (e *PaymentError) Unwrap() error {
	return e.Kind
}

func orderNotFoundError(orderID string) error {
	return &PaymentError{
		Kind:    ErrOrderNotFound,
		OrderID: orderID,
		Message: fmt.Sprintf("Order not found: %s", orderID),
	}
}

func paymentNotFoundError(paymentID string) error {
	return &PaymentError{
		Kind:    ErrPaymentNotFound,
		Message: fmt.Sprintf("Payment not found: %s", paymentID),
	}
}

func orderAlreadyPaidError(orderID string) error {
	return &PaymentError{
		Kind:    ErrOrderAlreadyPaid,
		OrderID: orderID,
		Message: fmt.Sprintf("Order %s has already been paid", orderID),
	}
}

func orderNotPayableError(orderID string, status entity.OrderStatus) error {
	return &PaymentError{
		Kind:    ErrOrderNotPayable,
		OrderID: orderID,
		Message: fmt.Sprintf("Order %s cannot be paid (status: %s)", orderID, status),
	}
}

func currencyUnsupportedError(orderID, currency, gatewayName string) error {
	return &PaymentError{
		Kind:    ErrCurrencyUnsupported,
		OrderID: orderID,
		Message: fmt.Sprintf("Currency %s is not supported by %s gateway", currency, gatewayName),
	}
}

func gatewayFailedError(orderID string, reason *string) error {
	text := defaultDeclineReason
	if reason != nil && *reason != "" {
		text = *reason
	}
	return &PaymentError{
		Kind:    ErrGatewayFailed,
		OrderID: orderID,
		Message: fmt.Sprintf("Payment gateway error: %s", text),
	}
}

func orderNotCancellableError(orderID string, status entity.OrderStatus) error {
	return &PaymentError{
		Kind:    ErrOrderNotCancellable,
		OrderID: orderID,
		Message: fmt.Sprintf("Order %s cannot be cancelled (status: %s)", orderID, status),
	}
}

func orderNotRefundableError(orderID string, status entity.OrderStatus) error {
	return &PaymentError{
		Kind:    ErrOrderNotRefundable,
		OrderID: orderID,
		Message: fmt.Sprintf("Order %s cannot be refunded (status: %s)", orderID, status),
	}
}

func concurrentUpdateError(orderID string, cause error) error {
	return fmt.Errorf("%w: order %s: %v", ErrConcurrentUpdate, orderID, cause)
}
