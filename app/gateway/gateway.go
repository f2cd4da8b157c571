package gateway

import (
	"context"

	"github.com/google/uuid"
	"github.com/vibast-solutions/ms-go-order-payments/app/entity"
)

type ChargeResult struct {
	Successful    bool
	TransactionID string
	FailureReason *string
}

func Succeeded(transactionID string) *ChargeResult {
	return &ChargeResult{Successful: true, TransactionID: transactionID}
}

func Declined(transactionID, reason string) *ChargeResult {
	return &ChargeResult{TransactionID: transactionID, FailureReason: &reason}
}

// Gateway executes charges. A declined charge is a result, not an error;
// errors mean the outcome of the call is unknown.
type Gateway interface {
	Name() string
	SupportsCurrency(currency string) bool
	Charge(ctx context.Context, order *entity.Order) (*ChargeResult, error)
}

type IDGenerator interface {
	Generate() string
}

type UUIDGenerator struct{}

func NewUUIDGenerator() UUIDGenerator {
	return UUIDGenerator{}
}

func (UUIDGenerator) Generate() string {
	return uuid.NewString()
}
