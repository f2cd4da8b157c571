package mapper

import (
	"fmt"

	"github.com/vibast-solutions/ms-go-order-payments/app/entity"
	"github.com/vibast-solutions/ms-go-order-payments/app/types"
)

func PaymentToView(item *entity.Payment) *types.Payment {
	if item == nil {
		return nil
	}

	return &types.Payment{
		Id:                   item.ID(),
		OrderId:              item.OrderID(),
		Amount:               item.Amount(),
		Currency:             item.Currency(),
		Status:               item.Status().String(),
		GatewayTransactionId: item.GatewayTransactionID(),
		GatewayName:          item.GatewayName(),
		CreatedAt:            formatTime(item.CreatedAt()),
		FailureReason:        item.FailureReason(),
	}
}

func PaymentsToView(items []*entity.Payment) []*types.Payment {
	result := make([]*types.Payment, 0, len(items))
	for _, item := range items {
		result = append(result, PaymentToView(item))
	}
	return result
}

func PaymentFromView(view *types.Payment) (*entity.Payment, error) {
	if view == nil {
		return nil, fmt.Errorf("%w: nil payment", entity.ErrInvalidState)
	}

	status, err := entity.ParsePaymentStatus(view.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidState, err)
	}
	createdAt, err := parseTime(view.CreatedAt)
	if err != nil {
		return nil, err
	}

	var reason *string
	if view.FailureReason != nil {
		r := *view.FailureReason
		reason = &r
	}

	return entity.RestorePayment(entity.PaymentState{
		ID:                   view.Id,
		OrderID:              view.OrderId,
		Amount:               view.Amount,
		Currency:             view.Currency,
		Status:               status,
		GatewayTransactionID: view.GatewayTransactionId,
		GatewayName:          view.GatewayName,
		CreatedAt:            createdAt,
		FailureReason:        reason,
	})
}
