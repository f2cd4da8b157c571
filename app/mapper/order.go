package mapper

import (
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-order-payments/app/entity"
	"github.com/vibast-solutions/ms-go-order-payments/app/types"
)

func OrderToView(item *entity.Order) *types.Order {
	if item == nil {
		return nil
	}

	return &types.Order{
		Id:            item.ID(),
		Amount:        item.Amount(),
		Currency:      item.Currency(),
		CustomerEmail: item.CustomerEmail(),
		Status:        item.Status().String(),
		PaidAt:        formatOptionalTime(item.PaidAt()),
		CreatedAt:     formatTime(item.CreatedAt()),
	}
}

func OrdersToView(items []*entity.Order) []*types.Order {
	result := make([]*types.Order, 0, len(items))
	for _, item := range items {
		result = append(result, OrderToView(item))
	}
	return result
}

// OrderFromView rebuilds an order from its wire form. Timestamps are read as UTC.
func OrderFromView(view *types.Order) (*entity.Order, error) {
	if view == nil {
		return nil, fmt.Errorf("%w: nil order", entity.ErrInvalidState)
	}

	status, err := entity.ParseOrderStatus(view.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidState, err)
	}
	createdAt, err := parseTime(view.CreatedAt)
	if err != nil {
		return nil, err
	}
	paidAt, err := parseOptionalTime(view.PaidAt)
	if err != nil {
		return nil, err
	}

	return entity.RestoreOrder(entity.OrderState{
		ID:            view.Id,
		Amount:        view.Amount,
		Currency:      view.Currency,
		CustomerEmail: view.CustomerEmail,
		Status:        status,
		PaidAt:        paidAt,
		CreatedAt:     createdAt,
	})
}

func formatTime(t time.Time) string {
	return t.UTC().Format(types.TimestampLayout)
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(types.TimestampLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad timestamp %q", entity.ErrInvalidState, raw)
	}
	return t, nil
}

func parseOptionalTime(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := parseTime(*raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
