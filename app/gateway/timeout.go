package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-order-payments/app/entity"
)

type timeoutGateway struct {
	Gateway
	timeout time.Duration
}

// WithChargeTimeout bounds every Charge call. A non-positive timeout returns g unchanged.
func WithChargeTimeout(g Gateway, timeout time.Duration) Gateway {
	if timeout <= 0 {
		return g
	}
	return &timeoutGateway{Gateway: g, timeout: timeout}
}

func (g *timeoutGateway) Charge(ctx context.Context, order *entity.Order) (*ChargeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type outcome struct {
		result *ChargeResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := g.Gateway.Charge(ctx, order)
		done <- outcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		return out.result, out.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%s charge for order %s: %w", g.Name(), order.ID(), ctx.Err())
	}
}
