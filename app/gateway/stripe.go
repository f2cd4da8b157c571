package gateway

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/vibast-solutions/ms-go-order-payments/app/entity"
)

const StripeName = "stripe"

var defaultStripeCurrencies = []string{"USD", "EUR", "GBP", "CAD", "AUD"}

type StripeConfig struct {
	SupportedCurrencies []string
	// DeclineAboveAmount simulates a card limit. Zero disables it.
	DeclineAboveAmount int64
}

// StripeGateway simulates card charges; no network calls are made.
type StripeGateway struct {
	currencies         map[string]struct{}
	declineAboveAmount int64
}

func NewStripeGateway(cfg StripeConfig) *StripeGateway {
	codes := cfg.SupportedCurrencies
	if len(codes) == 0 {
		codes = defaultStripeCurrencies
	}
	currencies := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			currencies[code] = struct{}{}
		}
	}

	return &StripeGateway{
		currencies:         currencies,
		declineAboveAmount: cfg.DeclineAboveAmount,
	}
}

func (g *StripeGateway) Name() string {
	return StripeName
}

func (g *StripeGateway) SupportsCurrency(currency string) bool {
	_, ok := g.currencies[strings.ToUpper(strings.TrimSpace(currency))]
	return ok
}

func (g *StripeGateway) Charge(ctx context.Context, order *entity.Order) (*ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	transactionID := newChargeID()
	if g.declineAboveAmount > 0 && order.Amount() > g.declineAboveAmount {
		return Declined(transactionID, "Card declined: amount exceeds card limit"), nil
	}
	return Succeeded(transactionID), nil
}

func newChargeID() string {
	return "ch_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}
