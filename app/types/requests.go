package types

import (
	"errors"
	"net/mail"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	defaultListLimit = int32(100)
	maxListLimit     = int32(500)
	maxOrderIDLength = 64
)

type CreateOrderRequest struct {
	Id            string `json:"id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	CustomerEmail string `json:"customer_email"`
}

func (r *CreateOrderRequest) GetId() string            { return r.Id }
func (r *CreateOrderRequest) GetAmount() int64         { return r.Amount }
func (r *CreateOrderRequest) GetCurrency() string      { return r.Currency }
func (r *CreateOrderRequest) GetCustomerEmail() string { return r.CustomerEmail }

func NewCreateOrderRequestFromContext(ctx echo.Context) (*CreateOrderRequest, error) {
	var body CreateOrderRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.Id = strings.TrimSpace(body.Id)
	body.Currency = strings.ToUpper(strings.TrimSpace(body.Currency))
	body.CustomerEmail = strings.TrimSpace(body.CustomerEmail)

	return &body, nil
}

func (r *CreateOrderRequest) Validate() error {
	if len(r.GetId()) > maxOrderIDLength {
		return errors.New("id must be at most 64 characters")
	}
	if r.GetAmount() <= 0 {
		return errors.New("amount must be > 0")
	}
	if !isCurrencyCode(r.GetCurrency()) {
		return errors.New("currency must be 3 letters")
	}
	if r.GetCustomerEmail() == "" {
		return errors.New("customer_email is required")
	}
	if _, err := mail.ParseAddress(r.GetCustomerEmail()); err != nil {
		return errors.New("customer_email is invalid")
	}
	return nil
}

// OrderRequest addresses a single order by the :orderId path parameter.
type OrderRequest struct {
	OrderId string `json:"order_id"`
}

func (r *OrderRequest) GetOrderId() string { return r.OrderId }

func NewOrderRequestFromContext(ctx echo.Context) (*OrderRequest, error) {
	return &OrderRequest{OrderId: strings.TrimSpace(ctx.Param("orderId"))}, nil
}

func (r *OrderRequest) Validate() error {
	if r.GetOrderId() == "" {
		return errors.New("order id is required")
	}
	if len(r.GetOrderId()) > maxOrderIDLength {
		return errors.New("invalid order id")
	}
	return nil
}

type PaymentRequest struct {
	PaymentId string `json:"payment_id"`
}

func (r *PaymentRequest) GetPaymentId() string { return r.PaymentId }

func NewPaymentRequestFromContext(ctx echo.Context) (*PaymentRequest, error) {
	return &PaymentRequest{PaymentId: strings.TrimSpace(ctx.Param("paymentId"))}, nil
}

func (r *PaymentRequest) Validate() error {
	if r.GetPaymentId() == "" {
		return errors.New("payment id is required")
	}
	if len(r.GetPaymentId()) > maxOrderIDLength {
		return errors.New("invalid payment id")
	}
	return nil
}

type ListOrdersRequest struct {
	Status string `json:"status"`
	Limit  int32  `json:"limit"`
	Offset int32  `json:"offset"`
}

func (r *ListOrdersRequest) GetStatus() string { return r.Status }
func (r *ListOrdersRequest) GetLimit() int32   { return r.Limit }
func (r *ListOrdersRequest) GetOffset() int32  { return r.Offset }

func NewListOrdersRequestFromContext(ctx echo.Context) (*ListOrdersRequest, error) {
	req := &ListOrdersRequest{
		Status: strings.ToLower(strings.TrimSpace(ctx.QueryParam("status"))),
		Limit:  defaultListLimit,
		Offset: 0,
	}

	if limitRaw := strings.TrimSpace(ctx.QueryParam("limit")); limitRaw != "" {
		limit, err := strconv.ParseInt(limitRaw, 10, 32)
		if err != nil {
			return nil, err
		}
		req.Limit = int32(limit)
	}

	if offsetRaw := strings.TrimSpace(ctx.QueryParam("offset")); offsetRaw != "" {
		offset, err := strconv.ParseInt(offsetRaw, 10, 32)
		if err != nil {
			return nil, err
		}
		req.Offset = int32(offset)
	}

	return req, nil
}

func (r *ListOrdersRequest) Validate() error {
	if r.Limit == 0 {
		r.Limit = defaultListLimit
	}
	if r.GetLimit() <= 0 || r.GetLimit() > maxListLimit {
		return errors.New("limit must be between 1 and 500")
	}
	if r.GetOffset() < 0 {
		return errors.New("offset must be >= 0")
	}
	switch r.GetStatus() {
	case "", "pending", "paid", "cancelled", "refunded":
	default:
		return errors.New("invalid status")
	}
	return nil
}

func isCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
