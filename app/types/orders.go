package types

// TimestampLayout is the wire format of every timestamp field.
const TimestampLayout = "2006-01-02 15:04:05"

type Order struct {
	Id            string  `json:"id"`
	Amount        int64   `json:"amount"`
	Currency      string  `json:"currency"`
	CustomerEmail string  `json:"customer_email"`
	Status        string  `json:"status"`
	PaidAt        *string `json:"paid_at"`
	CreatedAt     string  `json:"created_at"`
}

func (o *Order) GetId() string {
	if o == nil {
		return ""
	}
	return o.Id
}

func (o *Order) GetStatus() string {
	if o == nil {
		return ""
	}
	return o.Status
}

type Payment struct {
	Id                   string  `json:"id"`
	OrderId              string  `json:"order_id"`
	Amount               int64   `json:"amount"`
	Currency             string  `json:"currency"`
	Status               string  `json:"status"`
	GatewayTransactionId string  `json:"gateway_transaction_id"`
	GatewayName          string  `json:"gateway_name"`
	CreatedAt            string  `json:"created_at"`
	FailureReason        *string `json:"failure_reason"`
}

func (p *Payment) GetId() string {
	if p == nil {
		return ""
	}
	return p.Id
}

func (p *Payment) GetStatus() string {
	if p == nil {
		return ""
	}
	return p.Status
}

type ProcessPaymentResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Order   *Order   `json:"order"`
	Payment *Payment `json:"payment"`
}

type OrderEnvelopeResponse struct {
	Success bool   `json:"success"`
	Order   *Order `json:"order"`
}

type PaymentEnvelopeResponse struct {
	Success bool     `json:"success"`
	Payment *Payment `json:"payment"`
}

type ListOrdersResponse struct {
	Success bool     `json:"success"`
	Orders  []*Order `json:"orders"`
}

type ListPaymentsResponse struct {
	Success  bool       `json:"success"`
	Payments []*Payment `json:"payments"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{Success: false, Error: message}
}

type HealthResponse struct {
	Status string `json:"status"`
}
