package types

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestNewCreateOrderRequestFromContextNormalizes(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest("POST", "/orders", bytes.NewBufferString(`{"id":" o-1 ","amount":5000,"currency":" usd ","customer_email":" a@example.com "}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	parsed, err := NewCreateOrderRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if parsed.GetId() != "o-1" || parsed.GetCurrency() != "USD" || parsed.GetCustomerEmail() != "a@example.com" {
		t.Fatalf("unexpected parsed request: %+v", parsed)
	}
	if err := parsed.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestCreateOrderValidate(t *testing.T) {
	cases := []struct {
		name string
		req  CreateOrderRequest
	}{
		{"zero amount", CreateOrderRequest{Amount: 0, Currency: "USD", CustomerEmail: "a@example.com"}},
		{"short currency", CreateOrderRequest{Amount: 1, Currency: "US", CustomerEmail: "a@example.com"}},
		{"lowercase currency", CreateOrderRequest{Amount: 1, Currency: "usd", CustomerEmail: "a@example.com"}},
		{"missing email", CreateOrderRequest{Amount: 1, Currency: "USD"}},
		{"bad email", CreateOrderRequest{Amount: 1, Currency: "USD", CustomerEmail: "not-an-email"}},
	}
	for _, tc := range cases {
		if err := tc.req.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestNewOrderRequestFromContext(t *testing.T) {
	e := echo.New()
	ctx := e.NewContext(httptest.NewRequest("POST", "/orders/o1/pay", nil), httptest.NewRecorder())
	ctx.SetParamNames("orderId")
	ctx.SetParamValues(" o1 ")

	parsed, err := NewOrderRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if parsed.GetOrderId() != "o1" {
		t.Fatalf("unexpected order id: %q", parsed.GetOrderId())
	}
	if err := parsed.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	if err := (&OrderRequest{}).Validate(); err == nil {
		t.Fatal("expected error for empty order id")
	}
}

func TestNewListOrdersRequestFromContextAndValidate(t *testing.T) {
	e := echo.New()
	ctx := e.NewContext(httptest.NewRequest("GET", "/orders?status=PAID&limit=20&offset=3", nil), httptest.NewRecorder())

	parsed, err := NewListOrdersRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if parsed.GetStatus() != "paid" || parsed.GetLimit() != 20 || parsed.GetOffset() != 3 {
		t.Fatalf("unexpected parsed request: %+v", parsed)
	}
	if err := parsed.Validate(); err != nil {
		t.Fatalf("expected valid list request, got %v", err)
	}

	if err := (&ListOrdersRequest{Status: "shipped"}).Validate(); err == nil {
		t.Fatal("expected invalid status error")
	}
	if err := (&ListOrdersRequest{Limit: 501}).Validate(); err == nil {
		t.Fatal("expected limit error")
	}
}

func TestNewListOrdersRequestRejectsBadLimit(t *testing.T) {
	e := echo.New()
	ctx := e.NewContext(httptest.NewRequest("GET", "/orders?limit=abc", nil), httptest.NewRecorder())
	if _, err := NewListOrdersRequestFromContext(ctx); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestListOrdersValidateDefaultLimit(t *testing.T) {
	req := &ListOrdersRequest{}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected zero-values request to apply default limit, got %v", err)
	}
	if req.GetLimit() != 100 {
		t.Fatalf("expected default limit 100, got %d", req.GetLimit())
	}
}

func TestErrorResponseShape(t *testing.T) {
	body, err := json.Marshal(NewErrorResponse("Order not found: o9"))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(body) != `{"success":false,"error":"Order not found: o9"}` {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestOrderViewKeepsNullPaidAt(t *testing.T) {
	body, _ := json.Marshal(&Order{Id: "o1", Status: "pending"})
	var decoded map[string]interface{}
	_ = json.Unmarshal(body, &decoded)
	if v, ok := decoded["paid_at"]; !ok || v != nil {
		t.Fatalf("expected explicit null paid_at, got %v (present=%v)", v, ok)
	}
}
