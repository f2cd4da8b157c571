package service

import (
	"context"
	"errors"
	"testing"

	"github.com/vibast-solutions/ms-go-order-payments/app/entity"
	"github.com/vibast-solutions/ms-go-order-payments/app/gateway"
	"github.com/vibast-solutions/ms-go-order-payments/config"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTracedPaymentFixture() (*paymentFixture, *tracetest.SpanRecorder) {
	f := newPaymentFixture()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	f.svc = NewPaymentService(
		f.orders,
		f.payments,
		f.events,
		f.gateway,
		&sequenceIDs{},
		config.OrdersConfig{JobBatchSize: 10},
		WithPublisher(f.publisher),
		WithMetrics(f.metrics),
		WithTracer(provider.Tracer("payment-service-test")),
	)
	return f, recorder
}

func endedSpan(t *testing.T, recorder *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, span := range recorder.Ended() {
		if span.Name() == name {
			return span
		}
	}
	t.Fatalf("span %s not recorded", name)
	return nil
}

func spanAttribute(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestProcessPaymentTracesSuccess(t *testing.T) {
	f, recorder := newTracedPaymentFixture()
	f.seed(t, "o1", 5000, "USD", entity.OrderStatusPending)

	if _, err := f.svc.ProcessPayment(context.Background(), "o1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := len(recorder.Ended()); got != 2 {
		t.Fatalf("expected two spans, got %d", got)
	}
	root := endedSpan(t, recorder, "PaymentService.ProcessPayment")
	charge := endedSpan(t, recorder, "Gateway.Charge")

	if v, ok := spanAttribute(root, "order.id"); !ok || v.AsString() != "o1" {
		t.Fatalf("expected order.id=o1, got %v", v)
	}
	if v, ok := spanAttribute(root, "payment.gateway"); !ok || v.AsString() != "stripe" {
		t.Fatalf("expected payment.gateway=stripe, got %v", v)
	}
	if v, ok := spanAttribute(root, "payment.id"); !ok || v.AsString() != "pay-1" {
		t.Fatalf("expected payment.id=pay-1, got %v", v)
	}
	if root.Status().Code != otelcodes.Unset {
		t.Fatalf("expected unset status, got %v", root.Status())
	}

	if charge.Parent().SpanID() != root.SpanContext().SpanID() {
		t.Fatal("expected charge span to be a child of the payment span")
	}
	if v, ok := spanAttribute(charge, "order.amount"); !ok || v.AsInt64() != 5000 {
		t.Fatalf("expected order.amount=5000, got %v", v)
	}
	if v, ok := spanAttribute(charge, "charge.successful"); !ok || !v.AsBool() {
		t.Fatalf("expected charge.successful=true, got %v", v)
	}
}

func TestProcessPaymentTracesDeclineAsError(t *testing.T) {
	f, recorder := newTracedPaymentFixture()
	f.seed(t, "o1", 5000, "USD", entity.OrderStatusPending)
	f.gateway.chargeFn = func(*entity.Order) (*gateway.ChargeResult, error) {
		return gateway.Declined("", "Card declined"), nil
	}

	_, err := f.svc.ProcessPayment(context.Background(), "o1")
	if !errors.Is(err, ErrGatewayFailed) {
		t.Fatalf("expected ErrGatewayFailed, got %v", err)
	}

	root := endedSpan(t, recorder, "PaymentService.ProcessPayment")
	if status := root.Status(); status.Code != otelcodes.Error || status.Description != err.Error() {
		t.Fatalf("unexpected status: %+v", status)
	}
	charge := endedSpan(t, recorder, "Gateway.Charge")
	if v, ok := spanAttribute(charge, "charge.successful"); !ok || v.AsBool() {
		t.Fatalf("expected charge.successful=false, got %v", v)
	}
}

func TestProcessPaymentTracesRejectionWithoutError(t *testing.T) {
	f, recorder := newTracedPaymentFixture()
	f.seed(t, "o1", 5000, "USD", entity.OrderStatusPaid)

	if _, err := f.svc.ProcessPayment(context.Background(), "o1"); !errors.Is(err, ErrOrderAlreadyPaid) {
		t.Fatalf("expected ErrOrderAlreadyPaid, got %v", err)
	}

	if got := len(recorder.Ended()); got != 1 {
		t.Fatalf("expected only the payment span, got %d", got)
	}
	root := endedSpan(t, recorder, "PaymentService.ProcessPayment")
	if v, ok := spanAttribute(root, "payment.rejection"); !ok || v.AsString() != ErrOrderAlreadyPaid.Error() {
		t.Fatalf("expected payment.rejection attribute, got %v", v)
	}
	if root.Status().Code == otelcodes.Error {
		t.Fatal("business rejections must not mark the span as failed")
	}
}

func TestProcessPaymentTracesTransportError(t *testing.T) {
	f, recorder := newTracedPaymentFixture()
	f.seed(t, "o1", 5000, "USD", entity.OrderStatusPending)
	f.gateway.chargeFn = func(*entity.Order) (*gateway.ChargeResult, error) {
		return nil, errors.New("connection reset")
	}

	if _, err := f.svc.ProcessPayment(context.Background(), "o1"); err == nil {
		t.Fatal("expected error")
	}

	for _, name := range []string{"PaymentService.ProcessPayment", "Gateway.Charge"} {
		span := endedSpan(t, recorder, name)
		if span.Status().Code != otelcodes.Error {
			t.Fatalf("expected %s to be marked failed, got %+v", name, span.Status())
		}
		if len(span.Events()) == 0 || span.Events()[0].Name != "exception" {
			t.Fatalf("expected %s to record the error, got %v", name, span.Events())
		}
	}
}
