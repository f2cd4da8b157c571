package entity

import (
	"errors"
	"testing"
	"time"
)

func newPendingOrder(t *testing.T) *Order {
	t.Helper()
	order, err := NewOrder("order-1", 5000, "usd", "customer@example.com", time.Now().UTC())
	if err != nil {
		t.Fatalf("new order failed: %v", err)
	}
	return order
}

func TestNewOrderRejectsNonPositiveAmount(t *testing.T) {
	for _, amount := range []int64{0, -1, -5000} {
		if _, err := NewOrder("order-1", amount, "USD", "customer@example.com", time.Now()); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %d: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestNewOrderStartsPendingAndUnpersisted(t *testing.T) {
	order := newPendingOrder(t)

	if order.Status() != OrderStatusPending {
		t.Fatalf("expected pending status, got %s", order.Status())
	}
	if order.PaidAt() != nil {
		t.Fatal("expected nil paid_at for a new order")
	}
	if order.Currency() != "USD" {
		t.Fatalf("expected upper-cased currency, got %q", order.Currency())
	}
	if _, ok := order.StoredStatus(); ok {
		t.Fatal("expected new order to be unpersisted")
	}
}

func TestMarkAsPaidSetsPaidAt(t *testing.T) {
	order := newPendingOrder(t)
	paidAt := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	if err := order.MarkAsPaid(paidAt); err != nil {
		t.Fatalf("mark as paid failed: %v", err)
	}
	if !order.Status().IsPaid() {
		t.Fatalf("expected paid status, got %s", order.Status())
	}
	if order.PaidAt() == nil || !order.PaidAt().Equal(paidAt) {
		t.Fatalf("unexpected paid_at: %v", order.PaidAt())
	}
}

func TestMarkAsPaidTwiceFails(t *testing.T) {
	order := newPendingOrder(t)
	first := time.Now().UTC()
	if err := order.MarkAsPaid(first); err != nil {
		t.Fatalf("first mark as paid failed: %v", err)
	}

	err := order.MarkAsPaid(first.Add(time.Minute))
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if !order.PaidAt().Equal(first) {
		t.Fatal("expected paid_at to be set only once")
	}
}

func TestCancelOnlyFromPending(t *testing.T) {
	order := newPendingOrder(t)
	if err := order.Cancel(); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if order.Status() != OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", order.Status())
	}
	if err := order.Cancel(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on second cancel, got %v", err)
	}
	if err := order.MarkAsPaid(time.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected cancelled order to reject payment, got %v", err)
	}

	paid := newPendingOrder(t)
	_ = paid.MarkAsPaid(time.Now())
	if err := paid.Cancel(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected paid order to reject cancel, got %v", err)
	}
}

func TestRefundOnlyFromPaid(t *testing.T) {
	order := newPendingOrder(t)
	if err := order.MarkAsRefunded(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected pending order to reject refund, got %v", err)
	}

	if err := order.MarkAsPaid(time.Now()); err != nil {
		t.Fatalf("mark as paid failed: %v", err)
	}
	if err := order.MarkAsRefunded(); err != nil {
		t.Fatalf("refund failed: %v", err)
	}
	if order.Status() != OrderStatusRefunded {
		t.Fatalf("expected refunded, got %s", order.Status())
	}
	if order.PaidAt() != nil {
		t.Fatal("expected paid_at to be cleared once the order leaves paid")
	}
	if err := order.MarkAsPaid(time.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected refunded order to reject payment, got %v", err)
	}
}

func TestStatusPredicates(t *testing.T) {
	cases := []struct {
		status        OrderStatus
		isPaid        bool
		canBePaid     bool
		canBeRefunded bool
	}{
		{OrderStatusPending, false, true, false},
		{OrderStatusPaid, true, false, true},
		{OrderStatusCancelled, false, false, false},
		{OrderStatusRefunded, false, false, false},
	}
	for _, tc := range cases {
		if tc.status.IsPaid() != tc.isPaid || tc.status.CanBePaid() != tc.canBePaid || tc.status.CanBeRefunded() != tc.canBeRefunded {
			t.Fatalf("unexpected predicates for %s", tc.status)
		}
	}
}

func TestRestoreOrderKeepsPaidState(t *testing.T) {
	paidAt := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	order, err := RestoreOrder(OrderState{
		ID:            "order-paid",
		Amount:        1200,
		Currency:      "EUR",
		CustomerEmail: "paid@example.com",
		Status:        OrderStatusPaid,
		PaidAt:        &paidAt,
		CreatedAt:     paidAt.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if !order.Status().IsPaid() || !order.PaidAt().Equal(paidAt) {
		t.Fatalf("unexpected restored order: %+v", order.State())
	}
	stored, ok := order.StoredStatus()
	if !ok || stored != OrderStatusPaid {
		t.Fatalf("expected stored status paid, got %q ok=%v", stored, ok)
	}
}

func TestRestoreOrderRejectsInconsistentState(t *testing.T) {
	now := time.Now().UTC()
	cases := map[string]OrderState{
		"non-positive amount": {ID: "a", Amount: 0, Currency: "USD", Status: OrderStatusPending, CreatedAt: now},
		"unknown status":      {ID: "b", Amount: 10, Currency: "USD", Status: "shipped", CreatedAt: now},
		"paid without date":   {ID: "c", Amount: 10, Currency: "USD", Status: OrderStatusPaid, CreatedAt: now},
		"pending with date":   {ID: "d", Amount: 10, Currency: "USD", Status: OrderStatusPending, PaidAt: &now, CreatedAt: now},
	}
	for name, state := range cases {
		if _, err := RestoreOrder(state); err == nil {
			t.Fatalf("%s: expected restore error", name)
		}
	}
}

func TestMarkStoredTracksLastWrittenStatus(t *testing.T) {
	order := newPendingOrder(t)
	order.MarkStored()
	_ = order.MarkAsPaid(time.Now())

	stored, ok := order.StoredStatus()
	if !ok || stored != OrderStatusPending {
		t.Fatalf("expected stored status pending before save, got %q", stored)
	}

	order.MarkStored()
	if stored, _ := order.StoredStatus(); stored != OrderStatusPaid {
		t.Fatalf("expected stored status paid after save, got %q", stored)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	order := newPendingOrder(t)
	snapshot := order.Snapshot()
	_ = order.MarkAsPaid(time.Now())

	if snapshot.Status() != OrderStatusPending || snapshot.PaidAt() != nil {
		t.Fatalf("snapshot changed with the original: %+v", snapshot.State())
	}
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus(" Cancelled ")
	if err != nil || status != OrderStatusCancelled {
		t.Fatalf("unexpected parse result: %q %v", status, err)
	}
	if _, err := ParseOrderStatus("shipped"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestTransitionErrorsAreNotStateErrors(t *testing.T) {
	order := newPendingOrder(t)
	_ = order.Cancel()

	err := order.MarkAsPaid(time.Now())
	if !errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected only ErrInvalidTransition, got %v", err)
	}

	_, err = RestoreOrder(OrderState{ID: "o1", Amount: 1, Currency: "USD", Status: OrderStatusPaid})
	if !errors.Is(err, ErrInvalidState) || errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected only ErrInvalidState, got %v", err)
	}
}
