package entity

import (
	"errors"
	"testing"
	"time"
)

func TestNewCompletedPayment(t *testing.T) {
	createdAt := time.Now().UTC()
	payment, err := NewCompletedPayment("pay-1", "order-1", 5000, "usd", "ch_123", "stripe", createdAt)
	if err != nil {
		t.Fatalf("new completed payment failed: %v", err)
	}

	if payment.Status() != PaymentStatusCompleted || !payment.IsSuccessful() {
		t.Fatalf("expected completed payment, got %s", payment.Status())
	}
	if payment.FailureReason() != nil {
		t.Fatal("expected no failure reason on completed payment")
	}
	if payment.Currency() != "USD" || payment.Amount() != 5000 || payment.OrderID() != "order-1" {
		t.Fatalf("unexpected payment: %+v", payment.State())
	}
}

func TestNewFailedPaymentCarriesReason(t *testing.T) {
	payment, err := NewFailedPayment("pay-2", "order-1", 5000, "USD", "ch_456", "stripe", "Card declined", time.Now())
	if err != nil {
		t.Fatalf("new failed payment failed: %v", err)
	}
	if payment.IsSuccessful() {
		t.Fatal("expected failed payment to be unsuccessful")
	}
	if reason := payment.FailureReason(); reason == nil || *reason != "Card declined" {
		t.Fatalf("unexpected failure reason: %v", reason)
	}
}

func TestPaymentRejectsNonPositiveAmount(t *testing.T) {
	if _, err := NewCompletedPayment("pay-1", "order-1", 0, "USD", "ch_1", "stripe", time.Now()); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := NewFailedPayment("pay-1", "order-1", -10, "USD", "ch_1", "stripe", "x", time.Now()); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestRestorePaymentFailureReasonMatchesStatus(t *testing.T) {
	reason := "boom"
	if _, err := RestorePayment(PaymentState{ID: "p", OrderID: "o", Amount: 1, Currency: "USD", Status: PaymentStatusCompleted, FailureReason: &reason}); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for completed payment with reason, got %v", err)
	}
	if _, err := RestorePayment(PaymentState{ID: "p", OrderID: "o", Amount: 1, Currency: "USD", Status: PaymentStatusFailed}); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for failed payment without reason, got %v", err)
	}
}

func TestPaymentStateIsDetached(t *testing.T) {
	payment, _ := NewFailedPayment("pay-3", "order-1", 100, "USD", "ch_1", "stripe", "Card declined", time.Now())
	state := payment.State()
	*state.FailureReason = "changed"

	if *payment.FailureReason() != "Card declined" {
		t.Fatal("payment mutated through its state copy")
	}
}
