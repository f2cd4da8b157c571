package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-order-payments/app/entity"
)

func newMemoryOrder(t *testing.T, id string, createdAt time.Time) *entity.Order {
	t.Helper()
	order, err := entity.NewOrder(id, 5000, "USD", "customer@example.com", createdAt)
	if err != nil {
		t.Fatalf("new order failed: %v", err)
	}
	return order
}

func TestMemoryOrderRepositoryInsertAndFind(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()

	if err := repo.Save(ctx, newMemoryOrder(t, "o1", time.Now().UTC())); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := repo.Save(ctx, newMemoryOrder(t, "o1", time.Now().UTC())); !errors.Is(err, ErrOrderAlreadyExists) {
		t.Fatalf("expected ErrOrderAlreadyExists, got %v", err)
	}

	found, err := repo.Find(ctx, "o1")
	if err != nil || found == nil {
		t.Fatalf("expected order, got %v %v", found, err)
	}
	if stored, ok := found.StoredStatus(); !ok || stored != entity.OrderStatusPending {
		t.Fatalf("expected loaded order to be marked stored, got %s %v", stored, ok)
	}

	missing, err := repo.Find(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil for missing order, got %v %v", missing, err)
	}
}

func TestMemoryOrderRepositoryConditionalUpdate(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()
	if err := repo.Save(ctx, newMemoryOrder(t, "o1", time.Now().UTC())); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	first, _ := repo.Find(ctx, "o1")
	second, _ := repo.Find(ctx, "o1")

	if err := first.MarkAsPaid(time.Now().UTC()); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("first save failed: %v", err)
	}

	if err := second.Cancel(); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if err := repo.Save(ctx, second); !errors.Is(err, ErrOrderConflict) {
		t.Fatalf("expected ErrOrderConflict, got %v", err)
	}

	stored, _ := repo.Find(ctx, "o1")
	if !stored.Status().IsPaid() || stored.PaidAt() == nil {
		t.Fatalf("expected paid order to win, got %s", stored.Status())
	}
}

func TestMemoryOrderRepositorySaveUnchangedIsNoop(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()
	if err := repo.Save(ctx, newMemoryOrder(t, "o1", time.Now().UTC())); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, _ := repo.Find(ctx, "o1")
	if err := repo.Save(ctx, loaded); err != nil {
		t.Fatalf("expected unchanged save to succeed, got %v", err)
	}
}

func TestMemoryOrderRepositoryListOrderingAndPaging(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c", "d"} {
		order := newMemoryOrder(t, id, base.Add(time.Duration(i)*time.Minute))
		if id == "b" {
			_ = order.Cancel()
		}
		if err := repo.Save(ctx, order); err != nil {
			t.Fatalf("save %s failed: %v", id, err)
		}
	}

	all, err := repo.List(ctx, OrderFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 4 || all[0].ID() != "d" || all[3].ID() != "a" {
		t.Fatalf("expected newest first, got %v", orderIDs(all))
	}

	pending, _ := repo.List(ctx, OrderFilter{HasStatus: true, Status: entity.OrderStatusPending, Limit: 2, Offset: 1})
	if ids := orderIDs(pending); len(ids) != 2 || ids[0] != "c" || ids[1] != "a" {
		t.Fatalf("unexpected filtered page: %v", ids)
	}

	empty, _ := repo.List(ctx, OrderFilter{Offset: 10})
	if len(empty) != 0 {
		t.Fatalf("expected empty page, got %v", orderIDs(empty))
	}
}

func TestMemoryPaymentRepository(t *testing.T) {
	repo := NewMemoryPaymentRepository()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	failed, _ := entity.NewFailedPayment("p1", "o1", 5000, "USD", "", "stripe", "Card declined", base)
	completed, _ := entity.NewCompletedPayment("p2", "o1", 5000, "USD", "ch_1", "stripe", base.Add(time.Minute))
	other, _ := entity.NewCompletedPayment("p3", "o2", 700, "EUR", "ch_2", "stripe", base)

	for _, p := range []*entity.Payment{failed, completed, other} {
		if err := repo.Save(ctx, p); err != nil {
			t.Fatalf("save %s failed: %v", p.ID(), err)
		}
	}
	if err := repo.Save(ctx, failed); !errors.Is(err, ErrPaymentAlreadyExists) {
		t.Fatalf("expected ErrPaymentAlreadyExists, got %v", err)
	}

	items, err := repo.ListByOrderID(ctx, "o1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 2 || items[0].ID() != "p2" || items[1].ID() != "p1" {
		t.Fatalf("unexpected history order")
	}

	found, _ := repo.FindByID(ctx, "p1")
	if found == nil || found.FailureReason() == nil || *found.FailureReason() != "Card declined" {
		t.Fatalf("unexpected payment: %+v", found)
	}
	if missing, _ := repo.FindByID(ctx, "nope"); missing != nil {
		t.Fatal("expected nil for missing payment")
	}
}

func TestMemoryOrderEventRepositoryAssignsIDs(t *testing.T) {
	repo := NewMemoryOrderEventRepository()
	ctx := context.Background()

	first := &entity.OrderEvent{OrderID: "o1", EventType: entity.OrderEventPaid}
	second := &entity.OrderEvent{OrderID: "o1", EventType: entity.OrderEventRefunded}
	_ = repo.Create(ctx, first)
	_ = repo.Create(ctx, second)
	_ = repo.Create(ctx, &entity.OrderEvent{OrderID: "o2", EventType: entity.OrderEventCancelled})

	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("unexpected ids: %d %d", first.ID, second.ID)
	}
	if got := repo.ListByOrderID("o1"); len(got) != 2 {
		t.Fatalf("expected two events for o1, got %d", len(got))
	}
}

func TestNormalizeLimit(t *testing.T) {
	if normalizeLimit(0) != defaultListLimit || normalizeLimit(-1) != defaultListLimit {
		t.Fatal("expected default limit for non-positive values")
	}
	if normalizeLimit(10_000) != maxListLimit {
		t.Fatal("expected max limit cap")
	}
	if normalizeLimit(25) != 25 {
		t.Fatal("expected limit to pass through")
	}
}

func orderIDs(items []*entity.Order) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID())
	}
	return ids
}
