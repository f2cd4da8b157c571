package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vibast-solutions/ms-go-order-payments/app/entity"
)

// MemoryOrderRepository keeps orders in process memory with the same
// conditional-write rules as OrderRepository.
type MemoryOrderRepository struct {
	mu     sync.Mutex
	orders map[string]entity.OrderState
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: map[string]entity.OrderState{}}
}

func (r *MemoryOrderRepository) Find(_ context.Context, id string) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return entity.RestoreOrder(state)
}

func (r *MemoryOrderRepository) Save(_ context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	storedStatus, persisted := order.StoredStatus()
	current, exists := r.orders[order.ID()]

	if !persisted {
		if exists {
			return ErrOrderAlreadyExists
		}
		r.orders[order.ID()] = order.State()
		order.MarkStored()
		return nil
	}
	if storedStatus == order.Status() {
		return nil
	}
	if !exists || current.Status != storedStatus {
		return fmt.Errorf("%w: order %s is no longer %s", ErrOrderConflict, order.ID(), storedStatus)
	}

	current.Status = order.Status()
	current.PaidAt = order.PaidAt()
	r.orders[order.ID()] = current
	order.MarkStored()
	return nil
}

func (r *MemoryOrderRepository) List(_ context.Context, filter OrderFilter) ([]*entity.Order, error) {
	r.mu.Lock()
	states := make([]entity.OrderState, 0, len(r.orders))
	for _, state := range r.orders {
		if filter.HasStatus && state.Status != filter.Status {
			continue
		}
		states = append(states, state)
	}
	r.mu.Unlock()

	sort.Slice(states, func(i, j int) bool {
		if !states[i].CreatedAt.Equal(states[j].CreatedAt) {
			return states[i].CreatedAt.After(states[j].CreatedAt)
		}
		return states[i].ID < states[j].ID
	})

	start := int(filter.Offset)
	if start > len(states) {
		start = len(states)
	}
	end := start + int(normalizeLimit(filter.Limit))
	if end > len(states) {
		end = len(states)
	}

	orders := make([]*entity.Order, 0, end-start)
	for _, state := range states[start:end] {
		order, err := entity.RestoreOrder(state)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

type MemoryPaymentRepository struct {
	mu       sync.Mutex
	payments []entity.PaymentState
}

func NewMemoryPaymentRepository() *MemoryPaymentRepository {
	return &MemoryPaymentRepository{}
}

func (r *MemoryPaymentRepository) Save(_ context.Context, payment *entity.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.payments {
		if existing.ID == payment.ID() {
			return ErrPaymentAlreadyExists
		}
	}
	r.payments = append(r.payments, payment.State())
	return nil
}

func (r *MemoryPaymentRepository) FindByID(_ context.Context, id string) (*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, state := range r.payments {
		if state.ID == id {
			return entity.RestorePayment(state)
		}
	}
	return nil, nil
}

// ListByOrderID returns newest first; payments with equal timestamps keep
// insertion order reversed.
func (r *MemoryPaymentRepository) ListByOrderID(_ context.Context, orderID string) ([]*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payments := make([]*entity.Payment, 0)
	for i := len(r.payments) - 1; i >= 0; i-- {
		state := r.payments[i]
		if state.OrderID != orderID {
			continue
		}
		payment, err := entity.RestorePayment(state)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].CreatedAt().After(payments[j].CreatedAt())
	})
	return payments, nil
}

type MemoryOrderEventRepository struct {
	mu     sync.Mutex
	events []entity.OrderEvent
	nextID uint64
}

func NewMemoryOrderEventRepository() *MemoryOrderEventRepository {
	return &MemoryOrderEventRepository{nextID: 1}
}

func (r *MemoryOrderEventRepository) Create(_ context.Context, event *entity.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event.ID = r.nextID
	r.nextID++
	r.events = append(r.events, *event)
	return nil
}

func (r *MemoryOrderEventRepository) ListByOrderID(orderID string) []entity.OrderEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := make([]entity.OrderEvent, 0)
	for _, event := range r.events {
		if event.OrderID == orderID {
			events = append(events, event)
		}
	}
	return events
}
