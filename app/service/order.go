package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-order-payments/app/entity"
	"github.com/vibast-solutions/ms-go-order-payments/app/factory"
	"github.com/vibast-solutions/ms-go-order-payments/app/gateway"
	"github.com/vibast-solutions/ms-go-order-payments/app/repository"
)

const defaultListLimit = int32(100)

type createOrderRequest interface {
	GetId() string
	GetAmount() int64
	GetCurrency() string
	GetCustomerEmail() string
}

type listOrdersRequest interface {
	GetStatus() string
	GetLimit() int32
	GetOffset() int32
}

// OrderService covers order lookup and the non-payment transitions.
type OrderService struct {
	orderRepo   OrderStore
	paymentRepo PaymentStore
	eventRepo   OrderEventStore
	idGen       gateway.IDGenerator
	now         func() time.Time
	logger      logrus.FieldLogger
}

func NewOrderService(
	orderRepo OrderStore,
	paymentRepo PaymentStore,
	eventRepo OrderEventStore,
	idGen gateway.IDGenerator,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		eventRepo:   eventRepo,
		idGen:       idGen,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      factory.NewModuleLogger("order-service"),
	}
}

func (s *OrderService) CreateOrder(ctx context.Context, req createOrderRequest) (*entity.Order, error) {
	id := strings.TrimSpace(req.GetId())
	if id == "" {
		id = s.idGen.Generate()
	}

	order, err := entity.NewOrder(id, req.GetAmount(), req.GetCurrency(), strings.TrimSpace(req.GetCustomerEmail()), s.now())
	if err != nil {
		if errors.Is(err, entity.ErrInvalidAmount) {
			return nil, ErrInvalidRequest
		}
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		if errors.Is(err, repository.ErrOrderAlreadyExists) {
			return nil, ErrOrderAlreadyExists
		}
		return nil, err
	}

	return order.Snapshot(), nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	order, err := s.orderRepo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, orderNotFoundError(id)
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, req listOrdersRequest) ([]*entity.Order, error) {
	limit := req.GetLimit()
	if limit <= 0 {
		limit = defaultListLimit
	}

	filter := repository.OrderFilter{
		Limit:  limit,
		Offset: req.GetOffset(),
	}
	if raw := strings.TrimSpace(req.GetStatus()); raw != "" {
		status, err := entity.ParseOrderStatus(raw)
		if err != nil {
			return nil, ErrInvalidRequest
		}
		filter.HasStatus = true
		filter.Status = status
	}

	return s.orderRepo.List(ctx, filter)
}

// ListPayments returns every attempt recorded for the order, newest first.
func (s *OrderService) ListPayments(ctx context.Context, orderID string) ([]*entity.Payment, error) {
	if _, err := s.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return s.paymentRepo.ListByOrderID(ctx, orderID)
}

func (s *OrderService) GetPayment(ctx context.Context, id string) (*entity.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, paymentNotFoundError(id)
	}
	return payment, nil
}

func (s *OrderService) CancelOrder(ctx context.Context, id string) (*entity.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := order.Status()
	if err := order.Cancel(); err != nil {
		return nil, orderNotCancellableError(order.ID(), oldStatus)
	}

	if err := s.save(ctx, order); err != nil {
		return nil, err
	}
	recordTransition(ctx, s.eventRepo, s.logger, order, entity.OrderEventCancelled, oldStatus, nil, s.now())

	return order.Snapshot(), nil
}

// RefundOrder only moves a paid order to refunded; no money is returned through the gateway.
func (s *OrderService) RefundOrder(ctx context.Context, id string) (*entity.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := order.Status()
	if err := order.MarkAsRefunded(); err != nil {
		return nil, orderNotRefundableError(order.ID(), oldStatus)
	}

	if err := s.save(ctx, order); err != nil {
		return nil, err
	}
	recordTransition(ctx, s.eventRepo, s.logger, order, entity.OrderEventRefunded, oldStatus, nil, s.now())

	return order.Snapshot(), nil
}

func (s *OrderService) save(ctx context.Context, order *entity.Order) error {
	if err := s.orderRepo.Save(ctx, order); err != nil {
		if errors.Is(err, repository.ErrOrderConflict) {
			return concurrentUpdateError(order.ID(), err)
		}
		return err
	}
	return nil
}
