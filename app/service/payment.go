package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-order-payments/app/entity"
	"github.com/vibast-solutions/ms-go-order-payments/app/events"
	"github.com/vibast-solutions/ms-go-order-payments/app/factory"
	"github.com/vibast-solutions/ms-go-order-payments/app/gateway"
	"github.com/vibast-solutions/ms-go-order-payments/app/metrics"
	"github.com/vibast-solutions/ms-go-order-payments/app/repository"
	"github.com/vibast-solutions/ms-go-order-payments/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultBatchSize = int32(100)
	tracerName       = "github.com/vibast-solutions/ms-go-order-payments/app/service"
)

// OrderStore persists orders. Save inserts a new order or conditionally updates
// status and paid_at, returning repository.ErrOrderConflict when the row moved on.
type OrderStore interface {
	Find(ctx context.Context, id string) (*entity.Order, error)
	Save(ctx context.Context, order *entity.Order) error
	List(ctx context.Context, filter repository.OrderFilter) ([]*entity.Order, error)
}

// PaymentStore is insert-only.
type PaymentStore interface {
	Save(ctx context.Context, payment *entity.Payment) error
	FindByID(ctx context.Context, id string) (*entity.Payment, error)
	ListByOrderID(ctx context.Context, orderID string) ([]*entity.Payment, error)
}

type OrderEventStore interface {
	Create(ctx context.Context, event *entity.OrderEvent) error
}

// PaymentOutcome holds detached copies of the paid order and its completed payment.
type PaymentOutcome struct {
	Order   *entity.Order
	Payment *entity.Payment
}

type Option func(*PaymentService)

func WithPublisher(p events.Publisher) Option {
	return func(s *PaymentService) { s.publisher = p }
}

func WithMetrics(r metrics.Recorder) Option {
	return func(s *PaymentService) { s.metrics = r }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *PaymentService) { s.tracer = t }
}

func WithClock(now func() time.Time) Option {
	return func(s *PaymentService) { s.now = now }
}

type PaymentService struct {
	orderRepo   OrderStore
	paymentRepo PaymentStore
	eventRepo   OrderEventStore
	gateway     gateway.Gateway
	idGen       gateway.IDGenerator
	ordersCfg   config.OrdersConfig
	publisher   events.Publisher
	metrics     metrics.Recorder
	tracer      trace.Tracer
	now         func() time.Time
	logger      logrus.FieldLogger
}

func NewPaymentService(
	orderRepo OrderStore,
	paymentRepo PaymentStore,
	eventRepo OrderEventStore,
	gw gateway.Gateway,
	idGen gateway.IDGenerator,
	ordersCfg config.OrdersConfig,
	opts ...Option,
) *PaymentService {
	s := &PaymentService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		eventRepo:   eventRepo,
		gateway:     gw,
		idGen:       idGen,
		ordersCfg:   ordersCfg,
		publisher:   events.NopPublisher{},
		metrics:     metrics.NopRecorder{},
		tracer:      otel.Tracer(tracerName),
		now:         func() time.Time { return time.Now().UTC() },
		logger:      factory.NewModuleLogger("payment-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessPayment charges a pending order once and records the attempt.
//
// Lookup, state and currency checks run before any side effect. Every
// gateway answer is stored as a Payment; only a completed one moves the
// order to paid. A declined charge returns ErrGatewayFailed after the
// failed Payment is stored. Gateway transport errors are returned as is and
// leave no Payment behind.
func (s *PaymentService) ProcessPayment(ctx context.Context, orderID string) (*PaymentOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "PaymentService.ProcessPayment",
		trace.WithAttributes(
			attribute.String("order.id", orderID),
			attribute.String("payment.gateway", s.gateway.Name()),
		),
	)
	defer span.End()

	outcome, err := s.processPayment(ctx, orderID)

	var paymentErr *PaymentError
	switch {
	case err == nil:
		s.metrics.PaymentAttempt(s.gateway.Name(), metrics.OutcomeCompleted)
		span.SetAttributes(attribute.String("payment.id", outcome.Payment.ID()))
	case errors.Is(err, ErrGatewayFailed):
		s.metrics.PaymentAttempt(s.gateway.Name(), metrics.OutcomeFailed)
		span.SetStatus(otelcodes.Error, err.Error())
	case errors.As(err, &paymentErr):
		s.metrics.PaymentAttempt(s.gateway.Name(), metrics.OutcomeRejected)
		span.SetAttributes(attribute.String("payment.rejection", paymentErr.Kind.Error()))
	default:
		s.metrics.PaymentAttempt(s.gateway.Name(), metrics.OutcomeError)
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
	}

	return outcome, err
}

func (s *PaymentService) processPayment(ctx context.Context, orderID string) (*PaymentOutcome, error) {
	order, err := s.orderRepo.Find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, orderNotFoundError(orderID)
	}

	if order.Status().IsPaid() {
		return nil, s.rejected(orderAlreadyPaidError(order.ID()))
	}
	if !order.Status().CanBePaid() {
		return nil, s.rejected(orderNotPayableError(order.ID(), order.Status()))
	}
	if !s.gateway.SupportsCurrency(order.Currency()) {
		return nil, s.rejected(currencyUnsupportedError(order.ID(), order.Currency(), s.gateway.Name()))
	}

	result, err := s.charge(ctx, order)
	if err != nil {
		return nil, err
	}

	paymentID := s.idGen.Generate()
	recordedAt := s.now()

	var payment *entity.Payment
	if result.Successful {
		payment, err = entity.NewCompletedPayment(paymentID, order.ID(), order.Amount(), order.Currency(), result.TransactionID, s.gateway.Name(), recordedAt)
	} else {
		reason := unknownFailureReason
		if result.FailureReason != nil && *result.FailureReason != "" {
			reason = *result.FailureReason
		}
		payment, err = entity.NewFailedPayment(paymentID, order.ID(), order.Amount(), order.Currency(), result.TransactionID, s.gateway.Name(), reason, recordedAt)
	}
	if err != nil {
		return nil, err
	}

	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("save payment %s for order %s: %w", payment.ID(), order.ID(), err)
	}
	s.publish(ctx, payment)

	if !payment.IsSuccessful() {
		return nil, s.rejected(gatewayFailedError(order.ID(), result.FailureReason))
	}

	oldStatus := order.Status()
	if err := order.MarkAsPaid(recordedAt); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"order_id":   order.ID(),
			"payment_id": payment.ID(),
		}).Error("Completed payment recorded but order was not marked as paid")
		if errors.Is(err, repository.ErrOrderConflict) {
			return nil, concurrentUpdateError(order.ID(), err)
		}
		return nil, err
	}

	paymentRef := payment.ID()
	s.recordTransition(ctx, order, entity.OrderEventPaid, oldStatus, &paymentRef)

	return &PaymentOutcome{Order: order.Snapshot(), Payment: payment}, nil
}

func (s *PaymentService) charge(ctx context.Context, order *entity.Order) (*gateway.ChargeResult, error) {
	ctx, span := s.tracer.Start(ctx, "Gateway.Charge",
		trace.WithAttributes(
			attribute.String("order.id", order.ID()),
			attribute.Int64("order.amount", order.Amount()),
			attribute.String("order.currency", order.Currency()),
		),
	)
	defer span.End()

	startedAt := time.Now()
	result, err := s.gateway.Charge(ctx, order)
	s.metrics.ChargeDuration(s.gateway.Name(), time.Since(startedAt))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("charge order %s: %w", order.ID(), err)
	}
	if result == nil {
		return nil, fmt.Errorf("charge order %s: %s gateway returned no result", order.ID(), s.gateway.Name())
	}

	span.SetAttributes(attribute.Bool("charge.successful", result.Successful))
	return result, nil
}

// rejected logs a business failure at debug level and returns it unchanged.
func (s *PaymentService) rejected(err error) error {
	var paymentErr *PaymentError
	if errors.As(err, &paymentErr) {
		s.logger.WithFields(logrus.Fields{
			"order_id": paymentErr.OrderID,
			"reason":   paymentErr.Kind.Error(),
		}).Debug(paymentErr.Message)
	}
	return err
}

func (s *PaymentService) publish(ctx context.Context, payment *entity.Payment) {
	if err := s.publisher.Publish(ctx, events.NewPaymentEvent(payment, s.now())); err != nil {
		s.logger.WithError(err).WithField("payment_id", payment.ID()).Warn("Publish payment event failed")
	}
}

func (s *PaymentService) recordTransition(ctx context.Context, order *entity.Order, eventType string, oldStatus entity.OrderStatus, paymentID *string) {
	recordTransition(ctx, s.eventRepo, s.logger, order, eventType, oldStatus, paymentID, s.now())
}

func recordTransition(ctx context.Context, repo OrderEventStore, logger logrus.FieldLogger, order *entity.Order, eventType string, oldStatus entity.OrderStatus, paymentID *string, now time.Time) {
	err := repo.Create(ctx, &entity.OrderEvent{
		OrderID:   order.ID(),
		EventType: eventType,
		OldStatus: oldStatus,
		NewStatus: order.Status(),
		PaymentID: paymentID,
		CreatedAt: now,
	})
	if err != nil {
		logger.WithError(err).WithField("order_id", order.ID()).Warn("Record order event failed")
	}
}

func (s *PaymentService) batchSize() int32 {
	if s.ordersCfg.JobBatchSize > 0 {
		return s.ordersCfg.JobBatchSize
	}
	return defaultBatchSize
}
