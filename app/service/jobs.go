package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-order-payments/app/entity"
	"github.com/vibast-solutions/ms-go-order-payments/app/repository"
)

// BatchSummary counts what one pay-pending pass did.
type BatchSummary struct {
	Processed int
	Paid      int
	Declined  int
	Skipped   int
	Exhausted int
	Errored   int
}

func (b BatchSummary) Fields() logrus.Fields {
	return logrus.Fields{
		"processed": b.Processed,
		"paid":      b.Paid,
		"declined":  b.Declined,
		"skipped":   b.Skipped,
		"exhausted": b.Exhausted,
		"errored":   b.Errored,
	}
}

// RunPayPendingBatch charges up to one batch of pending orders by running
// each through ProcessPayment. Orders that already used up their failed
// attempts are counted as exhausted and never charged, and further pages are
// read so they do not crowd out the rest. Declines and
// orders that stopped being payable are counted, not returned; the first
// unclassified error is returned after the whole batch has been tried.
func (s *PaymentService) RunPayPendingBatch(ctx context.Context) (BatchSummary, error) {
	var summary BatchSummary
	var firstErr error

	limit := s.batchSize()
	offset := int32(0)
	for summary.Processed < int(limit) {
		orders, err := s.orderRepo.List(ctx, repository.OrderFilter{
			HasStatus: true,
			Status:    entity.OrderStatusPending,
			Limit:     limit,
			Offset:    offset,
		})
		if err != nil {
			return summary, keepFirstErr(firstErr, err)
		}

		for _, order := range orders {
			if order == nil {
				continue
			}
			if summary.Processed >= int(limit) {
				break
			}
			if err := ctx.Err(); err != nil {
				return summary, keepFirstErr(firstErr, err)
			}

			exhausted, err := s.attemptsExhausted(ctx, order.ID())
			if err != nil {
				summary.Errored++
				s.logger.WithError(err).WithField("order_id", order.ID()).Error("Count payment attempts failed")
				firstErr = keepFirstErr(firstErr, err)
				continue
			}
			if exhausted {
				summary.Exhausted++
				continue
			}

			summary.Processed++
			_, err = s.ProcessPayment(ctx, order.ID())
			if err := s.tally(&summary, err); err != nil {
				s.logger.WithError(err).WithField("order_id", order.ID()).Error("Pay pending order failed")
				firstErr = keepFirstErr(firstErr, err)
			}
		}

		if len(orders) < int(limit) || summary.Exhausted == 0 {
			break
		}
		offset += int32(len(orders))
	}

	return summary, firstErr
}

// attemptsExhausted reports whether orderID has reached the configured number
// of failed payments.
func (s *PaymentService) attemptsExhausted(ctx context.Context, orderID string) (bool, error) {
	if s.ordersCfg.MaxPayAttempts <= 0 {
		return false, nil
	}

	payments, err := s.paymentRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		return false, err
	}
	failed := 0
	for _, payment := range payments {
		if !payment.IsSuccessful() {
			failed++
		}
	}
	return failed >= s.ordersCfg.MaxPayAttempts, nil
}

// PayOrders runs ProcessPayment for each id in turn and keeps going past failures.
func (s *PaymentService) PayOrders(ctx context.Context, orderIDs []string) (BatchSummary, error) {
	var summary BatchSummary
	var firstErr error

	for _, id := range orderIDs {
		summary.Processed++
		logger := s.logger.WithField("order_id", id)

		outcome, err := s.ProcessPayment(ctx, id)
		unclassified := s.tally(&summary, err)
		switch {
		case err == nil:
			logger.WithField("payment_id", outcome.Payment.ID()).Info("Order paid")
		case unclassified != nil:
			logger.WithError(err).Error("Pay order failed")
			firstErr = keepFirstErr(firstErr, unclassified)
		default:
			logger.Warn(err.Error())
		}
	}

	return summary, firstErr
}

// tally counts err into summary and returns it only when it is unclassified.
func (s *PaymentService) tally(summary *BatchSummary, err error) error {
	var paymentErr *PaymentError
	switch {
	case err == nil:
		summary.Paid++
	case errors.Is(err, ErrGatewayFailed):
		summary.Declined++
	case errors.As(err, &paymentErr), errors.Is(err, ErrConcurrentUpdate):
		summary.Skipped++
	default:
		summary.Errored++
		return err
	}
	return nil
}

func keepFirstErr(current error, candidate error) error {
	if current != nil {
		return current
	}
	return candidate
}
