package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-order-payments/app/factory"
	"github.com/vibast-solutions/ms-go-order-payments/app/mapper"
	"github.com/vibast-solutions/ms-go-order-payments/app/service"
	"github.com/vibast-solutions/ms-go-order-payments/app/types"
)

const (
	paymentProcessedMessage = "Payment processed successfully"
	internalErrorMessage    = "An unexpected error occurred"
)

type OrderController struct {
	paymentService *service.PaymentService
	orderService   *service.OrderService
	logger         logrus.FieldLogger
}

func NewOrderController(paymentService *service.PaymentService, orderService *service.OrderService) *OrderController {
	return &OrderController{
		paymentService: paymentService,
		orderService:   orderService,
		logger:         factory.NewModuleLogger("orders-controller"),
	}
}

func (c *OrderController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

// PayOrder handles POST /orders/:orderId/pay.
func (c *OrderController) PayOrder(ctx echo.Context) error {
	req, err := types.NewOrderRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	outcome, err := c.paymentService.ProcessPayment(ctx.Request().Context(), req.GetOrderId())
	if err != nil {
		return c.handleServiceError(ctx, err, "Process payment failed")
	}

	return ctx.JSON(http.StatusOK, &types.ProcessPaymentResponse{
		Success: true,
		Message: paymentProcessedMessage,
		Order:   mapper.OrderToView(outcome.Order),
		Payment: mapper.PaymentToView(outcome.Payment),
	})
}

func (c *OrderController) GetOrder(ctx echo.Context) error {
	req, err := types.NewOrderRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	order, err := c.orderService.GetOrder(ctx.Request().Context(), req.GetOrderId())
	if err != nil {
		return c.handleServiceError(ctx, err, "Get order failed")
	}

	return ctx.JSON(http.StatusOK, &types.OrderEnvelopeResponse{Success: true, Order: mapper.OrderToView(order)})
}

func (c *OrderController) ListOrders(ctx echo.Context) error {
	req, err := types.NewListOrdersRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	orders, err := c.orderService.ListOrders(ctx.Request().Context(), req)
	if err != nil {
		return c.handleServiceError(ctx, err, "List orders failed")
	}

	return ctx.JSON(http.StatusOK, &types.ListOrdersResponse{Success: true, Orders: mapper.OrdersToView(orders)})
}

func (c *OrderController) ListOrderPayments(ctx echo.Context) error {
	req, err := types.NewOrderRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	payments, err := c.orderService.ListPayments(ctx.Request().Context(), req.GetOrderId())
	if err != nil {
		return c.handleServiceError(ctx, err, "List order payments failed")
	}

	return ctx.JSON(http.StatusOK, &types.ListPaymentsResponse{Success: true, Payments: mapper.PaymentsToView(payments)})
}

func (c *OrderController) GetPayment(ctx echo.Context) error {
	req, err := types.NewPaymentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	payment, err := c.orderService.GetPayment(ctx.Request().Context(), req.GetPaymentId())
	if err != nil {
		return c.handleServiceError(ctx, err, "Get payment failed")
	}

	return ctx.JSON(http.StatusOK, &types.PaymentEnvelopeResponse{Success: true, Payment: mapper.PaymentToView(payment)})
}

func (c *OrderController) CreateOrder(ctx echo.Context) error {
	req, err := types.NewCreateOrderRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	order, err := c.orderService.CreateOrder(ctx.Request().Context(), req)
	if err != nil {
		return c.handleServiceError(ctx, err, "Create order failed")
	}

	return ctx.JSON(http.StatusCreated, &types.OrderEnvelopeResponse{Success: true, Order: mapper.OrderToView(order)})
}

func (c *OrderController) CancelOrder(ctx echo.Context) error {
	req, err := types.NewOrderRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	order, err := c.orderService.CancelOrder(ctx.Request().Context(), req.GetOrderId())
	if err != nil {
		return c.handleServiceError(ctx, err, "Cancel order failed")
	}

	return ctx.JSON(http.StatusOK, &types.OrderEnvelopeResponse{Success: true, Order: mapper.OrderToView(order)})
}

func (c *OrderController) RefundOrder(ctx echo.Context) error {
	req, err := types.NewOrderRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	order, err := c.orderService.RefundOrder(ctx.Request().Context(), req.GetOrderId())
	if err != nil {
		return c.handleServiceError(ctx, err, "Refund order failed")
	}

	return ctx.JSON(http.StatusOK, &types.OrderEnvelopeResponse{Success: true, Order: mapper.OrderToView(order)})
}

func (c *OrderController) handleServiceError(ctx echo.Context, err error, action string) error {
	var paymentErr *service.PaymentError
	switch {
	case errors.Is(err, service.ErrOrderNotFound), errors.Is(err, service.ErrPaymentNotFound):
		return c.writeError(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidRequest):
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrOrderAlreadyExists):
		return c.writeError(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrConcurrentUpdate):
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Warn(action)
		return c.writeError(ctx, http.StatusConflict, "Order was updated by another request, please retry")
	case errors.As(err, &paymentErr):
		return c.writeError(ctx, http.StatusUnprocessableEntity, paymentErr.Message)
	default:
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error(action)
		return c.writeError(ctx, http.StatusInternalServerError, internalErrorMessage)
	}
}

func (c *OrderController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, types.NewErrorResponse(message))
}
