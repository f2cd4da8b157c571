package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/vibast-solutions/ms-go-order-payments/app/mapper"
	"github.com/vibast-solutions/ms-go-order-payments/app/service"
	"github.com/vibast-solutions/ms-go-order-payments/app/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const paymentProcessedMessage = "Payment processed successfully"

type Server struct {
	paymentService *service.PaymentService
	orderService   *service.OrderService
}

func NewServer(paymentService *service.PaymentService, orderService *service.OrderService) *Server {
	return &Server{paymentService: paymentService, orderService: orderService}
}

func (s *Server) PayOrder(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	orderID, err := orderIDFromRequest(req)
	if err != nil {
		return nil, err
	}

	outcome, err := s.paymentService.ProcessPayment(ctx, orderID)
	if err != nil {
		return nil, toStatus(ctx, err, "Process payment failed")
	}

	return toStruct(&types.ProcessPaymentResponse{
		Success: true,
		Message: paymentProcessedMessage,
		Order:   mapper.OrderToView(outcome.Order),
		Payment: mapper.PaymentToView(outcome.Payment),
	})
}

func (s *Server) GetOrder(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	orderID, err := orderIDFromRequest(req)
	if err != nil {
		return nil, err
	}

	order, err := s.orderService.GetOrder(ctx, orderID)
	if err != nil {
		return nil, toStatus(ctx, err, "Get order failed")
	}

	return toStruct(&types.OrderEnvelopeResponse{Success: true, Order: mapper.OrderToView(order)})
}

func (s *Server) ListOrderPayments(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	orderID, err := orderIDFromRequest(req)
	if err != nil {
		return nil, err
	}

	payments, err := s.orderService.ListPayments(ctx, orderID)
	if err != nil {
		return nil, toStatus(ctx, err, "List order payments failed")
	}

	return toStruct(&types.ListPaymentsResponse{Success: true, Payments: mapper.PaymentsToView(payments)})
}

func orderIDFromRequest(req *wrapperspb.StringValue) (string, error) {
	orderReq := &types.OrderRequest{OrderId: strings.TrimSpace(req.GetValue())}
	if err := orderReq.Validate(); err != nil {
		return "", status.Error(codes.InvalidArgument, err.Error())
	}
	return orderReq.GetOrderId(), nil
}

func toStatus(ctx context.Context, err error, action string) error {
	var paymentErr *service.PaymentError
	switch {
	case errors.Is(err, service.ErrOrderNotFound), errors.Is(err, service.ErrPaymentNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrInvalidRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrConcurrentUpdate):
		loggerWithContext(ctx).WithError(err).Warn(action)
		return status.Error(codes.Aborted, "order was updated by another request, please retry")
	case errors.As(err, &paymentErr):
		return status.Error(codes.FailedPrecondition, paymentErr.Message)
	default:
		loggerWithContext(ctx).WithError(err).Error(action)
		return status.Error(codes.Internal, "internal server error")
	}
}

// toStruct converts a JSON response document into a protobuf Struct.
func toStruct(v interface{}) (*structpb.Struct, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(body, out); err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return out, nil
}
