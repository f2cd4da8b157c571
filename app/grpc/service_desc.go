package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const serviceName = "payments.OrderPaymentsService"

// OrderPaymentsServer is the RPC surface. Requests carry the order id as a
// StringValue; responses are the same snake_case documents the HTTP API returns.
type OrderPaymentsServer interface {
	PayOrder(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	GetOrder(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	ListOrderPayments(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*OrderPaymentsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PayOrder", Handler: unaryHandler("PayOrder", OrderPaymentsServer.PayOrder)},
		{MethodName: "GetOrder", Handler: unaryHandler("GetOrder", OrderPaymentsServer.GetOrder)},
		{MethodName: "ListOrderPayments", Handler: unaryHandler("ListOrderPayments", OrderPaymentsServer.ListOrderPayments)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "payments/order_payments.proto",
}

func RegisterOrderPaymentsServer(registrar grpc.ServiceRegistrar, srv OrderPaymentsServer) {
	registrar.RegisterService(&ServiceDesc, srv)
}

type orderMethod func(OrderPaymentsServer, context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)

func unaryHandler(name string, method orderMethod) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	fullMethod := "/" + serviceName + "/" + name
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(wrapperspb.StringValue)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return method(srv.(OrderPaymentsServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return method(srv.(OrderPaymentsServer), ctx, req.(*wrapperspb.StringValue))
		}
		return interceptor(ctx, in, info, handler)
	}
}
