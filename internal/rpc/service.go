// Package rpc defines the guardrails.v1.GuardrailService gRPC contract.
// Messages are protobuf well-known types, so no generated code is needed.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "guardrails.v1.GuardrailService"

// Full method names.
const (
	ListThresholdsMethod  = "/" + ServiceName + "/ListThresholds"
	ApplyThresholdMethod  = "/" + ServiceName + "/ApplyThreshold"
	GetCustomConfigMethod = "/" + ServiceName + "/GetCustomConfig"
	SetCustomConfigMethod = "/" + ServiceName + "/SetCustomConfig"
	GuardValueMethod      = "/" + ServiceName + "/GuardValue"
	GenerateValueMethod   = "/" + ServiceName + "/GenerateValue"
)

// GuardrailServiceServer is the server API for GuardrailService.
type GuardrailServiceServer interface {
	ListThresholds(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ApplyThreshold(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	GetCustomConfig(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	SetCustomConfig(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	GuardValue(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GenerateValue(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
}

// RegisterGuardrailServiceServer registers srv on s.
func RegisterGuardrailServiceServer(s grpc.ServiceRegistrar, srv GuardrailServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc is the grpc.ServiceDesc for GuardrailService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GuardrailServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("ListThresholds", ListThresholdsMethod, GuardrailServiceServer.ListThresholds),
		unary("ApplyThreshold", ApplyThresholdMethod, GuardrailServiceServer.ApplyThreshold),
		unary("GetCustomConfig", GetCustomConfigMethod, GuardrailServiceServer.GetCustomConfig),
		unary("SetCustomConfig", SetCustomConfigMethod, GuardrailServiceServer.SetCustomConfig),
		unary("GuardValue", GuardValueMethod, GuardrailServiceServer.GuardValue),
		unary("GenerateValue", GenerateValueMethod, GuardrailServiceServer.GenerateValue),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "guardrails/v1/guardrails.proto",
}

// unary builds the method descriptor the way protoc-gen-go-grpc does for a
// unary call, with the request type taken from call.
func unary[Req, Resp any](name, fullMethod string, call func(GuardrailServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(GuardrailServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(GuardrailServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
