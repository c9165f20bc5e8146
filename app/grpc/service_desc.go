package grpc

import (
	"context"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	KeyValidationServiceName = "apikeys.v1.KeyValidation"

	ValidateFullMethod = "/apikeys.v1.KeyValidation/Validate"
	AccessFullMethod   = "/apikeys.v1.KeyValidation/Access"
)

// KeyValidationServer is the server API for apikeys.v1.KeyValidation. Messages are
// protobuf well-known types so no generated code is needed.
type KeyValidationServer interface {
	Validate(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Access(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

func RegisterKeyValidationServer(s gogrpc.ServiceRegistrar, srv KeyValidationServer) {
	s.RegisterService(&KeyValidationServiceDesc, srv)
}

var KeyValidationServiceDesc = gogrpc.ServiceDesc{
	ServiceName: KeyValidationServiceName,
	HandlerType: (*KeyValidationServer)(nil),
	Methods: []gogrpc.MethodDesc{
		{
			MethodName: "Validate",
			Handler:    validateHandler,
		},
		{
			MethodName: "Access",
			Handler:    accessHandler,
		},
	},
	Streams:  []gogrpc.StreamDesc{},
	Metadata: "apikeys/v1/key_validation.proto",
}

func validateHandler(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(KeyValidationServer).Validate(ctx, in)
	}
	info := &gogrpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ValidateFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(KeyValidationServer).Validate(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func accessHandler(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(KeyValidationServer).Access(ctx, in)
	}
	info := &gogrpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: AccessFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(KeyValidationServer).Access(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

type KeyValidationClient interface {
	Validate(ctx context.Context, in *wrapperspb.StringValue, opts ...gogrpc.CallOption) (*structpb.Struct, error)
	Access(ctx context.Context, in *emptypb.Empty, opts ...gogrpc.CallOption) (*structpb.Struct, error)
}

type keyValidationClient struct {
	cc gogrpc.ClientConnInterface
}

func NewKeyValidationClient(cc gogrpc.ClientConnInterface) KeyValidationClient {
	return &keyValidationClient{cc: cc}
}

func (c *keyValidationClient) Validate(ctx context.Context, in *wrapperspb.StringValue, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ValidateFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *keyValidationClient) Access(ctx context.Context, in *emptypb.Empty, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AccessFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
