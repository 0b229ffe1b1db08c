package operator

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "alarm.ap.v1.OperatorService"

	// GetStatusMethod is the full method name of GetStatus.
	GetStatusMethod = "/" + ServiceName + "/GetStatus"
	// ShutdownMethod is the full method name of Shutdown.
	ShutdownMethod = "/" + ServiceName + "/Shutdown"
)

// OperatorServer is the server API of the operator service.
type OperatorServer interface {
	GetStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	Shutdown(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error)
}

// ServiceDesc describes the operator service for grpc.Server.
//
//nolint:gochecknoglobals // Descriptor shape required by grpc.ServiceRegistrar.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OperatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetStatus", Handler: getStatusHandler},
		{MethodName: "Shutdown", Handler: shutdownHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "alarm/ap/v1/operator.proto",
}

// Register attaches srv to the registrar.
func Register(registrar grpc.ServiceRegistrar, srv OperatorServer) {
	registrar.RegisterService(&ServiceDesc, srv)
}

func getStatusHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(OperatorServer).GetStatus(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetStatusMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OperatorServer).GetStatus(ctx, req.(*emptypb.Empty))
	}

	return interceptor(ctx, in, info, handler)
}

func shutdownHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(OperatorServer).Shutdown(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ShutdownMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OperatorServer).Shutdown(ctx, req.(*structpb.Struct))
	}

	return interceptor(ctx, in, info, handler)
}

// Client calls the operator service on an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// GetStatus fetches the controller status.
func (c *Client) GetStatus(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetStatusMethod, new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// Shutdown asks the controller to stop on behalf of the actor in req.
func (c *Client) Shutdown(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, ShutdownMethod, req, new(emptypb.Empty), opts...)
}
