package facility

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "facility.v1.FacilityService"

// Method names of the facility service.
const (
	MethodActivateGrid   = "ActivateGrid"
	MethodDeactivateGrid = "DeactivateGrid"
	MethodToggle         = "Toggle"
	MethodTriggerBreach  = "TriggerBreach"
	MethodInteract       = "Interact"
	MethodGetStatus      = "GetStatus"
)

// FullMethod returns the "/service/method" path used on the wire.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// FacilityServiceServer is the server API for the facility service.
type FacilityServiceServer interface {
	ActivateGrid(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	DeactivateGrid(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Toggle(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	TriggerBreach(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Interact(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	GetStatus(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
}

// ServiceDesc describes the facility service for grpc.Server.RegisterService.
//
//nolint:gochecknoglobals // Mirrors generated descriptors.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FacilityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodActivateGrid, Handler: structHandler(MethodActivateGrid, FacilityServiceServer.ActivateGrid)},
		{MethodName: MethodDeactivateGrid, Handler: structHandler(MethodDeactivateGrid, FacilityServiceServer.DeactivateGrid)},
		{MethodName: MethodToggle, Handler: structHandler(MethodToggle, FacilityServiceServer.Toggle)},
		{MethodName: MethodTriggerBreach, Handler: structHandler(MethodTriggerBreach, FacilityServiceServer.TriggerBreach)},
		{MethodName: MethodInteract, Handler: structHandler(MethodInteract, FacilityServiceServer.Interact)},
		{MethodName: MethodGetStatus, Handler: getStatusHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "facility/v1/facility.proto",
}

// RegisterFacilityServiceServer registers srv on s.
func RegisterFacilityServiceServer(s grpc.ServiceRegistrar, srv FacilityServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type structMethod func(FacilityServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// structHandler builds the unary handler for a Struct-in, Struct-out method.
func structHandler(method string, call structMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}

		server, _ := srv.(FacilityServiceServer)
		if interceptor == nil {
			return call(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			r, _ := req.(*structpb.Struct)

			return call(server, ctx, r)
		}

		return interceptor(ctx, in, info, handler)
	}
}

func getStatusHandler(
	srv any,
	ctx context.Context, //nolint:revive // Signature fixed by grpc.MethodHandler.
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	server, _ := srv.(FacilityServiceServer)
	if interceptor == nil {
		return server.GetStatus(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(MethodGetStatus)}
	handler := func(ctx context.Context, req any) (any, error) {
		r, _ := req.(*emptypb.Empty)

		return server.GetStatus(ctx, r)
	}

	return interceptor(ctx, in, info, handler)
}

// FacilityServiceClient is the client API for the facility service.
type FacilityServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewFacilityServiceClient creates a client stub over cc.
func NewFacilityServiceClient(cc grpc.ClientConnInterface) *FacilityServiceClient {
	return &FacilityServiceClient{cc: cc}
}

// Call invokes a Struct-in, Struct-out method.
func (c *FacilityServiceClient) Call(
	ctx context.Context,
	method string,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// GetStatus fetches the facility snapshot.
func (c *FacilityServiceClient) GetStatus(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(MethodGetStatus), new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
