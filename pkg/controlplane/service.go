package controlplane

import (
	"context"

	"google.golang.org/grpc"
)

// serviceName identifies this gRPC service in method paths, the way a .proto
// package + service name would ("/vector.controlplane.ControlPlane/Reload").
const serviceName = "vector.controlplane.ControlPlane"

// handler is the subset of Server's behavior the generated-style service descriptor
// below dispatches to; kept as an interface so tests can register a fake.
type handler interface {
	reload(ctx context.Context, req *ReloadRequest) (*ReloadResponse, error)
	shutdown(ctx context.Context, req *ShutdownRequest) (*ShutdownResponse, error)
	status(ctx context.Context, req *StatusRequest) (*StatusResponse, error)
	tap(req *TapRequest, stream grpc.ServerStream) error
}

// serviceDesc mirrors what protoc-gen-go-grpc would emit for a service declaring
// three unary RPCs and one server-streaming RPC: a stable method table gRPC's
// server dispatches incoming calls through by HTTP/2 path.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*handler)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Reload", Handler: reloadHandler},
		{MethodName: "Shutdown", Handler: shutdownHandler},
		{MethodName: "Status", Handler: statusHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Tap", Handler: tapHandler, ServerStreams: true},
	},
	Metadata: "vector/controlplane.proto",
}

func reloadHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(ReloadRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	h := srv.(handler)
	if interceptor == nil {
		return h.reload(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Reload"}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return h.reload(ctx, req.(*ReloadRequest))
	})
}

func shutdownHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(ShutdownRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	h := srv.(handler)
	if interceptor == nil {
		return h.shutdown(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Shutdown"}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return h.shutdown(ctx, req.(*ShutdownRequest))
	})
}

func statusHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(StatusRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	h := srv.(handler)
	if interceptor == nil {
		return h.status(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Status"}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return h.status(ctx, req.(*StatusRequest))
	})
}

func tapHandler(srv any, stream grpc.ServerStream) error {
	req := new(TapRequest)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(handler).tap(req, stream)
}
