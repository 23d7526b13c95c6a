package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Fully qualified names of the sync control service and its methods
const (
	SyncControlServiceName = "evepi.daemon.v1.SyncControl"

	triggerSyncMethod   = "/" + SyncControlServiceName + "/TriggerSync"
	getSyncStatusMethod = "/" + SyncControlServiceName + "/GetSyncStatus"
	healthCheckMethod   = "/" + SyncControlServiceName + "/HealthCheck"
)

// SyncControlServer is the server API of the sync control service. Every message is a
// google.protobuf.Struct.
type SyncControlServer interface {
	TriggerSync(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetSyncStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	HealthCheck(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// SyncControlServiceDesc describes the service for grpc.Server.RegisterService
var SyncControlServiceDesc = grpc.ServiceDesc{
	ServiceName: SyncControlServiceName,
	HandlerType: (*SyncControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "TriggerSync", Handler: unaryHandler(triggerSyncMethod, SyncControlServer.TriggerSync)},
		{MethodName: "GetSyncStatus", Handler: unaryHandler(getSyncStatusMethod, SyncControlServer.GetSyncStatus)},
		{MethodName: "HealthCheck", Handler: unaryHandler(healthCheckMethod, SyncControlServer.HealthCheck)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "evepi/daemon/v1/sync_control.proto",
}

// RegisterSyncControlServer registers the service implementation on s
func RegisterSyncControlServer(s grpc.ServiceRegistrar, srv SyncControlServer) {
	s.RegisterService(&SyncControlServiceDesc, srv)
}

type structMethod func(SyncControlServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler adapts a Struct-in/Struct-out method to grpc's method handler signature
func unaryHandler(fullMethod string, method structMethod) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return method(srv.(SyncControlServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return method(srv.(SyncControlServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
