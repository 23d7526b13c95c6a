package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/eve-pi-go/internal/application/colonysync"
	"github.com/andrescamacho/eve-pi-go/internal/application/common"
)

// Version is reported by the health check
const Version = "0.1.0"

// SyncController is the part of the sync runner exposed over the control plane
type SyncController interface {
	Trigger() bool
	Status() colonysync.Status
}

// daemonServiceImpl implements SyncControlServer on top of the sync runner
type daemonServiceImpl struct {
	runner SyncController
}

func newDaemonServiceImpl(runner SyncController) *daemonServiceImpl {
	return &daemonServiceImpl{runner: runner}
}

// NewDaemonServiceImpl creates the service implementation (exported for testing)
func NewDaemonServiceImpl(runner SyncController) SyncControlServer {
	return newDaemonServiceImpl(runner)
}

// TriggerSync queues an immediate sync run. A trigger that arrives while another is
// still pending is absorbed; the response says so.
func (s *daemonServiceImpl) TriggerSync(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	accepted := s.runner.Trigger()
	common.LoggerFromContext(ctx).Log(common.LevelInfo, "Sync triggered over control plane", map[string]interface{}{
		"accepted": accepted,
	})
	resp, err := structpb.NewStruct(map[string]interface{}{
		"accepted": accepted,
		"pending":  !accepted,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return resp, nil
}

// GetSyncStatus returns the runner status and the last run report
func (s *daemonServiceImpl) GetSyncStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	resp, err := statusToStruct(s.runner.Status())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode status: %v", err)
	}
	return resp, nil
}

func (s *daemonServiceImpl) HealthCheck(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	resp, err := structpb.NewStruct(map[string]interface{}{
		"status":  "ok",
		"version": Version,
		"running": s.runner.Status().Running,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return resp, nil
}
