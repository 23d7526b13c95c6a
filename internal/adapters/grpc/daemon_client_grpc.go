package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// DaemonClientGRPC talks to the daemon's sync control plane
type DaemonClientGRPC struct {
	conn *grpc.ClientConn
}

// NewDaemonClientGRPC creates a new gRPC daemon client.
// socketPath is a unix domain socket path (e.g. "/tmp/eve-pi-daemon.sock").
func NewDaemonClientGRPC(socketPath string) (*DaemonClientGRPC, error) {
	conn, err := grpc.NewClient(
		"unix:"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon socket: %w", err)
	}
	return &DaemonClientGRPC{conn: conn}, nil
}

// Close closes the gRPC connection
func (c *DaemonClientGRPC) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// TriggerSync asks the daemon to run a sync now
func (c *DaemonClientGRPC) TriggerSync(ctx context.Context) (*TriggerResult, error) {
	out, err := c.invoke(ctx, triggerSyncMethod)
	if err != nil {
		return nil, fmt.Errorf("failed to trigger sync: %w", err)
	}
	fields := out.AsMap()
	return &TriggerResult{
		Accepted: boolField(fields, "accepted"),
		Pending:  boolField(fields, "pending"),
	}, nil
}

// GetSyncStatus returns the daemon's sync runner status
func (c *DaemonClientGRPC) GetSyncStatus(ctx context.Context) (*SyncStatus, error) {
	out, err := c.invoke(ctx, getSyncStatusMethod)
	if err != nil {
		return nil, fmt.Errorf("failed to get sync status: %w", err)
	}
	return structToStatus(out)
}

// HealthCheck pings the daemon
func (c *DaemonClientGRPC) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	out, err := c.invoke(ctx, healthCheckMethod)
	if err != nil {
		return nil, fmt.Errorf("daemon health check failed: %w", err)
	}
	fields := out.AsMap()
	return &HealthStatus{
		Status:  stringField(fields, "status"),
		Version: stringField(fields, "version"),
		Running: boolField(fields, "running"),
	}, nil
}

func (c *DaemonClientGRPC) invoke(ctx context.Context, method string) (*structpb.Struct, error) {
	in := &structpb.Struct{Fields: map[string]*structpb.Value{}}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}
