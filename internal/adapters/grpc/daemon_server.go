package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	"github.com/andrescamacho/eve-pi-go/internal/application/common"
)

// DaemonServer serves the sync control plane on a unix domain socket
type DaemonServer struct {
	listener   net.Listener
	grpcServer *grpc.Server
	socketPath string
	logger     common.Logger
}

// NewDaemonServer creates the listener and registers the control service. Any stale
// socket file at socketPath is removed first.
func NewDaemonServer(runner SyncController, socketPath string, logger common.Logger) (*DaemonServer, error) {
	// Remove existing socket file if present
	if err := os.RemoveAll(socketPath); err != nil {
		return nil, fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create unix socket listener: %w", err)
	}

	// Owner only
	if err := os.Chmod(socketPath, 0600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}

	server := &DaemonServer{
		listener:   listener,
		socketPath: socketPath,
		logger:     logger,
	}
	server.grpcServer = grpc.NewServer(grpc.UnaryInterceptor(server.withLogger))
	RegisterSyncControlServer(server.grpcServer, newDaemonServiceImpl(runner))
	return server, nil
}

// withLogger makes the daemon logger available to handlers
func (s *DaemonServer) withLogger(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if s.logger != nil {
		ctx = common.WithLogger(ctx, s.logger)
	}
	return handler(ctx, req)
}

// Serve blocks serving requests until ctx is cancelled, then stops gracefully
func (s *DaemonServer) Serve(ctx context.Context) error {
	logger := common.LoggerFromContext(ctx)
	logger.Log(common.LevelInfo, "Daemon control plane listening", map[string]interface{}{
		"socket": s.listener.Addr().String(),
	})

	errChan := make(chan error, 1)
	go func() {
		if err := s.grpcServer.Serve(s.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Log(common.LevelInfo, "Initiating graceful shutdown of control plane", nil)
		s.grpcServer.GracefulStop()
		os.Remove(s.socketPath)
		return nil
	}
}

// Addr returns the socket the server listens on
func (s *DaemonServer) Addr() string {
	return s.socketPath
}
