// Package grpc serves the gRPC side of the account service: the standard
// health service and a session introspection service, behind an interceptor
// that authorizes every call outside the health service.
package grpc

import (
	"context"
	"net"

	"github.com/vincentino1/account-service/internal/common"
	"github.com/vincentino1/account-service/internal/logging"
	"github.com/vincentino1/account-service/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Authorizer validates the authorization metadata of a call.
type Authorizer interface {
	Authorize(ctx context.Context, header string) (*auth.Session, error)
}

type GRPCServer struct {
	address    string
	authorizer Authorizer
	logger     logging.Logger
	health     *health.Server
}

func NewGRPCServer(address string, l logging.Logger, authorizer Authorizer) *GRPCServer {
	return &GRPCServer{
		address:    address,
		authorizer: authorizer,
		logger:     l.With("module", "grpc_server"),
		health:     health.NewServer(),
	}
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.unaryAuthInterceptor),
		grpc.ChainStreamInterceptor(s.streamAuthInterceptor),
	)

	healthpb.RegisterHealthServer(srv, s.health)
	srv.RegisterService(&sessionServiceDesc, s)

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(common.ServiceName, healthpb.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
