package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/vincentino1/account-service/internal/common"
	"github.com/vincentino1/account-service/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const healthServicePrefix = "/grpc.health.v1.Health/"

func requiresAuth(fullMethod string) bool {
	return !strings.HasPrefix(fullMethod, healthServicePrefix)
}

// authorize runs the authorizer on the "authorization" metadata and returns
// a context carrying the session.
func (s *GRPCServer) authorize(ctx context.Context, method string) (context.Context, error) {
	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AuthorizationHeaderName); len(values) > 0 {
			header = values[0]
		}
	}

	session, err := s.authorizer.Authorize(ctx, header)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			s.logger.Debug(ctx, "call not authorized", "method", method, "reason", err.Error())
			return nil, status.Error(codes.Unauthenticated, "unauthorized")
		}
		s.logger.Error(ctx, "authorization check failed", "method", method, "error", err)
		return nil, status.Error(codes.Unavailable, "service unavailable")
	}

	return auth.WithSession(ctx, session), nil
}

func (s *GRPCServer) unaryAuthInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !requiresAuth(info.FullMethod) {
		return handler(ctx, req)
	}

	ctx, err := s.authorize(ctx, info.FullMethod)
	if err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

type authedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (a *authedStream) Context() context.Context { return a.ctx }

func (s *GRPCServer) streamAuthInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	if !requiresAuth(info.FullMethod) {
		return handler(srv, ss)
	}

	ctx, err := s.authorize(ss.Context(), info.FullMethod)
	if err != nil {
		return err
	}
	return handler(srv, &authedStream{ServerStream: ss, ctx: ctx})
}
