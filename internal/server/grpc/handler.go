package grpc

import (
	"context"
	"time"

	"github.com/vincentino1/account-service/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// WhoAmIMethod lets other services resolve a bearer token into the
// session it represents. Messages are protobuf well-known types, so no
// generated code is needed.
const WhoAmIMethod = "/account.v1.SessionService/WhoAmI"

type sessionServer interface {
	WhoAmI(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

var sessionServiceDesc = grpc.ServiceDesc{
	ServiceName: "account.v1.SessionService",
	HandlerType: (*sessionServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "WhoAmI", Handler: whoAmIHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "account/v1/session.proto",
}

func whoAmIHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(sessionServer).WhoAmI(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WhoAmIMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(sessionServer).WhoAmI(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// WhoAmI returns the session of the calling token. The interceptor has
// already rejected unauthorized calls.
func (s *GRPCServer) WhoAmI(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	out, err := structpb.NewStruct(map[string]any{
		"account_id": session.AccountID,
		"email":      session.Email,
		"token_id":   session.TokenID,
		"expires_at": session.ExpiresAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}
