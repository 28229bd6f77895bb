package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vincentino1/account-service/internal/common"
	"github.com/vincentino1/account-service/internal/logging"
	"github.com/vincentino1/account-service/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type fakeAuthorizer struct {
	sessions map[string]*auth.Session
	err      error
	calls    int
}

func (f *fakeAuthorizer) Authorize(_ context.Context, header string) (*auth.Session, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if header == "" {
		return nil, common.ErrNoToken
	}
	s, ok := f.sessions[header]
	if !ok {
		return nil, common.ErrInvalidToken
	}
	return s, nil
}

func newTestServer(a *fakeAuthorizer) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", logging.Nop{}, a)
}

func withAuth(header string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AuthorizationHeaderName, header))
}

func TestInterceptor_HealthIsExempt(t *testing.T) {
	a := &fakeAuthorizer{}
	s := newTestServer(a)

	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	handlerCalled := false
	h := func(ctx context.Context, req any) (any, error) {
		handlerCalled = true
		return "ok", nil
	}

	resp, err := s.unaryAuthInterceptor(context.Background(), nil, info, h)
	require.NoError(t, err)
	assert.True(t, handlerCalled)
	assert.Equal(t, "ok", resp)
	assert.Equal(t, 0, a.calls)
}

func TestInterceptor_MissingToken(t *testing.T) {
	s := newTestServer(&fakeAuthorizer{})

	info := &grpc.UnaryServerInfo{FullMethod: WhoAmIMethod}
	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	}

	_, err := s.unaryAuthInterceptor(context.Background(), nil, info, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "unauthorized", status.Convert(err).Message())
}

func TestInterceptor_InvalidToken(t *testing.T) {
	s := newTestServer(&fakeAuthorizer{})

	info := &grpc.UnaryServerInfo{FullMethod: WhoAmIMethod}
	_, err := s.unaryAuthInterceptor(withAuth("Bearer nope"), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, nil
	})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestInterceptor_StoreDown(t *testing.T) {
	s := newTestServer(&fakeAuthorizer{err: common.StorageError("check revocation", errors.New("down"))})

	info := &grpc.UnaryServerInfo{FullMethod: WhoAmIMethod}
	_, err := s.unaryAuthInterceptor(withAuth("Bearer x"), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, nil
	})
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestInterceptor_ValidTokenStoresSession(t *testing.T) {
	want := &auth.Session{AccountID: "acc-1", TokenID: "jti-1"}
	s := newTestServer(&fakeAuthorizer{sessions: map[string]*auth.Session{"Bearer good": want}})

	info := &grpc.UnaryServerInfo{FullMethod: WhoAmIMethod}
	var got *auth.Session
	_, err := s.unaryAuthInterceptor(withAuth("Bearer good"), nil, info, func(ctx context.Context, req any) (any, error) {
		got, _ = auth.SessionFromContext(ctx)
		return nil, nil
	})
	require.NoError(t, err)
	assert.Same(t, want, got)
}

type fakeStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (f *fakeStream) Context() context.Context { return f.ctx }

func TestStreamInterceptor(t *testing.T) {
	want := &auth.Session{AccountID: "acc-1"}
	s := newTestServer(&fakeAuthorizer{sessions: map[string]*auth.Session{"Bearer good": want}})

	info := &grpc.StreamServerInfo{FullMethod: "/account.v1.SessionService/Watch"}

	err := s.streamAuthInterceptor(nil, &fakeStream{ctx: withAuth("Bearer good")}, info, func(srv any, ss grpc.ServerStream) error {
		got, ok := auth.SessionFromContext(ss.Context())
		require.True(t, ok)
		assert.Same(t, want, got)
		return nil
	})
	require.NoError(t, err)

	err = s.streamAuthInterceptor(nil, &fakeStream{ctx: context.Background()}, info, func(srv any, ss grpc.ServerStream) error {
		t.Fatal("handler should not be called")
		return nil
	})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	health := &grpc.StreamServerInfo{FullMethod: "/grpc.health.v1.Health/Watch"}
	called := false
	err = s.streamAuthInterceptor(nil, &fakeStream{ctx: context.Background()}, health, func(srv any, ss grpc.ServerStream) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}
