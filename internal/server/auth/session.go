package auth

import (
	"context"
	"time"
)

// Session is the authenticated identity attached to a request once its
// bearer token passed every check.
type Session struct {
	AccountID string
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

type sessionKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the Session stored by WithSession, if any.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}
