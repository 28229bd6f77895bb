package auth

import (
	"context"
	"strings"

	"github.com/vincentino1/account-service/internal/common"
)

// RevocationChecker is the read side of the revocation store.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Authenticator turns an authorization header into a Session. Checks run
// in order: header shape, token signature and expiry, revocation.
type Authenticator struct {
	codec   *TokenCodec
	revoked RevocationChecker
}

func NewAuthenticator(codec *TokenCodec, revoked RevocationChecker) *Authenticator {
	return &Authenticator{codec: codec, revoked: revoked}
}

// BearerToken extracts the token from an authorization header value. The
// "Bearer " prefix is matched exactly.
func BearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, common.BearerPrefix)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// Authorize returns common.ErrNoToken, common.ErrInvalidToken or
// common.ErrTokenRevoked on rejection, and common.ErrStorageUnavailable when
// the revocation store cannot be consulted.
func (a *Authenticator) Authorize(ctx context.Context, header string) (*Session, error) {
	token, ok := BearerToken(header)
	if !ok {
		return nil, common.ErrNoToken
	}

	claims, err := a.codec.Parse(token)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	revoked, err := a.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, common.StorageError("check revocation", err)
	}
	if revoked {
		return nil, common.ErrTokenRevoked
	}

	return &Session{
		AccountID: claims.Subject,
		Email:     claims.Email,
		TokenID:   claims.ID,
		ExpiresAt: claims.Expiry(),
	}, nil
}
