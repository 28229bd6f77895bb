package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vincentino1/account-service/internal/common"
	"github.com/vincentino1/account-service/internal/logging"
	"github.com/vincentino1/account-service/internal/server/auth"
	"github.com/vincentino1/account-service/internal/server/repositories/repomanager"
)

// TokenTypeBearer is the only token type this service issues.
const TokenTypeBearer = "Bearer"

// AccessToken is the result of a successful login.
type AccessToken struct {
	Token     string
	TokenType string
	ExpiresAt time.Time
	TokenID   string
}

// SessionService drives the session lifecycle: login issues a token,
// logout revokes it, and Authorize checks it on every request.
type SessionService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	credentials   *CredentialService
	codec         *auth.TokenCodec
	authenticator *auth.Authenticator
	logger        logging.Logger
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, credentials *CredentialService, codec *auth.TokenCodec, logger logging.Logger) *SessionService {
	return &SessionService{
		db:            db,
		repomanager:   m,
		credentials:   credentials,
		codec:         codec,
		authenticator: auth.NewAuthenticator(codec, m.Revocations(db)),
		logger:        logger,
	}
}

// Login authenticates the credentials and issues a fresh access token.
func (s *SessionService) Login(ctx context.Context, email, password string) (*AccessToken, error) {
	account, err := s.credentials.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, claims, err := s.codec.Issue(auth.Identity{AccountID: account.ID, Email: account.Email}, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "login", "account_id", account.ID, "jti", claims.ID)
	return &AccessToken{
		Token:     token,
		TokenType: TokenTypeBearer,
		ExpiresAt: claims.Expiry(),
		TokenID:   claims.ID,
	}, nil
}

// Logout revokes token. A token that does not parse (garbage, forged or
// already expired) cannot be used anyway, so it is accepted without a write.
// Only a revocation store failure is returned.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	claims, err := s.codec.Parse(token)
	if err != nil {
		s.logger.Debug(ctx, "logout with unusable token ignored")
		return nil
	}

	exp := claims.Expiry()
	if err := s.repomanager.Revocations(s.db).Revoke(ctx, claims.ID, &exp); err != nil {
		return common.StorageError("revoke token", err)
	}

	s.logger.Info(ctx, "logout", "account_id", claims.Subject, "jti", claims.ID)
	return nil
}

// Authorize validates an authorization header value. See auth.Authenticator.
func (s *SessionService) Authorize(ctx context.Context, header string) (*auth.Session, error) {
	return s.authenticator.Authorize(ctx, header)
}
