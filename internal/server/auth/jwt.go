package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vincentino1/account-service/internal/common"
)

// DefaultTokenTTL is used when a codec or an Issue call is given a
// non-positive lifetime.
const DefaultTokenTTL = time.Hour

// Identity is what an access token asserts about its bearer.
type Identity struct {
	AccountID string
	Email     string
}

// Claims are the registered claims plus the account email. Subject carries
// the account id and ID the token id (jti).
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

func (c *Claims) Identity() Identity {
	return Identity{AccountID: c.Subject, Email: c.Email}
}

// Expiry returns the exp claim, or the zero time when absent.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// TokenCodec issues and verifies HS256-signed access tokens. It is
// immutable after construction and safe for concurrent use.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type CodecOption func(*TokenCodec)

// WithClock replaces time.Now for issuing and for expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) { c.now = now }
}

func NewTokenCodec(secret []byte, ttl time.Duration, opts ...CodecOption) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token codec: empty secret")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	c := &TokenCodec{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs a new token for id that expires after ttl (the codec default
// when ttl <= 0). Every token gets a fresh random jti.
func (c *TokenCodec) Issue(id Identity, ttl time.Duration) (string, *Claims, error) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	now := c.now()

	jti, err := uuid.NewRandom()
	if err != nil {
		return "", nil, fmt.Errorf("token id: %w", err)
	}

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.AccountID,
			ID:        jti.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: id.Email,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, claims, nil
}

// Parse verifies the signature, then expiry, then the presence of sub and
// jti. Every failure is reported as common.ErrInvalidToken.
func (c *TokenCodec) Parse(token string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
