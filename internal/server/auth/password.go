package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinCost     = 4
	MaxCost     = 15
	DefaultCost = 10
)

// ErrMalformedHash means a stored hash is not a bcrypt hash this hasher
// can check.
var ErrMalformedHash = errors.New("malformed password hash")

// PasswordHasher hashes and verifies passwords with bcrypt. The salt and
// cost are embedded in every hash, so hashes made at an older cost keep
// verifying after the configured cost changes.
type PasswordHasher struct {
	cost  int
	dummy []byte
}

func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost < MinCost || cost > MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, MinCost, MaxCost)
	}

	seed := make([]byte, 18)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("dummy hash seed: %w", err)
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte(base64.StdEncoding.EncodeToString(seed)), cost)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}

	return &PasswordHasher{cost: cost, dummy: dummy}, nil
}

func (h *PasswordHasher) Cost() int { return h.cost }

func (h *PasswordHasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plain matches hash. A mismatch is (false, nil); an
// unusable hash is (false, ErrMalformedHash).
func (h *PasswordHasher) Verify(plain, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ErrMalformedHash
	}
}

// VerifyDummy spends the same work as a real Verify. It is used when no
// account matches, so response time does not reveal whether an email is
// registered.
func (h *PasswordHasher) VerifyDummy(plain string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plain))
}
