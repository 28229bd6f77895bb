// Package common defines shared constants and sentinel errors used across
// the account service. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal         = errors.New("internal error")
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Authentication failures. Each one wraps ErrorUnauthorized so transports
	// can collapse them into a single response while tests and logs still
	// see the concrete kind.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrorUnauthorized)
	ErrNoToken            = fmt.Errorf("%w: missing bearer token", ErrorUnauthorized)
	ErrInvalidToken       = fmt.Errorf("%w: invalid token", ErrorUnauthorized)
	ErrTokenRevoked       = fmt.Errorf("%w: token revoked", ErrorUnauthorized)
)

// StorageError hides the concrete cause behind ErrStorageUnavailable. The
// cause is kept in the message only, so driver error types never leak past
// the service layer.
func StorageError(op string, cause error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, cause)
}
