// Package revocations stores the identifiers (jti) of access tokens that were
// explicitly revoked before their natural expiry.
package revocations

import (
	"context"
	"time"
)

// Repository is the revocation store. It only ever grows on the request
// path; PurgeExpired is the sole way entries leave it.
type Repository interface {
	// Revoke marks tokenID as revoked. Revoking the same id twice, or
	// concurrently, succeeds. expiresAt is advisory and may be nil.
	Revoke(ctx context.Context, tokenID string, expiresAt *time.Time) error

	IsRevoked(ctx context.Context, tokenID string) (bool, error)

	// PurgeExpired deletes entries whose advisory expiry is before the given
	// instant and reports how many were removed. Entries without an expiry
	// are kept.
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}
