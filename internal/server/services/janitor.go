package services

import (
	"context"
	"time"

	"github.com/vincentino1/account-service/internal/logging"
	"github.com/vincentino1/account-service/internal/server/repositories/revocations"
)

// RevocationJanitor periodically deletes revocation entries whose tokens
// have expired on their own; such entries can no longer matter.
type RevocationJanitor struct {
	repo     revocations.Repository
	interval time.Duration
	logger   logging.Logger
	now      func() time.Time
}

func NewRevocationJanitor(repo revocations.Repository, interval time.Duration, logger logging.Logger) *RevocationJanitor {
	return &RevocationJanitor{repo: repo, interval: interval, logger: logger, now: time.Now}
}

// PurgeOnce runs a single purge and returns the number of entries removed.
func (j *RevocationJanitor) PurgeOnce(ctx context.Context) (int64, error) {
	n, err := j.repo.PurgeExpired(ctx, j.now())
	if err != nil {
		return 0, storageErr("purge revocations", err)
	}
	return n, nil
}

// Run purges every interval until ctx is cancelled. A non-positive interval
// disables the janitor and Run returns immediately.
func (j *RevocationJanitor) Run(ctx context.Context) {
	if j.interval <= 0 {
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := j.PurgeOnce(ctx)
			if err != nil {
				j.logger.Warn(ctx, "revocation purge failed", "error", err)
				continue
			}
			if n > 0 {
				j.logger.Info(ctx, "expired revocations purged", "count", n)
			}

		case <-ctx.Done():
			return
		}
	}
}
