package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const purgeRevokedSessions = `
DELETE FROM sessions
 WHERE revoked_at IS NOT NULL
   AND revoked_at < $1`

// PurgeRevokedSessions deletes sessions revoked before cutoff and reports how
// many rows were removed. Live sessions are never touched.
func PurgeRevokedSessions(ctx context.Context, db *sql.DB, cutoff time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, purgeRevokedSessions, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge revoked sessions: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge revoked sessions: %w", err)
	}
	return rows, nil
}

// StartRevokedSessionCleaner purges sessions revoked more than retention ago
// once at startup and then every interval, until ctx is done.
func StartRevokedSessionCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	purge := func() {
		rows, err := PurgeRevokedSessions(ctx, db, time.Now().Add(-retention))
		switch {
		case err != nil && ctx.Err() == nil:
			log.Error("failed to clean revoked sessions", zap.Error(err))
		case rows > 0:
			log.Info("cleaned revoked sessions", zap.Int64("removed", rows), zap.Duration("retention", retention))
		}
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		if ctx.Err() != nil {
			return
		}
		purge()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				purge()
			}
		}
	}()
}
