package session

import (
	"context"
	"fmt"
	"time"
)

// ReapExpired marks every session still PENDING past its ExpiresAt as
// EXPIRED, and deletes terminal sessions (DONE/CANCELLED/EXPIRED) older
// than retentionDays. Grounded on the teacher's retention cleanup service
// (softDeleteOldSessions' "idempotent, safe to run from multiple pods"
// shape), adapted to this domain's single sessions table.
//
// This is documented infrastructure only: running a reaper loop is out of
// scope (§6.3 non-goal), so nothing in the core calls this — a deployment
// that wants session retention enforced would invoke it from an external
// cron job or scheduler.
func (s *Store) ReapExpired(ctx context.Context, retentionDays int) (expired, deleted int64, err error) {
	expireTag, err := s.pool.Exec(ctx, `
		UPDATE sessions SET status = $1, updated_at = now()
		WHERE status = $2 AND expires_at < now()`,
		string(StatusExpired), string(StatusPending),
	)
	if err != nil {
		return 0, 0, fmt.Errorf("reap expired: mark expired: %w", err)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	deleteTag, err := s.pool.Exec(ctx, `
		DELETE FROM sessions
		WHERE status IN ($1, $2, $3) AND updated_at < $4`,
		string(StatusDone), string(StatusCancelled), string(StatusExpired), cutoff,
	)
	if err != nil {
		return expireTag.RowsAffected(), 0, fmt.Errorf("reap expired: delete old sessions: %w", err)
	}

	return expireTag.RowsAffected(), deleteTag.RowsAffected(), nil
}
