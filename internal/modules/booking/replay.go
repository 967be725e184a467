package booking

import (
	"context"
	"errors"
	"fmt"

	"tourbooking/internal/domain"
)

type issueQueue interface {
	ListOpen(ctx context.Context, limit int) ([]domain.ReconciliationIssue, error)
	Resolve(ctx context.Context, sessionID string) error
}

type ReplayStats struct {
	Replayed  int
	Resolved  int
	StillOpen int
}

// ReplayOpenIssues re-runs reconciliation for open issues, oldest first.
// Settled sessions resolve their issue; failures are re-recorded by the
// reconciler, which bumps the attempt counter.
func ReplayOpenIssues(ctx context.Context, issues issueQueue, reconciler sessionReconciler, limit int, loggerf func(format string, args ...interface{})) (ReplayStats, error) {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}

	var stats ReplayStats
	open, err := issues.ListOpen(ctx, limit)
	if err != nil {
		return stats, fmt.Errorf("list open issues: %w", err)
	}

	for _, issue := range open {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Replayed++

		out := reconciler.EnsureBookingForSessionID(ctx, TriggerReplay, issue.SessionID)
		// a session the provider does not know will never settle
		terminal := out.Status == OutcomeInvalidSession && errors.Is(out.Err, ErrUnknownSession)
		if !out.Settled() && !terminal {
			stats.StillOpen++
			loggerf("level=warn msg=issue still open session_id=%s attempts=%d outcome=%s", issue.SessionID, issue.Attempts+1, out.Status)
			continue
		}

		if err := issues.Resolve(ctx, issue.SessionID); err != nil {
			return stats, fmt.Errorf("resolve issue %s: %w", issue.SessionID, err)
		}
		stats.Resolved++
		loggerf("level=info msg=issue resolved session_id=%s outcome=%s", issue.SessionID, out.Status)
	}
	return stats, nil
}
