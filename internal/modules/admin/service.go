package admin

import (
	"context"
	"errors"

	"tourbooking/internal/domain"
	"tourbooking/internal/modules/booking"
)

var ErrIssueNotFound = errors.New("reconciliation issue not found")

// Service lets operators inspect and retry reconciliation anomalies.
type Service struct {
	issues     IssueRepository
	reconciler SessionReconciler
}

func NewService(issues IssueRepository, reconciler SessionReconciler) *Service {
	return &Service{issues: issues, reconciler: reconciler}
}

func (s *Service) ListOpenIssues(ctx context.Context, limit int) ([]domain.ReconciliationIssue, error) {
	return s.issues.ListOpen(ctx, limit)
}

// ReplayIssue reruns reconciliation for one recorded session and resolves
// the issue once the session is settled.
func (s *Service) ReplayIssue(ctx context.Context, sessionID string) (*ReplayResult, error) {
	if _, err := s.issues.GetBySessionID(ctx, sessionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, err
	}

	out := s.reconciler.EnsureBookingForSessionID(ctx, booking.TriggerReplay, sessionID)
	res := &ReplayResult{SessionID: sessionID, Outcome: string(out.Status)}
	if out.Booking != nil {
		res.BookingID = out.Booking.ID
	}
	if out.Err != nil {
		res.Error = out.Err.Error()
	}
	if !out.Settled() {
		return res, nil
	}

	if err := s.issues.Resolve(ctx, sessionID); err != nil {
		return nil, err
	}
	res.Resolved = true
	return res, nil
}
