package admin

import (
	"context"

	"tourbooking/internal/domain"
	"tourbooking/internal/modules/booking"
)

type IssueRepository interface {
	ListOpen(ctx context.Context, limit int) ([]domain.ReconciliationIssue, error)
	GetBySessionID(ctx context.Context, sessionID string) (*domain.ReconciliationIssue, error)
	Resolve(ctx context.Context, sessionID string) error
}

type SessionReconciler interface {
	EnsureBookingForSessionID(ctx context.Context, trigger booking.Trigger, sessionID string) booking.Outcome
}
