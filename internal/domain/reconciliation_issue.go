package domain

import "time"

type IssueKind string

const (
	IssueUnresolvedUser   IssueKind = "unresolved_user"
	IssueInvalidSession   IssueKind = "invalid_session"
	IssueTransientFailure IssueKind = "transient_failure"
)

type IssueStatus string

const (
	IssueOpen     IssueStatus = "open"
	IssueResolved IssueStatus = "resolved"
)

// ReconciliationIssue records a completed payment that could not be turned
// into a booking and needs a replay or manual follow-up.
type ReconciliationIssue struct {
	ID         int64       `json:"id"`
	SessionID  string      `json:"session_id"`
	Source     string      `json:"source"`
	Kind       IssueKind   `json:"kind"`
	Detail     string      `json:"detail"`
	Status     IssueStatus `json:"status"`
	Attempts   int         `json:"attempts"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	ResolvedAt *time.Time  `json:"resolved_at,omitempty"`
}
