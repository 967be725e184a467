package booking

import "tourbooking/internal/domain"

type OutcomeStatus string

const (
	OutcomeCreated          OutcomeStatus = "created"
	OutcomeAlreadyExists    OutcomeStatus = "already_exists"
	OutcomeSkipped          OutcomeStatus = "skipped_not_completed"
	OutcomeUnresolvedUser   OutcomeStatus = "unresolved_user"
	OutcomeInvalidSession   OutcomeStatus = "invalid_session"
	OutcomeTransientFailure OutcomeStatus = "transient_failure"
)

// Trigger names the path that asked for reconciliation.
type Trigger string

const (
	TriggerWebhook  Trigger = "webhook"
	TriggerRedirect Trigger = "redirect"
	TriggerReplay   Trigger = "replay"
)

// Outcome is the result of one reconciliation attempt. Err is set only for
// anomalies and wraps one of the package sentinel errors.
type Outcome struct {
	Status    OutcomeStatus
	SessionID string
	Booking   *domain.Booking
	Err       error
}

// Settled reports whether nothing is left to do for the session.
func (o Outcome) Settled() bool {
	switch o.Status {
	case OutcomeCreated, OutcomeAlreadyExists, OutcomeSkipped:
		return true
	}
	return false
}
