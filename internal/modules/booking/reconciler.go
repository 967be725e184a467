package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tourbooking/internal/domain"
)

const issueRecordTimeout = 5 * time.Second

// Reconciler turns completed payment sessions into bookings. It is the only
// writer of bookings on the payment path and is safe to call any number of
// times, concurrently, from any trigger: the (tour, user) unique constraint in
// the store decides which call creates the booking.
type Reconciler struct {
	users     UserDirectory
	bookings  BookingStore
	sessions  SessionProvider
	issues    IssueRecorder
	publisher BookingPublisher
	timeout   time.Duration
	loggerf   func(format string, args ...interface{})
}

func NewReconciler(
	users UserDirectory,
	bookings BookingStore,
	sessions SessionProvider,
	issues IssueRecorder,
	publisher BookingPublisher,
	timeout time.Duration,
	loggerf func(format string, args ...interface{}),
) *Reconciler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Reconciler{
		users:     users,
		bookings:  bookings,
		sessions:  sessions,
		issues:    issues,
		publisher: publisher,
		timeout:   timeout,
		loggerf:   loggerf,
	}
}

// EnsureBookingForSession makes sure a booking exists for an authentic,
// completed session. It never returns an error: failures are reported as
// anomaly outcomes, logged and recorded for replay.
func (r *Reconciler) EnsureBookingForSession(ctx context.Context, trigger Trigger, session domain.PaymentSession) Outcome {
	if !session.IsCompleted() {
		return r.finish(trigger, session, Outcome{Status: OutcomeSkipped, SessionID: session.ID})
	}

	tourID := strings.TrimSpace(session.ItemReference)
	email := strings.TrimSpace(session.CustomerEmail)
	if tourID == "" || email == "" {
		return r.anomaly(ctx, trigger, session, OutcomeInvalidSession, ErrIncompleteSession)
	}

	opCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	user, err := r.users.GetByEmail(opCtx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return r.anomaly(ctx, trigger, session, OutcomeUnresolvedUser, fmt.Errorf("%w: %s", ErrUnresolvedUser, email))
		}
		return r.anomaly(ctx, trigger, session, OutcomeTransientFailure, fmt.Errorf("%w: lookup user: %v", ErrTransient, err))
	}

	existing, err := r.bookings.FindByTourAndUser(opCtx, tourID, user.ID)
	switch {
	case err == nil:
		return r.finish(trigger, session, Outcome{Status: OutcomeAlreadyExists, SessionID: session.ID, Booking: existing})
	case !errors.Is(err, domain.ErrNotFound):
		return r.anomaly(ctx, trigger, session, OutcomeTransientFailure, fmt.Errorf("%w: find booking: %v", ErrTransient, err))
	}

	b := &domain.Booking{
		TourID:    tourID,
		UserID:    user.ID,
		Price:     session.Price(),
		Paid:      true,
		SessionID: session.ID,
	}
	if err := r.bookings.Create(opCtx, b); err != nil {
		if errors.Is(err, domain.ErrDuplicateBooking) {
			// lost the race to a concurrent trigger
			stored, ferr := r.bookings.FindByTourAndUser(opCtx, tourID, user.ID)
			if ferr != nil {
				stored = nil
			}
			return r.finish(trigger, session, Outcome{Status: OutcomeAlreadyExists, SessionID: session.ID, Booking: stored})
		}
		return r.anomaly(ctx, trigger, session, OutcomeTransientFailure, fmt.Errorf("%w: create booking: %v", ErrTransient, err))
	}

	if r.publisher != nil {
		if err := r.publisher.BookingCreated(opCtx, b); err != nil {
			r.loggerf("level=error msg=booking created event not published booking_id=%d session_id=%s err=%v", b.ID, session.ID, err)
		}
	}

	return r.finish(trigger, session, Outcome{Status: OutcomeCreated, SessionID: session.ID, Booking: b})
}

// EnsureBookingForSessionID reads the session from the provider and then
// reconciles it. The id only selects provider-held state, so it may come from
// an untrusted caller.
func (r *Reconciler) EnsureBookingForSessionID(ctx context.Context, trigger Trigger, sessionID string) Outcome {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" || r.sessions == nil {
		return Outcome{Status: OutcomeInvalidSession, SessionID: sessionID, Err: ErrUnknownSession}
	}

	opCtx, cancel := r.withTimeout(ctx)
	session, err := r.sessions.RetrieveSession(opCtx, sessionID)
	cancel()
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// not recorded: the id may be made up
			out := Outcome{Status: OutcomeInvalidSession, SessionID: sessionID, Err: fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)}
			r.loggerf("level=warn msg=reconciliation skipped unknown session trigger=%s session_id=%s", trigger, sessionID)
			return out
		}
		return r.anomaly(ctx, trigger, domain.PaymentSession{ID: sessionID}, OutcomeTransientFailure, fmt.Errorf("%w: retrieve session: %v", ErrTransient, err))
	}

	return r.EnsureBookingForSession(ctx, trigger, *session)
}

func (r *Reconciler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Reconciler) anomaly(ctx context.Context, trigger Trigger, session domain.PaymentSession, status OutcomeStatus, cause error) Outcome {
	out := Outcome{Status: status, SessionID: session.ID, Err: cause}

	if r.issues != nil && session.ID != "" {
		// the caller's deadline may be what failed; recording gets its own
		recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), issueRecordTimeout)
		defer cancel()
		if err := r.issues.Record(recCtx, session.ID, string(trigger), issueKind(status), cause.Error()); err != nil {
			r.loggerf("level=error msg=reconciliation issue not recorded session_id=%s err=%v", session.ID, err)
		}
	}

	return r.finish(trigger, session, out)
}

func (r *Reconciler) finish(trigger Trigger, session domain.PaymentSession, out Outcome) Outcome {
	var bookingID, userID int64
	if out.Booking != nil {
		bookingID = out.Booking.ID
		userID = out.Booking.UserID
	}

	if out.Err != nil {
		r.loggerf("level=error msg=reconciliation anomaly trigger=%s session_id=%s tour_id=%s email=%s outcome=%s err=%v",
			trigger, session.ID, session.ItemReference, session.CustomerEmail, out.Status, out.Err)
		return out
	}
	r.loggerf("level=info msg=reconciliation finished trigger=%s session_id=%s tour_id=%s user_id=%d booking_id=%d outcome=%s",
		trigger, session.ID, session.ItemReference, userID, bookingID, out.Status)
	return out
}

func issueKind(status OutcomeStatus) domain.IssueKind {
	switch status {
	case OutcomeUnresolvedUser:
		return domain.IssueUnresolvedUser
	case OutcomeInvalidSession:
		return domain.IssueInvalidSession
	default:
		return domain.IssueTransientFailure
	}
}
