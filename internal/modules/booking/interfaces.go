package booking

import (
	"context"

	"tourbooking/internal/domain"
)

// UserDirectory resolves a payment's customer email to an account.
// Implementations return domain.ErrNotFound when no account matches.
type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// BookingStore must enforce uniqueness of (tour, user) and report a second
// insert as domain.ErrDuplicateBooking.
type BookingStore interface {
	FindByTourAndUser(ctx context.Context, tourID string, userID int64) (*domain.Booking, error)
	Create(ctx context.Context, b *domain.Booking) error
}

// SessionProvider reads checkout sessions held by the payment provider.
// Unknown session ids yield domain.ErrNotFound.
type SessionProvider interface {
	RetrieveSession(ctx context.Context, id string) (*domain.PaymentSession, error)
}

type IssueRecorder interface {
	Record(ctx context.Context, sessionID, source string, kind domain.IssueKind, detail string) error
}

type BookingPublisher interface {
	BookingCreated(ctx context.Context, b *domain.Booking) error
}

type bookingLister interface {
	ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Booking, error)
}

type userReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
