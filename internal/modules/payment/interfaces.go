package payment

import (
	"context"

	"tourbooking/internal/domain"
	"tourbooking/internal/modules/booking"
)

type tourReader interface {
	GetByID(ctx context.Context, id string) (*domain.Tour, error)
}

type userReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type checkoutProvider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}

type portalProvider interface {
	OpenBillingPortal(ctx context.Context, req PortalRequest) (string, error)
}

type eventVerifier interface {
	Verify(payload []byte, signature string) (*Event, error)
}

type sessionReconciler interface {
	EnsureBookingForSession(ctx context.Context, trigger booking.Trigger, session domain.PaymentSession) booking.Outcome
}
