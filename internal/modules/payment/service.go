package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"tourbooking/internal/domain"
)

type Service struct {
	tours    tourReader
	users    userReader
	checkout checkoutProvider
	portal   portalProvider
	loggerf  func(format string, args ...interface{})

	currency            string
	portalConfiguration string
}

type ServiceConfig struct {
	Currency            string
	PortalConfiguration string
}

// NewService wires the checkout and portal flows. A nil provider disables the
// corresponding endpoint with ErrPaymentsDisabled.
func NewService(tours tourReader, users userReader, checkout checkoutProvider, portal portalProvider, cfg ServiceConfig, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	currency := strings.ToLower(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = "usd"
	}
	return &Service{
		tours:               tours,
		users:               users,
		checkout:            checkout,
		portal:              portal,
		loggerf:             loggerf,
		currency:            currency,
		portalConfiguration: cfg.PortalConfiguration,
	}
}

// CreateCheckoutSession starts a hosted checkout for one seat on the tour.
// The booking itself is written later by the reconciler.
func (s *Service) CreateCheckoutSession(ctx context.Context, userID int64, tourID, baseURL string) (*CheckoutSession, error) {
	if s.checkout == nil {
		return nil, ErrPaymentsDisabled
	}

	tour, err := s.tours.GetByID(ctx, tourID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("load tour: %w", err)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	base := strings.TrimRight(baseURL, "/")
	req := CheckoutRequest{
		ItemReference:  tour.ID,
		CustomerEmail:  user.Email,
		Name:           tour.Name + " Tour",
		Description:    tour.Summary,
		Currency:       s.currency,
		UnitAmount:     toMinorUnits(tour.Price),
		SuccessURL:     base + "/my-bookings?alert=booking&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:      base + "/tour/" + url.PathEscape(tour.Slug),
		IdempotencyKey: uuid.NewString(),
	}
	if tour.ImageCover != "" {
		req.Images = []string{base + "/img/tours/" + tour.ImageCover}
	}

	session, err := s.checkout.CreateCheckoutSession(ctx, req)
	if err != nil {
		return nil, err
	}
	s.loggerf("level=info msg=checkout session created session_id=%s tour_id=%s user_id=%d amount=%d currency=%s",
		session.ID, tour.ID, user.ID, req.UnitAmount, req.Currency)
	return session, nil
}

// BillingPortal returns the URL of a provider-hosted billing portal for the user.
func (s *Service) BillingPortal(ctx context.Context, userID int64, baseURL string) (string, error) {
	if s.portal == nil {
		return "", ErrPaymentsDisabled
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("load user: %w", err)
	}

	portalURL, err := s.portal.OpenBillingPortal(ctx, PortalRequest{
		Email:         user.Email,
		Name:          user.Name,
		ReturnURL:     strings.TrimRight(baseURL, "/") + "/billing",
		Configuration: s.portalConfiguration,
	})
	if err != nil {
		return "", err
	}
	return portalURL, nil
}

func toMinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}
