package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"

	"tourbooking/internal/domain"
)

// StripeProvider talks to Stripe through a client built once at startup.
type StripeProvider struct {
	api *client.API
}

func NewStripeProvider(secretKey string) *StripeProvider {
	return &StripeProvider{api: client.New(secretKey, nil)}
}

func (p *StripeProvider) RetrieveSession(ctx context.Context, id string) (*domain.PaymentSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	cs, err := p.api.CheckoutSessions.Get(id, params)
	if err != nil {
		if isStripeNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("retrieve checkout session %s: %w", id, err)
	}
	s := toPaymentSession(cs)
	return &s, nil
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(req.Name),
	}
	if req.Description != "" {
		product.Description = stripe.String(req.Description)
	}
	if len(req.Images) > 0 {
		product.Images = stripe.StringSlice(req.Images)
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
		CustomerEmail:      stripe.String(req.CustomerEmail),
		ClientReferenceID:  stripe.String(req.ItemReference),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(req.Currency),
					ProductData: product,
					UnitAmount:  stripe.Int64(req.UnitAmount),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	cs, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &CheckoutSession{ID: cs.ID, URL: cs.URL}, nil
}

// OpenBillingPortal finds or creates the Stripe customer for the email and
// returns a billing portal session URL.
func (p *StripeProvider) OpenBillingPortal(ctx context.Context, req PortalRequest) (string, error) {
	listParams := &stripe.CustomerListParams{Email: stripe.String(req.Email)}
	listParams.Limit = stripe.Int64(1)
	listParams.Context = ctx

	var customer *stripe.Customer
	it := p.api.Customers.List(listParams)
	if it.Next() {
		customer = it.Customer()
	}
	if err := it.Err(); err != nil {
		return "", fmt.Errorf("list customers: %w", err)
	}

	if customer == nil {
		params := &stripe.CustomerParams{Email: stripe.String(req.Email)}
		if req.Name != "" {
			params.Name = stripe.String(req.Name)
		}
		params.Context = ctx
		created, err := p.api.Customers.New(params)
		if err != nil {
			return "", fmt.Errorf("create customer: %w", err)
		}
		customer = created
	}

	portalParams := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customer.ID),
		ReturnURL: stripe.String(req.ReturnURL),
	}
	if req.Configuration != "" {
		portalParams.Configuration = stripe.String(req.Configuration)
	}
	portalParams.Context = ctx

	s, err := p.api.BillingPortalSessions.New(portalParams)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPortalUnavailable, err)
	}
	return s.URL, nil
}

// StripeVerifier authenticates webhook deliveries with the endpoint secret.
type StripeVerifier struct {
	secret string
}

func NewStripeVerifier(secret string) *StripeVerifier {
	return &StripeVerifier{secret: secret}
}

func (v *StripeVerifier) Verify(payload []byte, signature string) (*Event, error) {
	if signature == "" {
		return nil, fmt.Errorf("%w: missing Stripe-Signature header", ErrInvalidSignature)
	}
	evt, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{ID: evt.ID, Type: string(evt.Type)}
	if out.Type != EventCheckoutSessionCompleted {
		return out, nil
	}
	if evt.Data == nil || len(evt.Data.Raw) == 0 {
		return out, fmt.Errorf("%w: event %s has no data object", ErrMalformedEvent, evt.ID)
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(evt.Data.Raw, &cs); err != nil {
		return out, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	s := toPaymentSession(&cs)
	// the event type itself asserts completion; older payloads omit status
	if s.Status == "" {
		s.Status = domain.SessionCompleted
	}
	out.Session = &s
	return out, nil
}

func toPaymentSession(cs *stripe.CheckoutSession) domain.PaymentSession {
	email := cs.CustomerEmail
	if email == "" && cs.CustomerDetails != nil {
		email = cs.CustomerDetails.Email
	}
	return domain.PaymentSession{
		ID:            cs.ID,
		Status:        domain.SessionStatus(cs.Status),
		CustomerEmail: email,
		ItemReference: cs.ClientReferenceID,
		AmountTotal:   cs.AmountTotal,
	}
}

func isStripeNotFound(err error) bool {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return false
	}
	return stripeErr.HTTPStatusCode == http.StatusNotFound || stripeErr.Code == stripe.ErrorCodeResourceMissing
}
