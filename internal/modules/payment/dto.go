package payment

import "tourbooking/internal/domain"

const EventCheckoutSessionCompleted = "checkout.session.completed"

// Event is a webhook event whose signature has been verified. Session is set
// for checkout session events.
type Event struct {
	ID      string
	Type    string
	Session *domain.PaymentSession
}

type CheckoutRequest struct {
	ItemReference  string
	CustomerEmail  string
	Name           string
	Description    string
	Images         []string
	Currency       string
	UnitAmount     int64
	SuccessURL     string
	CancelURL      string
	IdempotencyKey string
}

type CheckoutSession struct {
	ID  string `json:"id" example:"cs_test_a1b2c3"`
	URL string `json:"url" example:"https://checkout.stripe.com/c/pay/cs_test_a1b2c3"`
}

type CheckoutSessionResponse struct {
	Status  string          `json:"status" example:"success"`
	Session CheckoutSession `json:"session"`
}

type PortalRequest struct {
	Email         string
	Name          string
	ReturnURL     string
	Configuration string
}

type WebhookAck struct {
	Received bool `json:"received" example:"true"`
}
