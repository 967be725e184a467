package payment

import (
	"errors"
	"testing"

	"tourbooking/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

func sign(payload string) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: []byte(payload),
		Secret:  testWebhookSecret,
	}).Header
}

func TestStripeVerifier_EmailFromCustomerDetails(t *testing.T) {
	payload := `{"id":"evt_3","object":"event","type":"checkout.session.completed","data":{"object":{
		"id":"cs_9","object":"checkout.session","status":"complete",
		"client_reference_id":"tour_7","customer_details":{"email":"late@b.com"}}}}`

	evt, err := NewStripeVerifier(testWebhookSecret).Verify([]byte(payload), sign(payload))
	require.NoError(t, err)
	require.NotNil(t, evt.Session)
	assert.Equal(t, "late@b.com", evt.Session.CustomerEmail)
	assert.Equal(t, int64(0), evt.Session.AmountTotal)
	assert.Equal(t, 0.0, evt.Session.Price())
}

func TestStripeVerifier_MissingStatusMeansCompleted(t *testing.T) {
	payload := `{"id":"evt_4","object":"event","type":"checkout.session.completed","data":{"object":{
		"id":"cs_10","object":"checkout.session","customer_email":"a@b.com","client_reference_id":"tour_1"}}}`

	evt, err := NewStripeVerifier(testWebhookSecret).Verify([]byte(payload), sign(payload))
	require.NoError(t, err)
	assert.True(t, evt.Session.IsCompleted())
}

func TestStripeVerifier_OpenSessionKeepsStatus(t *testing.T) {
	payload := `{"id":"evt_5","object":"event","type":"checkout.session.completed","data":{"object":{
		"id":"cs_11","object":"checkout.session","status":"open","customer_email":"a@b.com","client_reference_id":"tour_1"}}}`

	evt, err := NewStripeVerifier(testWebhookSecret).Verify([]byte(payload), sign(payload))
	require.NoError(t, err)
	assert.Equal(t, domain.SessionOpen, evt.Session.Status)
	assert.False(t, evt.Session.IsCompleted())
}

func TestStripeVerifier_EmptySignature(t *testing.T) {
	_, err := NewStripeVerifier(testWebhookSecret).Verify([]byte(completedEvent), "")
	assert.True(t, errors.Is(err, ErrInvalidSignature))
}

func TestIsStripeNotFound(t *testing.T) {
	assert.True(t, isStripeNotFound(&stripe.Error{HTTPStatusCode: 404}))
	assert.True(t, isStripeNotFound(&stripe.Error{Code: stripe.ErrorCodeResourceMissing}))
	assert.False(t, isStripeNotFound(&stripe.Error{HTTPStatusCode: 500}))
	assert.False(t, isStripeNotFound(errors.New("boom")))
}
