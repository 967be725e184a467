package payment

import (
	"context"
	"errors"
	"io"
	"net/http"

	"tourbooking/internal/modules/booking"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 64 << 10

type WebhookHandler struct {
	verifier   eventVerifier
	reconciler sessionReconciler
	loggerf    func(format string, args ...interface{})
}

// NewWebhookHandler accepts provider deliveries. A nil verifier means no
// endpoint secret is configured and every delivery is refused.
func NewWebhookHandler(verifier eventVerifier, reconciler sessionReconciler, loggerf func(format string, args ...interface{})) *WebhookHandler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &WebhookHandler{verifier: verifier, reconciler: reconciler, loggerf: loggerf}
}

func (h *WebhookHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings/webhook-checkout", h.WebhookCheckout)
}

// WebhookCheckout godoc
// @Summary      Stripe webhook
// @Description  Verifies the Stripe-Signature header and reconciles completed checkout sessions
// @Tags         Payments
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature header string true "Stripe signature"
// @Success      200 {object} WebhookAck
// @Failure      400 {string} string "Webhook error"
// @Router       /bookings/webhook-checkout [post]
func (h *WebhookHandler) WebhookCheckout(c *gin.Context) {
	if h.verifier == nil {
		h.loggerf("level=error msg=webhook rejected reason=endpoint secret not configured")
		c.String(http.StatusServiceUnavailable, "Webhook error: endpoint secret not configured")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.loggerf("level=warn msg=webhook body unreadable err=%v", err)
		c.String(http.StatusBadRequest, "Webhook error: "+err.Error())
		return
	}

	evt, err := h.verifier.Verify(payload, c.GetHeader("Stripe-Signature"))
	if err != nil && (evt == nil || errors.Is(err, ErrInvalidSignature)) {
		h.loggerf("level=warn msg=webhook signature rejected remote=%s err=%v", c.ClientIP(), err)
		c.String(http.StatusBadRequest, "Webhook error: "+err.Error())
		return
	}
	if err != nil {
		// authentic but unusable; acknowledging stops provider retries
		h.loggerf("level=error msg=webhook event malformed event_id=%s type=%s err=%v", evt.ID, evt.Type, err)
		c.JSON(http.StatusOK, WebhookAck{Received: true})
		return
	}

	if evt.Type == EventCheckoutSessionCompleted && evt.Session != nil {
		// the reconciler bounds its own work; a dropped connection must not cut it short
		ctx := context.WithoutCancel(c.Request.Context())
		out := h.reconciler.EnsureBookingForSession(ctx, booking.TriggerWebhook, *evt.Session)
		h.loggerf("level=info msg=webhook handled event_id=%s session_id=%s outcome=%s", evt.ID, evt.Session.ID, out.Status)
	} else {
		h.loggerf("level=debug msg=webhook event ignored event_id=%s type=%s", evt.ID, evt.Type)
	}

	c.JSON(http.StatusOK, WebhookAck{Received: true})
}
