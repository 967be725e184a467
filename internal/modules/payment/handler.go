package payment

import (
	"errors"
	"net/http"
	"strings"

	"tourbooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const portalHint = "Billing portal is not available. Save a default customer portal configuration in the Stripe dashboard (test mode) or set STRIPE_BILLING_PORTAL_CONFIGURATION."

type Handler struct {
	service *Service
	baseURL string
	loggerf func(format string, args ...interface{})
}

// NewHandler builds the checkout and billing portal endpoints. An empty
// baseURL makes redirect URLs follow the incoming request's host.
func NewHandler(service *Service, baseURL string, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{service: service, baseURL: strings.TrimRight(baseURL, "/"), loggerf: loggerf}
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.GET("/bookings/checkout-session/:tourId", h.GetCheckoutSession)
	rg.POST("/billing/portal", h.BillingPortal)
}

// GetCheckoutSession godoc
// @Summary      Create checkout session
// @Description  Creates a hosted Stripe Checkout session for one seat on the tour
// @Tags         Payments
// @Security     BearerAuth
// @Produce      json
// @Param        tourId path string true "Tour ID"
// @Success      200 {object} CheckoutSessionResponse
// @Failure      404 {object} map[string]interface{}
// @Failure      503 {object} map[string]interface{}
// @Router       /bookings/checkout-session/{tourId} [get]
func (h *Handler) GetCheckoutSession(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	tourID := strings.TrimSpace(c.Param("tourId"))

	session, err := h.service.CreateCheckoutSession(c.Request.Context(), userID, tourID, h.requestBaseURL(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrTourNotFound):
			response.CustomError(c, http.StatusNotFound, "TOUR_NOT_FOUND", "No tour found with that ID")
		case errors.Is(err, ErrUserNotFound):
			response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "The user belonging to this token no longer exists")
		case errors.Is(err, ErrPaymentsDisabled):
			response.CustomError(c, http.StatusServiceUnavailable, "PAYMENTS_DISABLED", "Payments are not configured")
		default:
			h.loggerf("level=error msg=checkout session failed user_id=%d tour_id=%s err=%v", userID, tourID, err)
			response.CustomError(c, http.StatusBadGateway, "PAYMENT_PROVIDER_ERROR", "Could not create checkout session")
		}
		return
	}

	c.JSON(http.StatusOK, CheckoutSessionResponse{Status: "success", Session: *session})
}

// BillingPortal godoc
// @Summary      Open billing portal
// @Description  Finds or creates the Stripe customer and redirects to a billing portal session
// @Tags         Billing
// @Security     BearerAuth
// @Success      303
// @Failure      400 {object} map[string]interface{}
// @Router       /billing/portal [post]
func (h *Handler) BillingPortal(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	portalURL, err := h.service.BillingPortal(c.Request.Context(), userID, h.requestBaseURL(c))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "The user belonging to this token no longer exists")
			return
		}
		h.loggerf("level=error msg=billing portal failed user_id=%d err=%v", userID, err)
		response.CustomError(c, http.StatusBadRequest, "BILLING_PORTAL_UNAVAILABLE", portalHint)
		return
	}
	c.Redirect(http.StatusSeeOther, portalURL)
}

func (h *Handler) requestBaseURL(c *gin.Context) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	return scheme + "://" + c.Request.Host
}
