package booking

import (
	"context"
	"errors"
	"net/http"

	"tourbooking/internal/domain"
	"tourbooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const bookingAlert = "Your booking was successful! Please check your email for a confirmation. If your booking doesn't show up here immediately, please come back later."

type sessionReconciler interface {
	EnsureBookingForSessionID(ctx context.Context, trigger Trigger, sessionID string) Outcome
}

type Handler struct {
	service         *Service
	reconciler      sessionReconciler
	fallbackEnabled bool
	loggerf         func(format string, args ...interface{})
}

// NewHandler wires the booking views. fallbackEnabled turns on reconciliation
// from the checkout success redirect and must be false in production.
func NewHandler(service *Service, reconciler sessionReconciler, fallbackEnabled bool, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{
		service:         service,
		reconciler:      reconciler,
		fallbackEnabled: fallbackEnabled && reconciler != nil,
		loggerf:         loggerf,
	}
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.GET("/bookings/me", h.GetMyBookings)
	rg.GET("/billing", h.GetBilling)
}

// GetMyBookings godoc
// @Summary      List my bookings
// @Description  Lists the caller's bookings. Outside production a session_id from the checkout redirect is reconciled first.
// @Tags         Bookings
// @Security     BearerAuth
// @Produce      json
// @Param        session_id query string false "Checkout session id"
// @Param        alert      query string false "Set to booking after checkout"
// @Success      200 {object} map[string]interface{}
// @Router       /bookings/me [get]
func (h *Handler) GetMyBookings(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	if sessionID := c.Query("session_id"); sessionID != "" {
		if h.fallbackEnabled {
			out := h.reconciler.EnsureBookingForSessionID(c.Request.Context(), TriggerRedirect, sessionID)
			h.loggerf("level=info msg=redirect fallback user_id=%d session_id=%s outcome=%s", userID, sessionID, out.Status)
		} else {
			h.loggerf("level=debug msg=redirect fallback disabled user_id=%d session_id=%s", userID, sessionID)
		}
	}

	bookings, err := h.service.GetMyBookings(c.Request.Context(), userID)
	if err != nil {
		h.loggerf("level=error msg=list bookings failed user_id=%d err=%v", userID, err)
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load bookings")
		return
	}

	data := gin.H{"bookings": bookings}
	if c.Query("alert") == "booking" {
		data["alert"] = bookingAlert
	}
	response.Success(c, http.StatusOK, data)
}

// GetBilling godoc
// @Summary      Billing overview
// @Description  Returns the caller's account and five most recent bookings
// @Tags         Billing
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} BillingResponse
// @Router       /billing [get]
func (h *Handler) GetBilling(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	billing, err := h.service.GetBilling(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.CustomError(c, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		h.loggerf("level=error msg=billing failed user_id=%d err=%v", userID, err)
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load billing")
		return
	}
	response.Success(c, http.StatusOK, billing)
}
