package admin

import (
	"errors"
	"net/http"
	"strconv"

	"tourbooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	loggerf func(format string, args ...interface{})
}

func NewHandler(service *Service, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{service: service, loggerf: loggerf}
}

// RegisterRoutes expects a group already restricted to admins.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/reconciliation-issues", h.GetOpenIssues)
	admin.POST("/reconciliation-issues/:sessionId/replay", h.ReplayIssue)
}

// GetOpenIssues godoc
// @Summary      List open reconciliation issues
// @Tags         Admin
// @Security     BearerAuth
// @Produce      json
// @Param        limit query int false "Maximum rows (default 100)"
// @Success      200 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Router       /admin/reconciliation-issues [get]
func (h *Handler) GetOpenIssues(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	issues, err := h.service.ListOpenIssues(c.Request.Context(), limit)
	if err != nil {
		h.loggerf("level=error msg=list reconciliation issues failed err=%v", err)
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load issues")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"issues": issues})
}

// ReplayIssue godoc
// @Summary      Replay a reconciliation issue
// @Description  Reads the session from the payment provider again and reconciles it
// @Tags         Admin
// @Security     BearerAuth
// @Produce      json
// @Param        sessionId path string true "Checkout session id"
// @Success      200 {object} ReplayResult
// @Failure      404 {object} map[string]interface{}
// @Router       /admin/reconciliation-issues/{sessionId}/replay [post]
func (h *Handler) ReplayIssue(c *gin.Context) {
	sessionID := c.Param("sessionId")

	res, err := h.service.ReplayIssue(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, ErrIssueNotFound) {
			response.CustomError(c, http.StatusNotFound, "NOT_FOUND", "No reconciliation issue for that session")
			return
		}
		h.loggerf("level=error msg=replay issue failed session_id=%s err=%v", sessionID, err)
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to replay issue")
		return
	}
	h.loggerf("level=info msg=issue replayed by admin session_id=%s outcome=%s resolved=%t admin_id=%d",
		sessionID, res.Outcome, res.Resolved, c.GetInt64("user_id"))
	response.Success(c, http.StatusOK, res)
}
