package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"tourbooking/internal/domain"
	"tourbooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const defaultPageSize = 20

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

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	v1.GET("/tours", h.GetTours)
	v1.GET("/tours/:slug", h.GetTour)
}

// GetTours handles GET /api/v1/tours
func (h *Handler) GetTours(c *gin.Context) {
	f := TourFilters{Limit: defaultPageSize}
	if limit := c.Query("limit"); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil && val > 0 && val <= 100 {
			f.Limit = val
		}
	}
	if page := c.Query("page"); page != "" {
		if val, err := strconv.Atoi(page); err == nil && val > 0 {
			f.Offset = (val - 1) * f.Limit
		}
	}

	tours, total, err := h.service.ListTours(c.Request.Context(), f)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"tours": tours,
		"pagination": Pagination{
			Page:       (f.Offset / f.Limit) + 1,
			Limit:      f.Limit,
			Total:      total,
			TotalPages: (int(total) + f.Limit - 1) / f.Limit,
		},
	})
}

// GetTour handles GET /api/v1/tours/:slug
func (h *Handler) GetTour(c *gin.Context) {
	tour, err := h.service.GetTour(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tour": tour})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.CustomError(c, http.StatusNotFound, "NOT_FOUND", "There is no tour with that name")
	default:
		h.loggerf("level=error msg=catalog request failed path=%s err=%v", c.Request.URL.Path, err)
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
	}
}
