package auth

import (
	"errors"
	"net/http"

	"tourbooking/internal/pkg/response"
	"tourbooking/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

// Handler manages all HTTP interactions for authentication
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
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	userGroup := protected.Group("/users")
	{
		userGroup.GET("/me", h.GetMe)
	}
}

// Login godoc
// @Summary      Log in
// @Description  Checks email and password and returns a bearer token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} LoginResponse
// @Failure      400 {object} map[string]interface{}
// @Failure      401 {object} map[string]interface{}
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.CustomError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Please provide email and password")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ValidationError(c, fields)
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.CustomError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Incorrect email or password")
			return
		}
		h.loggerf("level=error msg=login failed err=%v", err)
		response.CustomError(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		return
	}

	response.Success(c, http.StatusOK, LoginResponse{
		User:  toUserPublic(res.User),
		Token: res.AccessToken,
	})
}

// GetMe godoc
// @Summary      Current user
// @Tags         Auth
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} UserPublic
// @Failure      401 {object} map[string]interface{}
// @Router       /users/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	user, err := h.service.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "The user belonging to this token no longer exists")
			return
		}
		h.loggerf("level=error msg=load current user failed user_id=%d err=%v", userID, err)
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load profile")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": toUserPublic(user)})
}
