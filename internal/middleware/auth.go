package middleware

import (
	"net/http"
	"strings"

	"tourbooking/internal/pkg/jwt"
	"tourbooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type tokenValidator interface {
	ValidateToken(tokenStr string) (*jwt.Claims, error)
}

// JWTAuth requires a bearer token and exposes user_id and role on the context.
func JWTAuth(tokens tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.Abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Missing Authorization header")
			return
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			return
		}

		tokenStr := strings.TrimSpace(parts[1])
		if tokenStr == "" {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Empty token")
			return
		}

		claims, err := tokens.ValidateToken(tokenStr)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)

		c.Next()
	}
}
