package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dheerajaldak/lms-backend/internal/domain/entity"
	"github.com/Dheerajaldak/lms-backend/pkg/helpers"
	"github.com/Dheerajaldak/lms-backend/pkg/response"
)

// Context keys set by Auth.
const (
	CtxUserIDKey    = "userID"
	CtxUserEmailKey = "userEmail"
	CtxUserRoleKey  = "userRole"
)

// Auth reads the session cookie, verifies the token and injects the claims
// into the Gin context. Sessions are stateless: a verified signature plus an
// unexpired exp claim is the whole check.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(helpers.SessionCookieName)
		if err != nil || token == "" {
			response.AbortError(c, http.StatusUnauthorized, "please login again", nil)
			return
		}
		claims, err := jwt.Verify(token)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "please login again", nil)
			return
		}
		c.Set(CtxUserIDKey, claims.Subject)
		c.Set(CtxUserEmailKey, claims.Email)
		c.Set(CtxUserRoleKey, string(claims.Role))
		c.Next()
	}
}

// RequireRole gates a route group on the token's role claim.
func RequireRole(role entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxUserRoleKey) != string(role) {
			response.AbortError(c, http.StatusForbidden, "you do not have permission to access this resource", nil)
			return
		}
		c.Next()
	}
}
