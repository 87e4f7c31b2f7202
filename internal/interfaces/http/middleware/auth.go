// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/pharmacy-backend/internal/config"
	"github.com/your-org/pharmacy-backend/internal/domain/user"
	"github.com/your-org/pharmacy-backend/internal/pkg/auth"
)

const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserRole  = "user_role"
)

// AuthMiddleware creates JWT authentication middleware
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	jwtManager := auth.NewJWTManager(cfg)

	return func(c *gin.Context) {
		tokenString := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString == "" {
			abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRole, user.Role(claims.Role))

		c.Next()
	}
}

// RequirePermission rejects actors whose role lacks perm
func RequirePermission(perm user.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFromContext(c)
		if !actor.Authenticated() {
			abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !user.Can(actor.Role, perm) {
			abort(c, http.StatusForbidden, "You do not have permission to perform this action")
			return
		}
		c.Next()
	}
}

// ActorFromContext returns the authenticated actor, or a zero Actor
func ActorFromContext(c *gin.Context) user.Actor {
	var actor user.Actor
	if id, ok := c.Get(ContextUserID); ok {
		actor.UserID, _ = id.(string)
	}
	if role, ok := c.Get(ContextUserRole); ok {
		actor.Role, _ = role.(user.Role)
	}
	return actor
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
	})
}
