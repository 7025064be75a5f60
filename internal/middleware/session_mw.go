package middleware

import (
	"errors"
	"net/http"
	"strings"

	"astro_consult/internal/model"
	"astro_consult/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	AuthUserKey = "authUser"
	AuthRoleKey = "authRole"
)

// SessionAuthMiddleware resolves the bearer token against the session store
func SessionAuthMiddleware(auth service.AuthService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		user, err := auth.ResolveToken(c.Request.Context(), parts[1])
		if err != nil {
			if !errors.Is(err, service.ErrAuth) {
				log.Error("failed to resolve session token", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve session"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(AuthUserKey, user)
		c.Set(AuthRoleKey, user.Role)

		c.Next()
	}
}

// AuthUser returns the user stored by SessionAuthMiddleware
func AuthUser(c *gin.Context) (*model.User, bool) {
	val, exists := c.Get(AuthUserKey)
	if !exists {
		return nil, false
	}
	user, ok := val.(*model.User)
	return user, ok
}
