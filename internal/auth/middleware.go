// Package auth provides the authentication bounded context: login, JWT
// verification middleware and admin user management.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"pulsecapture_backend/internal/auth/authctx"
	"pulsecapture_backend/internal/auth/repository"
	"pulsecapture_backend/internal/auth/token"
	"pulsecapture_backend/platform/config"
	"pulsecapture_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextUserKey is the gin context key for the authenticated user.
const ContextUserKey = authctx.ContextUserKey

// UserResolver loads the account behind a token. Satisfied by service.Service.
type UserResolver interface {
	ResolveUser(ctx context.Context, id uuid.UUID) (repository.User, error)
}

// Middleware validates the bearer token and loads the user from the database
// on every request, so deactivated accounts lose access immediately.
func Middleware(cfg config.JWTConfig, resolver UserResolver, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			return
		}

		userID, err := token.Parse(cfg, raw)
		if err != nil {
			if errors.Is(err, token.ErrExpired) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Token expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid token"})
			return
		}

		user, err := resolver.ResolveUser(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		if !user.IsActive {
			log.AuthEvent("request", user.Email, false, "inactive account")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User account is inactive"})
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// RequireAdmin restricts a route to users with the admin role. Must run after
// Middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || user.Role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by Middleware.
func CurrentUser(c *gin.Context) (repository.User, bool) {
	return authctx.CurrentUser(c)
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return raw, raw != ""
}
