// Package authctx holds the gin context key and accessor for the
// authenticated user, shared by the auth package and its handler.
package authctx

import (
	"pulsecapture_backend/internal/auth/repository"

	"github.com/gin-gonic/gin"
)

// ContextUserKey is the gin context key for the authenticated user.
const ContextUserKey = "currentUser"

// CurrentUser returns the authenticated user set by auth.Middleware.
func CurrentUser(c *gin.Context) (repository.User, bool) {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return repository.User{}, false
	}
	user, ok := value.(repository.User)
	return user, ok
}
