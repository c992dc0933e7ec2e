package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"realtycrm/internal/authz"
)

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(CtxRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no role in context"})
			return
		}
		role, _ := v.(string)
		if !authz.IsAdmin(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// RequireUninstalled hides the install wizard once setup has finished.
func RequireUninstalled(installed func() bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if installed() {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "application is already installed"})
			return
		}
		c.Next()
	}
}
