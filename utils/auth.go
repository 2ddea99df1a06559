// utils/auth.go
package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LoginPath is where the SPA sends visitors without a valid session.
const LoginPath = "/login"

// AuthMiddleware rejects requests whose session has no authenticated user.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := CurrentSession(c)
		if s == nil {
			RespondUnauthorized(c, "Authentification requise")
			return
		}
		// one read: the user can be logged out concurrently
		user := s.Auth.User()
		if user == nil {
			RespondUnauthorized(c, "Authentification requise")
			return
		}
		c.Set("userId", user.ID)
		c.Set("role", string(user.Role))

		c.Next()
	}
}

// RespondUnauthorized ends the request with a 401 that tells the client to
// go back to the login page.
func RespondUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":    message,
		"redirect": LoginPath,
	})
}
