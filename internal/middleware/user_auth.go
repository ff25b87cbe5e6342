package middleware

import (
	"log"

	"github.com/gin-gonic/gin"

	"foodorder/internal/auth"
)

// OptionalAuth attaches the principal when a valid token is present and lets
// anonymous requests through. An invalid token is treated as anonymous.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := rawToken(c)
		if err != nil || raw == "" {
			c.Next()
			return
		}

		principal, err := auth.ParseAccessToken(raw, secret)
		if err != nil {
			log.Println("[AUTH] [INFO] ignoring invalid optional token")
			c.Next()
			return
		}

		c.Set(principalKey, &principal)
		c.Next()
	}
}
