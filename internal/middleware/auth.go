package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"foodorder/internal/auth"
	"foodorder/internal/authz"
	"foodorder/internal/models"
)

// TokenCookie is the cookie login sets alongside the JSON token.
const TokenCookie = "token"

const principalKey = "principal"

// rawToken prefers the Authorization header and falls back to the cookie.
func rawToken(c *gin.Context) (string, error) {
	token, err := auth.BearerToken(c.GetHeader("Authorization"))
	if err != nil {
		return "", err
	}
	if token != "" {
		return token, nil
	}
	cookie, err := c.Cookie(TokenCookie)
	if err != nil {
		return "", nil
	}
	return cookie, nil
}

// Authenticate rejects requests without a valid access token and stores the
// principal in the context.
func Authenticate(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := rawToken(c)
		if err != nil {
			log.Println("[AUTH] [ERROR] invalid token format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Access denied. No token provided."})
			return
		}

		principal, err := auth.ParseAccessToken(raw, secret)
		if err != nil {
			log.Println("[AUTH] [ERROR] token validation failed:", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		c.Set(principalKey, &principal)
		c.Next()
	}
}

// RequireCapability must run after Authenticate.
func RequireCapability(capability authz.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := PrincipalFrom(c)
		if principal == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Access denied. No token provided."})
			return
		}
		if !authz.Can(principal, capability) {
			log.Printf("[AUTH] [ERROR] %s denied %s", principal.Role, capability)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied"})
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns nil for anonymous requests.
func PrincipalFrom(c *gin.Context) *models.Principal {
	value, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	principal, _ := value.(*models.Principal)
	return principal
}
