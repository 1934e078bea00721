package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"consultly/utils"
)

// AuthMiddleware validates the bearer token and stows the actor's id and role
// on the request context. Token issuance belongs to the external identity
// service; whatever it signed is trusted as given.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		actorID, role, err := utils.ExtractActorFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		c.Set("actorID", actorID)
		c.Set("actorRole", role)
		c.Next()
	}
}

// ActorID returns the authenticated actor id set by AuthMiddleware.
func ActorID(c *gin.Context) string {
	return c.GetString("actorID")
}

// RequireRole rejects requests whose token does not carry the given role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("actorRole") != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			return
		}
		c.Next()
	}
}
