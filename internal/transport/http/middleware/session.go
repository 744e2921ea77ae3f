package middleware

import (
	"net/http"

	"github.com/ErlanBelekov/superrichie/internal/requestid"
	"github.com/ErlanBelekov/superrichie/internal/session"
	"github.com/gin-gonic/gin"
)

type sessionParser interface {
	Parse(raw string) (session.Claims, error)
}

// Session requires a valid session cookie and stores the caller's identity
// in the gin context under "userID" and "userEmail".
func Session(sessions sessionParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(session.CookieName)
		if err != nil || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		claims, err := sessions.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("userEmail", claims.Email)
		c.Request = c.Request.WithContext(requestid.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}
