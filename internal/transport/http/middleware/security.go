package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
)

// Security sets common HTTP security headers on every response. HSTS and the
// HTTPS redirect only apply in production.
func Security(production bool) gin.HandlerFunc {
	s := secure.New(secure.Options{
		FrameDeny:            true,
		ContentTypeNosniff:   true,
		ReferrerPolicy:       "strict-origin-when-cross-origin",
		PermissionsPolicy:    "camera=(), microphone=(), geolocation=()",
		STSSeconds:           63072000,
		STSIncludeSubdomains: true,
		SSLRedirect:          production,
		SSLProxyHeaders:      map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:        !production,
	})

	return func(c *gin.Context) {
		if err := s.Process(c.Writer, c.Request); err != nil {
			// secure already wrote the redirect or error response.
			c.Abort()
			return
		}
		c.Next()
	}
}
