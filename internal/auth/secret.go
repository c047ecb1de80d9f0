// Package auth guards the webhook endpoint with a shared secret.
package auth

import (
	"crypto/hmac"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sentineldispatch/dispatch-ingest/internal/models"
)

// SharedSecretMiddleware authenticates requests against a configured secret.
// Either `Authorization: Bearer <secret>` or `X-Api-Key: <secret>` satisfies
// it. An empty secret makes the middleware a no-op: the endpoint is
// deliberately open, which main logs at startup so the default is visible.
func SharedSecretMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		bearer := strings.TrimSpace(c.GetHeader("Authorization"))
		apiKey := strings.TrimSpace(c.GetHeader("X-Api-Key"))

		if equal(bearer, "Bearer "+secret) || equal(apiKey, secret) {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
			OK:    false,
			Error: "Unauthorized",
		})
	}
}

// equal compares credentials in constant time.
func equal(got, want string) bool {
	return hmac.Equal([]byte(got), []byte(want))
}
