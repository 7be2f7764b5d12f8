package middleware

import (
	"crypto/subtle"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"voiceagent/internal/pkg/response"
)

// APIKeyAuth gates a route group behind a static key carried in the given
// header. An empty configured key disables the gate, which is the local
// development mode; production config validation refuses to start that way.
func APIKeyAuth(header, expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expected == "" {
			c.Next()
			return
		}

		presented := c.GetHeader(header)
		if subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) != 1 {
			log.Printf("auth_rejected header=%s path=%s request_id=%s", header, c.Request.URL.Path, c.GetString("request_id"))
			response.Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing API key.")
			c.Abort()
			return
		}
		c.Next()
	}
}
