package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"voiceagent/internal/pkg/response"
)

// Recovery converts panics into the standard error envelope. Tool callers
// read the envelope regardless of status, so the body matters more than the
// code here.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				log.Printf(
					"panic method=%s path=%s request_id=%s error=%v stack=%s",
					c.Request.Method,
					c.Request.URL.Path,
					c.GetString("request_id"),
					recovered,
					debug.Stack(),
				)
				response.Fail(c, http.StatusInternalServerError, "SYSTEM_DOWN", "Internal server error.")
				c.Abort()
			}
		}()
		c.Next()
	}
}
