package middleware

import (
	"time"

	"github.com/flavian-jumba/peerly-BE/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RequestLog writes one structured log line per request: method, path,
// status, latency and the acting user when authenticated.
func RequestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		evt := log.Info()
		if c.Writer.Status() >= 500 {
			evt = log.Error()
		}

		if v, ok := c.Get(CurrentUserKey); ok {
			if user, ok := v.(*models.User); ok && user != nil {
				evt = evt.Uint("user_id", user.ID)
			}
		}

		evt.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Msg("request")
	}
}
