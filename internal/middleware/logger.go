package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jobportal/internal/apperr"
)

// Logger writes one line per request. Authenticated requests carry the subject and role;
// client errors are logged at warn with their error kind, server errors at error with the cause.
func Logger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		last := c.Errors.Last()

		var event *zerolog.Event
		switch {
		case status >= 500:
			event = log.Error()
			if last != nil {
				event = event.Err(last.Err)
			}
		case status >= 400:
			event = log.Warn()
			if last != nil {
				event = event.Str("error_kind", string(apperr.KindOf(last.Err)))
			}
		default:
			event = log.Info()
		}

		if claims, ok := ClaimsFrom(c); ok {
			event = event.Str("subject", claims.SubjectID()).Str("role", string(claims.Role))
		}

		event.
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Str("client_ip", c.ClientIP()).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Str("request_id", RequestIDFrom(c)).
			Msg("http request")
	}
}
