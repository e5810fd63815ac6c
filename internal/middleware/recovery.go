package middleware

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jobportal/internal/apperr"
)

// Recovery turns a handler panic into a 500 with an internal error body. The panic value and
// its stack go to the log only.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			err := errors.Newf("panic: %v", r)
			log.Error().
				Err(err).
				Str("stack", fmt.Sprintf("%+v", err)).
				Str("method", c.Request.Method).
				Str("route", c.FullPath()).
				Str("request_id", RequestIDFrom(c)).
				Msg("panic recovered")
			RespondError(c, apperr.Wrap(err, apperr.KindInternal, "internal server error"))
		}()
		c.Next()
	}
}
