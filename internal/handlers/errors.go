package handlers

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"jobportal/internal/apperr"
	"jobportal/internal/middleware"
)

func (h HandlerSet) fail(c *gin.Context, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	middleware.RespondError(c, err)
}

// bindJSON decodes the request body into dst, reporting malformed input as a
// validation error.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperr.New(apperr.KindPayloadTooLarge, "request body too large")
		}
		return apperr.Wrap(err, apperr.KindValidation, "invalid request body")
	}
	return nil
}
