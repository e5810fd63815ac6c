package middleware

import (
	"github.com/gin-gonic/gin"

	"jobportal/internal/apperr"
)

// RespondError writes err as {"error": kind, "message": text} and aborts the chain.
// The error is attached to the context so the request logger can report it.
func RespondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(apperr.HTTPStatus(kind), gin.H{
		"error":   kind,
		"message": apperr.Message(err),
	})
}
