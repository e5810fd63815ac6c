package middleware

import (
	"github.com/gin-gonic/gin"

	"jobportal/internal/apperr"
	"jobportal/internal/models"
)

// RequireRoles admits requests whose verified role is in roles. With no roles every
// request passes. The role is read only from claims set by Auth, never from headers.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	if len(roles) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	roleSet := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok || claims.Role == "" {
			RespondError(c, apperr.Forbidden("forbidden"))
			return
		}

		if _, ok := roleSet[claims.Role]; !ok {
			RespondError(c, apperr.Forbidden("forbidden"))
			return
		}

		c.Next()
	}
}
