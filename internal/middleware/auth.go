package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"jobportal/internal/apperr"
	"jobportal/internal/security"
)

const claimsKey = "access_claims"

type TokenVerifier interface {
	Verify(token string) (*security.Claims, error)
}

// Auth requires a bearer token and stores its verified claims on the context.
// A missing or malformed header is forbidden; a bad or expired token is unauthorized.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		scheme, tokenStr, ok := strings.Cut(authHeader, " ")
		tokenStr = strings.TrimSpace(tokenStr)
		if !ok || !strings.EqualFold(scheme, "Bearer") || tokenStr == "" {
			RespondError(c, apperr.Forbidden("missing bearer token"))
			return
		}

		claims, err := verifier.Verify(tokenStr)
		if err != nil {
			RespondError(c, err)
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by Auth.
func ClaimsFrom(c *gin.Context) (*security.Claims, bool) {
	value, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*security.Claims)
	return claims, ok && claims != nil
}
