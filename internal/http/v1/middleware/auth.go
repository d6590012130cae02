package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"atelier/internal/core/actor"
	"atelier/internal/core/apperror"
	"atelier/internal/domain/auth"
)

// TokenValidator validates an access token into a Principal.
type TokenValidator interface {
	ValidateToken(tokenString string) (auth.Principal, error)
}

const principalKey = "principal"

// Auth validates the bearer token and stores the acting user in the
// request context for handlers and the logger.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		principal, err := validator.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		ctx := actor.WithActor(c.Request.Context(), principal.Actor)
		c.Request = c.Request.WithContext(ctx)
		c.Set(principalKey, principal)

		c.Next()
	}
}

// RequireAdmin rejects non-admin principals. Must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			abortUnauthorized(c, "authentication required")
			return
		}
		if !principal.IsAdmin {
			_ = c.Error(apperror.NewForbidden("admin access required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated principal stored by Auth.
func GetPrincipal(c *gin.Context) (auth.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return auth.Principal{}, false
	}
	principal, ok := v.(auth.Principal)
	return principal, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
