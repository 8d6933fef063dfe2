package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/server/respond"
)

const (
	userIDKey        = "userId"
	userEmailKey     = "userEmail"
	authenticatedKey = "authenticated"
)

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	VerifyJWT(token string) (*auth.Claims, error)
}

// AuthConfig controls the auth middleware.
type AuthConfig struct {
	Verifier TokenVerifier
	// Required rejects requests without a bearer token.
	Required bool
	// Public lists route patterns (as registered, e.g. "/api/v1/health")
	// that never need a token. Matching is exact.
	Public []string
}

// Auth validates bearer JWTs and stores identity in context. Without a token
// the request continues anonymously unless cfg.Required is set.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		route := c.FullPath()
		for _, public := range cfg.Public {
			if route != "" && route == public {
				c.Next()
				return
			}
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			if cfg.Required {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}
			c.Next()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") || cfg.Verifier == nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		claims, err := cfg.Verifier.VerifyJWT(token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		c.Set(userIDKey, claims.Subject)
		if claims.Email != "" {
			c.Set(userEmailKey, claims.Email)
		}
		c.Set(authenticatedKey, true)
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userIDKey)
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userEmailKey)
}

// AuthorizeOwner writes 403 and returns false when the request carries a
// token whose subject is not ownerID. Anonymous requests pass.
func AuthorizeOwner(c *gin.Context, ownerID string) bool {
	if !c.GetBool(authenticatedKey) {
		return true
	}
	if UserIDFromContext(c) == ownerID {
		return true
	}
	respond.Error(c, http.StatusForbidden, "forbidden", "cannot act on behalf of another user", nil)
	return false
}
