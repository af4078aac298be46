package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
)

const (
	// UserIDContextKey is a gin context key for authenticated user identifier.
	UserIDContextKey = "userID"
	authCookieName   = "storefront_token"
	bearerScheme     = "bearer"
)

// TokenParser resolves a session token to a user identifier.
type TokenParser interface {
	ParseToken(token string) (int64, error)
}

// AuthRequired rejects requests without a valid session and stores the
// resolved user id under UserIDContextKey.
func AuthRequired(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		userID, err := tokens.ParseToken(token)
		switch {
		case errors.Is(err, pkgAuth.ErrInvalidToken):
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		case err != nil:
			_ = c.Error(err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		case userID <= 0:
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set(UserIDContextKey, userID)
		c.Next()
	}
}

// extractToken prefers the Authorization header over the session cookie.
func extractToken(c *gin.Context) string {
	scheme, credentials, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if ok && strings.EqualFold(scheme, bearerScheme) {
		return strings.TrimSpace(credentials)
	}

	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetAuthCookie hands the session token back as an HttpOnly cookie and a bearer header.
func SetAuthCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(authCookieName, token, 0, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}
