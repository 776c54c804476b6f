package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/mellowshop/orderdesk/internal/pkg/auth"
)

const (
	// AdminIDContextKey is a gin context key for the authenticated admin id.
	AdminIDContextKey = "adminID"
	authCookieName    = "orderdesk_admin_token"
)

// AdminAuthority validates tokens and checks the roles table.
type AdminAuthority interface {
	ParseToken(token string) (int64, error)
	IsAdmin(ctx context.Context, adminID int64) (bool, error)
}

// AdminRequired ensures the caller carries a valid admin token and holds
// the admin role before accessing dashboard handlers.
func AdminRequired(authority AdminAuthority) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		adminID, err := authority.ParseToken(token)
		if err != nil {
			if err == pkgAuth.ErrInvalidToken {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		ok, err := authority.IsAdmin(c.Request.Context(), adminID)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if !ok {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		c.Set(AdminIDContextKey, adminID)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetAuthCookie writes the admin token cookie to the response.
func SetAuthCookie(c *gin.Context, token string) {
	c.SetCookie(authCookieName, token, 0, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}
