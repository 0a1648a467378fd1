package security

import (
	"errors"
	"net/http"
	"strings"

	"ticket-resale/internal/status"
	"ticket-resale/models"

	"github.com/labstack/echo/v5"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// RequireUser verifies the bearer token and stores the subject identity
// and role on the request context. Every mutating route runs behind it.
func RequireUser(tm *TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := verifyRequest(tm, c)
			if err != nil {
				return tokenError(c, err)
			}

			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextRole, claims.Role)
			return next(c)
		}
	}
}

// RequireAdmin additionally demands the admin role.
func RequireAdmin(tm *TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := verifyRequest(tm, c)
			if err != nil {
				return tokenError(c, err)
			}
			if claims.Role != models.RoleAdmin {
				return tokenError(c, status.ErrForbidden)
			}

			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextRole, claims.Role)
			return next(c)
		}
	}
}

func verifyRequest(tm *TokenManager, c echo.Context) (*Claims, error) {
	header := c.Request().Header.Get("Authorization")
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return tm.Verify(token)
}

func tokenError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, status.ErrTokenMissing):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Token missing"})
	case errors.Is(err, status.ErrTokenExpired):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Token expired"})
	case errors.Is(err, status.ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Admin access required"})
	default:
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Invalid token"})
	}
}

// UserID returns the authenticated subject previously stored by the
// middleware.
func UserID(c echo.Context) string {
	id, _ := c.Get(ContextUserID).(string)
	return id
}
