package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by the auth middleware.
const (
	ctxUserID  = "user_id"
	ctxRole    = "role"
	ctxIsAdmin = "is_admin"
)

// JWTAuth validates the Bearer access token issued by the identity provider
// and stores the subject, the role claim and the admin flag in the context.
// Requests without a valid token are rejected with 401.
func JWTAuth(secret, adminRole string) echo.MiddlewareFunc {
	return auth(secret, adminRole, true)
}

// OptionalAuth is JWTAuth for routes that also serve anonymous visitors. A
// missing token passes through; a present but invalid one is still a 401.
func OptionalAuth(secret, adminRole string) echo.MiddlewareFunc {
	return auth(secret, adminRole, false)
}

func auth(secret, adminRole string, required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" && !required {
				return next(c)
			}
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}
			sub, _ := claims.GetSubject()
			if sub == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token has no subject"})
			}
			role, _ := claims["role"].(string)

			c.Set(ctxUserID, sub)
			c.Set(ctxRole, role)
			c.Set(ctxIsAdmin, adminRole != "" && role == adminRole)
			return next(c)
		}
	}
}

// Identity returns the authenticated user id and admin flag, or "" and false
// for anonymous requests.
func Identity(c echo.Context) (userID string, isAdmin bool) {
	userID, _ = c.Get(ctxUserID).(string)
	isAdmin, _ = c.Get(ctxIsAdmin).(bool)
	return userID, isAdmin
}
