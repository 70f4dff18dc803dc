package middleware // middleware contains reusable Echo middleware for the member API

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cineclub/internal/utils"
)

// Context keys set by JWTAuth.
const (
	ctxUserID      = "user_id"
	ctxUserName    = "user_name"
	ctxChatEnabled = "chat_enabled"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the member claims into the request context.  Handlers read them
// back through UserID, UserName and ChatEnabled.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			id, _ := claims.UserID()
			c.Set(ctxUserID, id)
			c.Set(ctxUserName, claims.Name)
			c.Set(ctxChatEnabled, claims.Chat)
			return next(c)
		}
	}
}
