package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireChat rejects members whose token does not carry the chat
// flag with 403.  It must run after JWTAuth.
func RequireChat() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !ChatEnabled(c) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "chat is not enabled for this member"})
			}
			return next(c)
		}
	}
}
