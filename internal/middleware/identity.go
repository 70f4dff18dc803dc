package middleware

// identity.go holds the accessors for the member identity stored by
// JWTAuth.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// UserID returns the authenticated member id.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxUserID).(uint64)
	return id, ok && id != 0
}

// UserName returns the display name carried by the access token.
func UserName(c echo.Context) string {
	s, _ := c.Get(ctxUserName).(string)
	return s
}

// ChatEnabled reports whether the member may use the group chat.
func ChatEnabled(c echo.Context) bool {
	b, _ := c.Get(ctxChatEnabled).(bool)
	return b
}

// identityKey is the member id as used in rate limit keys, or "anon".
func identityKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
