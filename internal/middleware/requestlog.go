package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/xid"
	"go.uber.org/zap"
)

const ctxRequestID = "request_id"

// RequestLog tags every request with an xid, echoes it in X-Request-ID
// and logs one line when the handler returns.
func RequestLog(logger *zap.SugaredLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = xid.New().String()
			}
			c.Set(ctxRequestID, id)
			c.Response().Header().Set(echo.HeaderXRequestID, id)

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			fields := []interface{}{
				"id", id,
				"method", req.Method,
				"uri", req.URL.RequestURI(),
				"ip", c.RealIP(),
				"status", c.Response().Status,
				"latency", time.Since(start),
			}
			if uid, ok := UserID(c); ok {
				fields = append(fields, "user_id", uid)
			}
			if err != nil {
				logger.Warnw("http request", append(fields, "error", err)...)
			} else {
				logger.Infow("http request", fields...)
			}
			return nil
		}
	}
}

// RequestID returns the id assigned by RequestLog.
func RequestID(c echo.Context) string {
	s, _ := c.Get(ctxRequestID).(string)
	return s
}
