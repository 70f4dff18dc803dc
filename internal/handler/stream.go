package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/cineclub/internal/middleware"
	"github.com/iliyamo/cineclub/internal/realtime"
)

// StreamHandler serves GET /v1/stream as Server-Sent Events.
type StreamHandler struct {
	Hub       *realtime.Hub
	Logger    *zap.SugaredLogger
	Heartbeat time.Duration
}

func NewStreamHandler(hub *realtime.Hub, logger *zap.SugaredLogger) *StreamHandler {
	return &StreamHandler{Hub: hub, Logger: logger, Heartbeat: 30 * time.Second}
}

func writeEvent(w *echo.Response, ev realtime.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
		return err
	}
	w.Flush()
	return nil
}

func (h *StreamHandler) Stream(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	client := h.Hub.Connect(uid, middleware.ChatEnabled(c))
	if client == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "shutting down"})
	}
	defer h.Hub.Disconnect(client.ID)

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	log := h.Logger.With("client_id", client.ID, "user_id", uid)
	if err := writeEvent(w, realtime.Event{
		Type:      realtime.EventConnected,
		Timestamp: time.Now().UTC(),
		Data:      echo.Map{"client_id": client.ID},
	}); err != nil {
		return nil
	}

	ticker := time.NewTicker(h.Heartbeat)
	defer ticker.Stop()
	ctx := c.Request().Context()
	for {
		select {
		case ev, open := <-client.Events:
			if !open {
				log.Debug("stream closed by hub")
				return nil
			}
			if err := writeEvent(w, ev); err != nil {
				log.Debugw("client gone during send", "error", err)
				return nil
			}
		case <-ticker.C:
			if err := writeEvent(w, realtime.Event{Type: realtime.EventHeartbeat, Timestamp: time.Now().UTC()}); err != nil {
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}
