package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/cineclub/internal/catalog"
	"github.com/iliyamo/cineclub/internal/coordinator"
	"github.com/iliyamo/cineclub/internal/dto"
	"github.com/iliyamo/cineclub/internal/middleware"
)

// InboxHandler serves notifications and the group chat.
type InboxHandler struct {
	Coord  *coordinator.Coordinator
	Events Events
	Logger *zap.SugaredLogger
}

func NewInboxHandler(coord *coordinator.Coordinator, events Events, logger *zap.SugaredLogger) *InboxHandler {
	return &InboxHandler{Coord: coord, Events: events, Logger: logger}
}

// Notifications handles GET /v1/notifications.
func (h *InboxHandler) Notifications(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	ns, err := h.Coord.Notifications(ctx, uid)
	if err != nil {
		h.Logger.Errorw("load notifications failed", "user_id", uid, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load notifications"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":  dto.FromNotifications(ns),
		"unread": catalog.UnreadNotifications(ns),
	})
}

// MarkRead handles POST /v1/notifications/:id/read.
func (h *InboxHandler) MarkRead(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Coord.MarkNotificationRead(ctx, uid, id); err != nil {
		return mutationError(c, h.Logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead handles POST /v1/notifications/read-all.
func (h *InboxHandler) MarkAllRead(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Coord.MarkAllNotificationsRead(ctx, uid); err != nil {
		return mutationError(c, h.Logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Messages handles GET /v1/chat/messages.  The optional since query
// parameter (RFC 3339) is the moment the member last opened the chat.
func (h *InboxHandler) Messages(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	var since time.Time
	if raw := c.QueryParam("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid since format"})
		}
		since = t
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	msgs, err := h.Coord.Messages(ctx)
	if err != nil {
		h.Logger.Errorw("load chat failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load messages"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":  dto.FromMessages(msgs),
		"unread": catalog.UnreadMessages(msgs, uid, since),
	})
}

// PostMessage handles POST /v1/chat/messages.
func (h *InboxHandler) PostMessage(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	var req struct {
		Message string `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	m, err := h.Coord.SendMessage(ctx, uid, req.Message)
	if err != nil {
		return mutationError(c, h.Logger, err)
	}
	h.Events.ChatPosted(ctx, m)
	return c.JSON(http.StatusCreated, dto.FromMessage(m))
}
