package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/cineclub/internal/coordinator"
	"github.com/iliyamo/cineclub/internal/middleware"
	"github.com/iliyamo/cineclub/internal/repository"
)

// requestTimeout bounds every store round trip a handler makes.
const requestTimeout = 5 * time.Second

func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

func pathID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// mutationError writes the response for an error returned by the
// coordinator.
func mutationError(c echo.Context, logger *zap.SugaredLogger, err error) error {
	var status int
	switch {
	case errors.Is(err, coordinator.ErrNoActingUser):
		status = http.StatusUnauthorized
	case errors.Is(err, coordinator.ErrNotOwner):
		status = http.StatusForbidden
	case errors.Is(err, coordinator.ErrUnknownMovie):
		status = http.StatusNotFound
	case errors.Is(err, coordinator.ErrNotWatched):
		status = http.StatusConflict
	case errors.Is(err, coordinator.ErrInvalidRating),
		errors.Is(err, coordinator.ErrInvalidState),
		errors.Is(err, coordinator.ErrEmptyTitle),
		errors.Is(err, coordinator.ErrEmptyMessage):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, repository.ErrMovieNotFound):
		status = http.StatusNotFound
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrForbidden):
		status = http.StatusForbidden
	case coordinator.IsRemote(err):
		logger.Errorw("store write failed", "request_id", middleware.RequestID(c), "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not save the change"})
	default:
		logger.Errorw("unexpected handler error", "request_id", middleware.RequestID(c), "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}
