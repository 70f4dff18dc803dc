package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/valyala/fastjson"
	"go.uber.org/zap"

	"github.com/iliyamo/cineclub/internal/coordinator"
	"github.com/iliyamo/cineclub/internal/dto"
	"github.com/iliyamo/cineclub/internal/model"
)

// RatingsAPI is the unauthenticated rating upsert used by older
// clients.  Unlike the member route it does not require the movie to
// be marked as watched.
type RatingsAPI struct {
	Coord  *coordinator.Coordinator
	Logger *zap.SugaredLogger
	parser fastjson.ParserPool
}

func NewRatingsAPI(coord *coordinator.Coordinator, logger *zap.SugaredLogger) *RatingsAPI {
	return &RatingsAPI{Coord: coord, Logger: logger}
}

// positive reads a positive integer field of v.
func positive(v *fastjson.Value, key string) (uint64, error) {
	f := v.Get(key)
	if f == nil || f.Type() != fastjson.TypeNumber {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	n, err := f.Uint64()
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, nil
}

// Handle serves every method on /api/ratings; anything but POST is 405.
func (h *RatingsAPI) Handle(c echo.Context) error {
	if c.Request().Method != http.MethodPost {
		c.Response().Header().Set("Allow", http.MethodPost)
		return c.String(http.StatusMethodNotAllowed, fmt.Sprintf("Method %s Not Allowed", c.Request().Method))
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<16))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p := h.parser.Get()
	defer h.parser.Put(p)
	v, err := p.ParseBytes(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	movieID, err := positive(v, "movieId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	userID, err := positive(v, "userId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	rv := v.Get("rating")
	if rv == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": coordinator.ErrInvalidRating.Error()})
	}
	value, err := rv.Int()
	if err != nil || value < model.MinRating || value > model.MaxRating {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": coordinator.ErrInvalidRating.Error()})
	}

	ctx, cancel := requestCtx(c)
	defer cancel()
	r, err := h.Coord.RecordRating(ctx, userID, movieID, value)
	if errors.Is(err, coordinator.ErrUnknownMovie) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	}
	if err != nil {
		h.Logger.Errorw("error updating rating", "movie_id", movieID, "user_id", userID, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error updating rating"})
	}
	return c.JSON(http.StatusOK, dto.FromRating(r))
}
