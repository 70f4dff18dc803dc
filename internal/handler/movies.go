package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/cineclub/internal/catalog"
	"github.com/iliyamo/cineclub/internal/coordinator"
	"github.com/iliyamo/cineclub/internal/dto"
	"github.com/iliyamo/cineclub/internal/middleware"
	"github.com/iliyamo/cineclub/internal/model"
)

// Events is where handlers announce stored rows.
type Events interface {
	MovieAdded(ctx context.Context, m model.Movie, creator string)
	ChatPosted(ctx context.Context, m model.ChatMessage)
}

// MovieHandler serves the movie list, its mutations and the views
// derived from it.
type MovieHandler struct {
	Coord  *coordinator.Coordinator
	Events Events
	Logger *zap.SugaredLogger
}

func NewMovieHandler(coord *coordinator.Coordinator, events Events, logger *zap.SugaredLogger) *MovieHandler {
	return &MovieHandler{Coord: coord, Events: events, Logger: logger}
}

type movieReq struct {
	Title    *string `json:"title"`
	Genre    *string `json:"genre"`
	Year     *int    `json:"year"`
	Poster   *string `json:"poster"`
	Synopsis *string `json:"synopsis"`
	Duration *int    `json:"duration"`
	Director *string `json:"director"`
	View     string  `json:"view"` // initial state on create, ignored on update
}

type createResp struct {
	Movie     dto.Movie `json:"movie"`
	ViewError string    `json:"view_error,omitempty"`
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func num(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// filterFromQuery reads the list filter and sort mode from the query
// string.  Unknown values are a 400.
func filterFromQuery(c echo.Context) (catalog.Filter, catalog.SortMode, error) {
	var f catalog.Filter
	view, err := catalog.ParseViewFilter(c.QueryParam("view"))
	if err != nil {
		return f, "", err
	}
	f.ViewStatus = view
	if g := strings.TrimSpace(c.QueryParam("genres")); g != "" {
		f.Genres = strings.Split(g, ",")
	}
	for _, p := range []struct {
		name string
		dst  **int
	}{{"year_from", &f.YearFrom}, {"year_to", &f.YearTo}} {
		raw := strings.TrimSpace(c.QueryParam(p.name))
		if raw == "" {
			continue
		}
		y, err := strconv.Atoi(raw)
		if err != nil {
			return f, "", fmt.Errorf("invalid %s", p.name)
		}
		*p.dst = &y
	}
	for _, p := range []struct {
		name string
		dst  *bool
	}{{"mine", &f.OnlyMine}, {"unrated", &f.UnratedOnly}} {
		raw := strings.TrimSpace(c.QueryParam(p.name))
		if raw == "" {
			continue
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return f, "", fmt.Errorf("invalid %s", p.name)
		}
		*p.dst = b
	}
	mode, err := catalog.ParseSortMode(c.QueryParam("sort"))
	if err != nil {
		return f, "", err
	}
	return f, mode, nil
}

// List handles GET /v1/movies.
func (h *MovieHandler) List(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	f, mode, err := filterFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	movies := catalog.View(h.Coord.Movies(), f, mode, uid)
	return c.JSON(http.StatusOK, dto.FromMovies(movies, uid))
}

// Get handles GET /v1/movies/:id.
func (h *MovieHandler) Get(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	m, found := h.Coord.Movie(id)
	if !found {
		return c.JSON(http.StatusNotFound, echo.Map{"error": coordinator.ErrUnknownMovie.Error()})
	}
	return c.JSON(http.StatusOK, dto.FromMovie(m, uid))
}

// Create handles POST /v1/movies.  A failed initial view mark does not
// undo the movie; the error is reported next to it.
func (h *MovieHandler) Create(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if str(req.Title) == "" || str(req.Genre) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and genre are required"})
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	res, err := h.Coord.AddMovie(ctx, uid, coordinator.MovieDraft{
		Title:       str(req.Title),
		Genre:       str(req.Genre),
		Year:        num(req.Year),
		Poster:      str(req.Poster),
		Synopsis:    str(req.Synopsis),
		Duration:    num(req.Duration),
		Director:    str(req.Director),
		InitialView: model.ViewState(strings.TrimSpace(req.View)),
	})
	if err != nil {
		return mutationError(c, h.Logger, err)
	}
	h.Events.MovieAdded(ctx, res.Movie, middleware.UserName(c))

	out := createResp{Movie: dto.FromMovie(res.Movie, uid)}
	if res.ViewErr != nil {
		out.ViewError = "the movie was added but its view state could not be saved"
	}
	return c.JSON(http.StatusCreated, out)
}

// Update handles PUT and PATCH /v1/movies/:id.  Only the creator may
// edit; absent fields keep their value.
func (h *MovieHandler) Update(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	m, err := h.Coord.EditMovie(ctx, uid, id, coordinator.MoviePatch{
		Title:    req.Title,
		Genre:    req.Genre,
		Year:     req.Year,
		Poster:   req.Poster,
		Synopsis: req.Synopsis,
		Duration: req.Duration,
		Director: req.Director,
	})
	if err != nil {
		return mutationError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, dto.FromMovie(m, uid))
}

// Delete handles DELETE /v1/movies/:id.
func (h *MovieHandler) Delete(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Coord.DeleteMovie(ctx, uid, id); err != nil {
		return mutationError(c, h.Logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetView handles PUT /v1/movies/:id/view.
func (h *MovieHandler) SetView(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	var req struct {
		State string `json:"state"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	m, err := h.Coord.ToggleView(ctx, uid, id, model.ViewState(strings.TrimSpace(req.State)))
	if err != nil {
		return mutationError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, dto.FromMovie(m, uid))
}

// SetRating handles PUT /v1/movies/:id/rating.  The movie must be
// marked as watched by the caller first.
func (h *MovieHandler) SetRating(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	var req struct {
		Rating int `json:"rating"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	r, err := h.Coord.SetRating(ctx, uid, id, req.Rating)
	if err != nil {
		return mutationError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, dto.FromRating(r))
}

// Stats handles GET /v1/stats/me.
func (h *MovieHandler) Stats(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	return c.JSON(http.StatusOK, dto.FromProgress(catalog.ProgressOf(h.Coord.Movies(), uid)))
}

// Leaderboard handles GET /v1/leaderboard.
func (h *MovieHandler) Leaderboard(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.FromStandings(catalog.Leaderboard(h.Coord.Users(), h.Coord.Movies())))
}

// Reminders handles GET /v1/reminders.  Prompt is false once the
// member dismissed the current set.
func (h *MovieHandler) Reminders(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	pending, prompt := h.Coord.Reminders(uid)
	return c.JSON(http.StatusOK, echo.Map{
		"movies": dto.FromMovies(pending, uid),
		"prompt": prompt,
	})
}

// DismissReminders handles POST /v1/reminders/dismiss.
func (h *MovieHandler) DismissReminders(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	h.Coord.DismissReminders(uid)
	return c.NoContent(http.StatusNoContent)
}
