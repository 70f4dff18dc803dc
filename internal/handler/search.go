package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cineclub/internal/metadata"
)

// MovieSearcher looks titles up in the metadata service.  Both calls
// degrade to empty results instead of failing.
type MovieSearcher interface {
	Suggest(ctx context.Context, query string) []metadata.Suggestion
	Details(ctx context.Context, id int64) metadata.Details
}

type SearchHandler struct {
	Meta MovieSearcher
}

func NewSearchHandler(meta MovieSearcher) *SearchHandler {
	return &SearchHandler{Meta: meta}
}

// Suggest handles GET /v1/search/movies?q=.  Short queries return an
// empty list.
func (h *SearchHandler) Suggest(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Meta.Suggest(c.Request().Context(), c.QueryParam("q")))
}

// Details handles GET /v1/search/movies/:id.
func (h *SearchHandler) Details(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	return c.JSON(http.StatusOK, h.Meta.Details(c.Request().Context(), id))
}
