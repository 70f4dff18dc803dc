package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iliyamo/cineclub/internal/model"
)

// ViewFilter selects movies by the acting user's watched status.
type ViewFilter string

const (
	ViewAll       ViewFilter = "all"
	ViewWatched   ViewFilter = "watched"
	ViewUnwatched ViewFilter = "unwatched"
)

// SortMode orders the movie grid.
type SortMode string

const (
	// SortDefault puts movies nobody watched first, then ascends by
	// watched count.
	SortDefault SortMode = "default"
	// SortTopRated descends by average rating; unrated movies count as 0.
	SortTopRated SortMode = "topRated"
)

// ParseViewFilter accepts the API names and the stored state names.
// An empty string selects ViewAll.
func ParseViewFilter(s string) (ViewFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "todas":
		return ViewAll, nil
	case "watched", "vista":
		return ViewWatched, nil
	case "unwatched", "no vista", "no_vista":
		return ViewUnwatched, nil
	}
	return "", fmt.Errorf("unknown view filter %q", s)
}

// ParseSortMode maps an API value to a SortMode.  An empty string
// selects SortDefault.
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return SortDefault, nil
	case "toprated", "top_rated", "rating":
		return SortTopRated, nil
	}
	return "", fmt.Errorf("unknown sort mode %q", s)
}

// Filter is the full set of grid predicates.  Zero values disable a
// predicate; all enabled predicates must hold for a movie to match.
type Filter struct {
	ViewStatus  ViewFilter
	Genres      []string
	YearFrom    *int
	YearTo      *int
	OnlyMine    bool
	UnratedOnly bool
}

// Match reports whether m passes every enabled predicate of f for the
// acting user.
func (f Filter) Match(m model.Movie, userID uint64) bool {
	switch f.ViewStatus {
	case ViewWatched:
		if s, ok := m.ViewOf(userID); !ok || s != model.StateWatched {
			return false
		}
	case ViewUnwatched:
		if s, ok := m.ViewOf(userID); !ok || s != model.StateUnwatched {
			return false
		}
	}
	if !matchGenres(m.Genre, f.Genres) {
		return false
	}
	if f.YearFrom != nil && (m.Year == 0 || m.Year < *f.YearFrom) {
		return false
	}
	if f.YearTo != nil && (m.Year == 0 || m.Year > *f.YearTo) {
		return false
	}
	if f.OnlyMine && m.CreatedBy != userID {
		return false
	}
	if f.UnratedOnly && len(m.Ratings) > 0 {
		return false
	}
	return true
}

func matchGenres(genre string, selected []string) bool {
	g := strings.ToLower(genre)
	active := false
	for _, s := range selected {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		active = true
		if strings.Contains(g, s) {
			return true
		}
	}
	return !active
}

// Apply returns the movies matching f in input order.  The result is a
// new slice; movies is left untouched.
func Apply(movies []model.Movie, f Filter, userID uint64) []model.Movie {
	out := make([]model.Movie, 0, len(movies))
	for _, m := range movies {
		if f.Match(m, userID) {
			out = append(out, m)
		}
	}
	return out
}

// Sort returns a stably sorted copy of movies.
func Sort(movies []model.Movie, mode SortMode) []model.Movie {
	out := append([]model.Movie(nil), movies...)
	switch mode {
	case SortTopRated:
		avg := make([]float64, len(out))
		for i := range out {
			avg[i] = mean(out[i].Ratings)
		}
		sort.Stable(byAverage{movies: out, avg: avg})
		return out
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].WatchedCount() < out[j].WatchedCount()
		})
		return out
	}
}

// View filters then sorts, which is what the movie grid renders.
func View(movies []model.Movie, f Filter, mode SortMode, userID uint64) []model.Movie {
	return Sort(Apply(movies, f, userID), mode)
}

type byAverage struct {
	movies []model.Movie
	avg    []float64
}

func (b byAverage) Len() int           { return len(b.movies) }
func (b byAverage) Less(i, j int) bool { return b.avg[i] > b.avg[j] }
func (b byAverage) Swap(i, j int) {
	b.movies[i], b.movies[j] = b.movies[j], b.movies[i]
	b.avg[i], b.avg[j] = b.avg[j], b.avg[i]
}
