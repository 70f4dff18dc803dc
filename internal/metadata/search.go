package metadata

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/valyala/fastjson"
	"golang.org/x/sync/errgroup"
)

const (
	// MinQueryLen is the shortest query sent upstream.
	MinQueryLen = 3
	// MaxSuggestions caps the merged result list.
	MaxSuggestions = 5

	NoSynopsis      = "Sin sinopsis disponible"
	UnknownDirector = "Desconocido"
)

// Result is one raw search hit.
type Result struct {
	ID            int64
	Title         string
	OriginalTitle string
	GenreIDs      []int
	ReleaseDate   string
	PosterPath    string
}

// Suggestion is a search hit ready to prefill the add-movie form.
type Suggestion struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Genre  string `json:"genre"`
	Year   int    `json:"year,omitempty"`
	Poster string `json:"poster,omitempty"`
}

// Details are the fields only the per-movie lookup returns.
type Details struct {
	ID       int64  `json:"id"`
	Synopsis string `json:"synopsis"`
	Duration int    `json:"duration,omitempty"`
	Director string `json:"director"`
}

// DisplayTitle prefers the localized title when it differs from the
// original one.
func DisplayTitle(r Result) string {
	if !strings.EqualFold(r.OriginalTitle, r.Title) && r.Title != "" {
		return r.Title
	}
	if r.OriginalTitle != "" {
		return r.OriginalTitle
	}
	return r.Title
}

// Year extracts the year from a YYYY-MM-DD date, or 0.
func Year(date string) int {
	y, _, _ := strings.Cut(date, "-")
	n, err := strconv.Atoi(y)
	if err != nil {
		return 0
	}
	return n
}

// Merge keeps every Spanish hit, then adds English hits whose title is
// not already present case-insensitively, capped at MaxSuggestions.
func Merge(es, en []Result) []Result {
	seen := make(map[string]bool, len(es))
	out := make([]Result, 0, MaxSuggestions)
	for _, r := range es {
		seen[strings.ToLower(r.Title)] = true
	}
	for _, r := range es {
		if len(out) == MaxSuggestions {
			return out
		}
		out = append(out, r)
	}
	for _, r := range en {
		if len(out) == MaxSuggestions {
			break
		}
		if seen[strings.ToLower(r.Title)] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Search queries both locales concurrently and returns merged
// suggestions.  Queries shorter than MinQueryLen return nothing.
func (c *Client) Search(ctx context.Context, query string) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLen {
		return []Suggestion{}, nil
	}

	var es, en []Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		es, err = c.searchLocale(gctx, query, "es-ES")
		return err
	})
	g.Go(func() (err error) {
		en, err = c.searchLocale(gctx, query, "en-US")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := Merge(es, en)
	out := make([]Suggestion, 0, len(merged))
	for _, r := range merged {
		out = append(out, Suggestion{
			ID:     r.ID,
			Title:  DisplayTitle(r),
			Genre:  JoinGenres(r.GenreIDs),
			Year:   Year(r.ReleaseDate),
			Poster: c.posterURL(r.PosterPath),
		})
	}
	return out, nil
}

// Suggest is Search with failures logged and turned into an empty list.
func (c *Client) Suggest(ctx context.Context, query string) []Suggestion {
	out, err := c.Search(ctx, query)
	if err != nil {
		c.logger.Warnw("metadata search failed", "query", query, "error", err)
		return []Suggestion{}
	}
	return out
}

func (c *Client) searchLocale(ctx context.Context, query, lang string) ([]Result, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("language", lang)
	q.Set("include_adult", "false")

	var out []Result
	err := c.get(ctx, "/search/movie", q, func(v *fastjson.Value) error {
		for _, item := range v.GetArray("results") {
			r := Result{
				ID:            item.GetInt64("id"),
				Title:         string(item.GetStringBytes("title")),
				OriginalTitle: string(item.GetStringBytes("original_title")),
				ReleaseDate:   string(item.GetStringBytes("release_date")),
				PosterPath:    string(item.GetStringBytes("poster_path")),
			}
			for _, g := range item.GetArray("genre_ids") {
				r.GenreIDs = append(r.GenreIDs, g.GetInt())
			}
			out = append(out, r)
		}
		return nil
	})
	return out, err
}

// Lookup fetches synopsis, runtime and director of one movie.  Missing
// synopsis and director fall back to NoSynopsis and UnknownDirector.
func (c *Client) Lookup(ctx context.Context, id int64) (Details, error) {
	q := url.Values{}
	q.Set("language", "es-ES")
	q.Set("append_to_response", "credits")

	d := Details{ID: id}
	err := c.get(ctx, "/movie/"+strconv.FormatInt(id, 10), q, func(v *fastjson.Value) error {
		d.Synopsis = string(v.GetStringBytes("overview"))
		d.Duration = v.GetInt("runtime")
		for _, crew := range v.GetArray("credits", "crew") {
			if string(crew.GetStringBytes("job")) == "Director" {
				d.Director = string(crew.GetStringBytes("name"))
				break
			}
		}
		return nil
	})
	if err != nil {
		return Details{}, err
	}
	if d.Synopsis == "" {
		d.Synopsis = NoSynopsis
	}
	if d.Director == "" {
		d.Director = UnknownDirector
	}
	return d, nil
}

// Details is Lookup with failures logged and turned into empty fields.
func (c *Client) Details(ctx context.Context, id int64) Details {
	d, err := c.Lookup(ctx, id)
	if err != nil {
		c.logger.Warnw("metadata lookup failed", "id", id, "error", err)
		return Details{ID: id}
	}
	return d
}
