package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cineclub/internal/config"
)

const esResults = `{"results":[
	{"id":1,"title":"El padrino","original_title":"The Godfather","genre_ids":[18,80],"release_date":"1972-03-14","poster_path":"/p1.jpg"},
	{"id":2,"title":"El padrino II","original_title":"The Godfather Part II","genre_ids":[18],"release_date":"1974-12-20","poster_path":null}
]}`

const enResults = `{"results":[
	{"id":1,"title":"The Godfather","original_title":"The Godfather","genre_ids":[18,80],"release_date":"1972-03-14"},
	{"id":9,"title":"EL PADRINO","original_title":"El padrino","genre_ids":[],"release_date":""},
	{"id":3,"title":"The Godfather Part III","original_title":"The Godfather Part III","genre_ids":[99999],"release_date":"1990-12-25"}
]}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(config.TMDBConfig{
		APIKey:       "k",
		BaseURL:      srv.URL,
		ImageBaseURL: "https://img.test/w500",
		Timeout:      2 * time.Second,
		RatePerSec:   100,
	}, nil)
}

func TestSearchMergesLocales(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/movie", r.URL.Path)
		assert.Equal(t, "k", r.URL.Query().Get("api_key"))
		assert.Equal(t, "false", r.URL.Query().Get("include_adult"))
		if r.URL.Query().Get("language") == "es-ES" {
			_, _ = w.Write([]byte(esResults))
			return
		}
		_, _ = w.Write([]byte(enResults))
	})

	got, err := c.Search(context.Background(), "padrino")
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, Suggestion{ID: 1, Title: "El padrino", Genre: "Drama, Crimen", Year: 1972, Poster: "https://img.test/w500/p1.jpg"}, got[0])
	assert.Equal(t, "", got[1].Poster)
	assert.Equal(t, int64(1), got[2].ID, "english title differs from every spanish title")
	assert.Equal(t, "The Godfather", got[2].Title)
	assert.Equal(t, int64(3), got[3].ID)
	assert.Equal(t, UnknownGenre, got[3].Genre)
}

func TestSearchShortQuery(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	got, err := c.Search(context.Background(), " ab ")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestSuggestDegradesOnFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	got := c.Suggest(context.Background(), "padrino")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearchDisabled(t *testing.T) {
	c := NewClient(config.TMDBConfig{}, nil)
	assert.False(t, c.Enabled())
	_, err := c.Search(context.Background(), "padrino")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestLookup(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/238":
			assert.Equal(t, "credits", r.URL.Query().Get("append_to_response"))
			_, _ = w.Write([]byte(`{"id":238,"overview":"Don Vito...","runtime":175,
				"credits":{"crew":[{"job":"Producer","name":"Albert S. Ruddy"},{"job":"Director","name":"Francis Ford Coppola"}]}}`))
		case "/movie/1":
			_, _ = w.Write([]byte(`{"id":1,"overview":"","runtime":null,"credits":{"crew":[]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	d, err := c.Lookup(context.Background(), 238)
	require.NoError(t, err)
	assert.Equal(t, Details{ID: 238, Synopsis: "Don Vito...", Duration: 175, Director: "Francis Ford Coppola"}, d)

	d, err = c.Lookup(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, NoSynopsis, d.Synopsis)
	assert.Equal(t, UnknownDirector, d.Director)
	assert.Zero(t, d.Duration)

	_, err = c.Lookup(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, Details{ID: 5}, c.Details(context.Background(), 5))
}

func TestMergeCapsAtFive(t *testing.T) {
	var es, en []Result
	for i := 0; i < 4; i++ {
		es = append(es, Result{ID: int64(i), Title: string(rune('a' + i))})
		en = append(en, Result{ID: int64(10 + i), Title: string(rune('A' + i))})
	}
	en = append(en, Result{ID: 20, Title: "z"})

	got := Merge(es, en)
	require.Len(t, got, MaxSuggestions)
	assert.Equal(t, int64(20), got[4].ID)
}

func TestDisplayTitleAndYear(t *testing.T) {
	assert.Equal(t, "El padrino", DisplayTitle(Result{Title: "El padrino", OriginalTitle: "The Godfather"}))
	assert.Equal(t, "Alien", DisplayTitle(Result{Title: "alien", OriginalTitle: "Alien"}))
	assert.Equal(t, "Solo", DisplayTitle(Result{Title: "Solo"}))
	assert.Equal(t, 1979, Year("1979-05-25"))
	assert.Equal(t, 0, Year(""))
	assert.Equal(t, "Drama, Desconocido", JoinGenres([]int{18, 1}))
}
