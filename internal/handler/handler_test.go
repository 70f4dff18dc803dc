package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/cineclub/internal/config"
	"github.com/iliyamo/cineclub/internal/coordinator"
	"github.com/iliyamo/cineclub/internal/coordinator/coordinatortest"
	"github.com/iliyamo/cineclub/internal/handler"
	"github.com/iliyamo/cineclub/internal/metadata"
	"github.com/iliyamo/cineclub/internal/middleware"
	"github.com/iliyamo/cineclub/internal/model"
	"github.com/iliyamo/cineclub/internal/realtime"
	"github.com/iliyamo/cineclub/internal/router"
	"github.com/iliyamo/cineclub/internal/utils"
)

const testSecret = "handler-test-secret"

var created = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type recordedEvents struct {
	movies   []model.Movie
	creators []string
	messages []model.ChatMessage
}

func (r *recordedEvents) MovieAdded(_ context.Context, m model.Movie, creator string) {
	r.movies = append(r.movies, m)
	r.creators = append(r.creators, creator)
}

func (r *recordedEvents) ChatPosted(_ context.Context, m model.ChatMessage) {
	r.messages = append(r.messages, m)
}

type stubSearch struct{ queries []string }

func (s *stubSearch) Suggest(_ context.Context, q string) []metadata.Suggestion {
	s.queries = append(s.queries, q)
	if len(q) < metadata.MinQueryLen {
		return []metadata.Suggestion{}
	}
	return []metadata.Suggestion{{ID: 348, Title: "Alien", Genre: "Terror", Year: 1979}}
}

func (s *stubSearch) Details(_ context.Context, id int64) metadata.Details {
	return metadata.Details{ID: id, Synopsis: "En el espacio", Duration: 117, Director: "Ridley Scott"}
}

type server struct {
	e      *echo.Echo
	remote *coordinatortest.Remote
	coord  *coordinator.Coordinator
	events *recordedEvents
	search *stubSearch
	hub    *realtime.Hub
	stream *handler.StreamHandler
}

// Users: Ana (1, chat) and Beto (2, no chat).  Movies: Alien by Ana,
// watched and rated 4 by Ana; Amélie by Beto, untouched.
func seedMovies() []model.Movie {
	return []model.Movie{
		{ID: 10, Title: "Alien", Genre: "Terror", Year: 1979, CreatedBy: 1, CreatedAt: created,
			Views:   []model.ViewMark{{UserID: 1, MovieID: 10, State: model.StateWatched}},
			Ratings: []model.Rating{{ID: 1, UserID: 1, MovieID: 10, Value: 4, UserName: "Ana"}}},
		{ID: 11, Title: "Amélie", Genre: "Comedia, Romance", Year: 2001, CreatedBy: 2, CreatedAt: created},
	}
}

func newServer(t *testing.T) *server {
	t.Helper()
	logger := zap.NewNop().Sugar()
	s := &server{
		e:      echo.New(),
		remote: &coordinatortest.Remote{},
		events: &recordedEvents{},
		search: &stubSearch{},
		hub:    realtime.NewHub(logger),
	}
	s.remote.On("FetchUsers").Return([]model.User{
		{ID: 1, Name: "Ana", ChatEnabled: true},
		{ID: 2, Name: "Beto"},
	}, nil)
	s.remote.On("FetchMovies").Return(seedMovies(), nil)
	s.coord = coordinator.New(s.remote, logger, coordinator.WithClock(func() time.Time { return created }))
	require.NoError(t, s.coord.Load(context.Background()))

	mw := router.Middleware{
		RateLimit: middleware.NewTokenBucket(config.RateLimitConfig{}, nil, logger),
		Cache:     middleware.NewResponseCache(config.CacheConfig{}, nil, logger),
	}
	s.stream = handler.NewStreamHandler(s.hub, logger)
	h := router.Handlers{
		Auth:    handler.NewAuthHandler(config.Config{JWTSecret: testSecret}, nil, nil, s.coord, logger),
		Movies:  handler.NewMovieHandler(s.coord, s.events, logger),
		Inbox:   handler.NewInboxHandler(s.coord, s.events, logger),
		Search:  handler.NewSearchHandler(s.search),
		Stream:  s.stream,
		Ratings: handler.NewRatingsAPI(s.coord, logger),
	}
	router.RegisterRoutes(s.e)
	router.RegisterAuth(s.e, h.Auth, mw, testSecret)
	router.RegisterRatingsAPI(s.e, h.Ratings, mw)
	router.RegisterMember(s.e, h, mw, testSecret)
	return s
}

func token(t *testing.T, userID uint64) string {
	t.Helper()
	name, chat := "Ana", true
	if userID != 1 {
		name, chat = "Beto", false
	}
	tok, err := utils.NewAccessToken(testSecret, userID, name, chat, 5)
	require.NoError(t, err)
	return tok.Token
}

// do sends a request as userID (0 for anonymous) and returns the recorder.
func (s *server) do(t *testing.T, userID uint64, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if userID != 0 {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, userID))
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
