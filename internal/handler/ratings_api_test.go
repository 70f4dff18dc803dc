package handler_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cineclub/internal/dto"
	"github.com/iliyamo/cineclub/internal/model"
)

func TestRatingsAPIMethodNotAllowed(t *testing.T) {
	s := newServer(t)
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := s.do(t, 0, method, "/api/ratings", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		assert.Equal(t, "POST", rec.Header().Get("Allow"))
		assert.Equal(t, "Method "+method+" Not Allowed", rec.Body.String())
	}
}

func TestRatingsAPIDoesNotRequireWatched(t *testing.T) {
	s := newServer(t)
	s.remote.On("UpsertRating", mock.MatchedBy(func(r model.Rating) bool {
		return r.UserID == 2 && r.MovieID == 11 && r.Value == 3
	})).Return(model.Rating{ID: 9, UserID: 2, MovieID: 11, Value: 3}, nil)

	rec := s.do(t, 0, http.MethodPost, "/api/ratings", `{"movieId":11,"userId":2,"rating":3}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	r := decode[dto.Rating](t, rec)
	assert.Equal(t, uint64(9), r.ID)
	assert.Equal(t, 3, r.Rating)

	m, _ := s.coord.Movie(11)
	got, ok := m.RatingOf(2)
	require.True(t, ok)
	assert.Equal(t, 3, got.Value)
}

func TestRatingsAPIValidation(t *testing.T) {
	s := newServer(t)
	bodies := []string{
		`not json`,
		`{"userId":2,"rating":3}`,
		`{"movieId":"11","userId":2,"rating":3}`,
		`{"movieId":11,"userId":-2,"rating":3}`,
		`{"movieId":11,"userId":2}`,
		`{"movieId":11,"userId":2,"rating":0}`,
		`{"movieId":11,"userId":2,"rating":6}`,
		`{"movieId":11,"userId":2,"rating":2.5}`,
	}
	for _, b := range bodies {
		assert.Equal(t, http.StatusBadRequest, s.do(t, 0, http.MethodPost, "/api/ratings", b).Code, b)
	}
	s.remote.AssertNotCalled(t, "UpsertRating", mock.Anything)
}

func TestRatingsAPIErrors(t *testing.T) {
	s := newServer(t)
	assert.Equal(t, http.StatusNotFound,
		s.do(t, 0, http.MethodPost, "/api/ratings", `{"movieId":99,"userId":2,"rating":3}`).Code)

	s.remote.On("UpsertRating", mock.Anything).Return(model.Rating{}, errors.New("db down"))
	rec := s.do(t, 0, http.MethodPost, "/api/ratings", `{"movieId":10,"userId":2,"rating":3}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Error updating rating"}`, rec.Body.String())
}
