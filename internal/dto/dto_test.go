package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/cineclub/internal/model"
)

func TestFromMovie(t *testing.T) {
	m := model.Movie{
		ID:    3,
		Title: "Alien",
		Views: []model.ViewMark{
			{UserID: 1, State: model.StateWatched},
			{UserID: 2, State: model.StateUnwatched},
		},
		Ratings: []model.Rating{{UserID: 1, Value: 4}, {UserID: 3, Value: 5}},
	}

	got := FromMovie(m, 1)
	assert.Equal(t, 1, got.WatchedCount)
	assert.Equal(t, 4.5, got.AverageRating)
	assert.Equal(t, "vista", got.MyView)
	assert.Equal(t, 4, got.MyRating)
	assert.Len(t, got.Views, 2)
	assert.Len(t, got.Ratings, 2)

	other := FromMovie(m, 9)
	assert.Empty(t, other.MyView)
	assert.Zero(t, other.MyRating)
}

func TestFromMovieEmptyCollections(t *testing.T) {
	got := FromMovie(model.Movie{ID: 1}, 1)
	assert.NotNil(t, got.Views)
	assert.NotNil(t, got.Ratings)
	assert.Zero(t, got.AverageRating)
}

func TestFromUserDropsPin(t *testing.T) {
	u := FromUser(model.User{ID: 1, Name: "Ana", PinHash: "secret", ChatEnabled: true})
	assert.Equal(t, User{ID: 1, Name: "Ana", ChatEnabled: true}, u)
}
