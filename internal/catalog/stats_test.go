package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cineclub/internal/model"
)

func TestWatchedPercentage(t *testing.T) {
	movies := []model.Movie{
		{ID: 1, Views: []model.ViewMark{watched(alice)}},
		{ID: 2, Views: []model.ViewMark{watched(alice), watched(bob)}},
		{ID: 3, Views: []model.ViewMark{unwatched(alice)}},
	}

	assert.Equal(t, 2, WatchedCount(movies, alice))
	assert.Equal(t, 67, WatchedPercentage(movies, alice))
	assert.Equal(t, 33, WatchedPercentage(movies, bob))
	assert.Equal(t, 0, WatchedPercentage(movies, carol))
	assert.Equal(t, 0, WatchedPercentage(nil, alice))
}

func TestWatchedPercentageBounds(t *testing.T) {
	for total := 1; total <= 7; total++ {
		movies := make([]model.Movie, total)
		for w := 0; w <= total; w++ {
			for i := range movies {
				movies[i].Views = nil
				if i < w {
					movies[i].Views = []model.ViewMark{watched(alice)}
				}
			}
			p := WatchedPercentage(movies, alice)
			assert.GreaterOrEqual(t, p, 0)
			assert.LessOrEqual(t, p, 100)
		}
	}
}

func TestAverageRating(t *testing.T) {
	tests := []struct {
		name     string
		ratings  []model.Rating
		expected float64
	}{
		{"empty", nil, 0},
		{"single", []model.Rating{rated(alice, 4)}, 4},
		{"two", []model.Rating{rated(alice, 4), rated(bob, 2)}, 3.0},
		{"rounds to one decimal", []model.Rating{rated(alice, 5), rated(bob, 4), rated(carol, 4)}, 4.3},
		{"rounds half up", []model.Rating{rated(alice, 1), rated(bob, 2), rated(carol, 2), rated(4, 2)}, 1.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, AverageRating(tt.ratings), 1e-9)
		})
	}
}

func TestLeaderboard(t *testing.T) {
	users := []model.User{{ID: alice, Name: "Ana"}, {ID: bob, Name: "Beto"}, {ID: carol, Name: "Caro"}}
	movies := []model.Movie{
		{ID: 1, Views: []model.ViewMark{watched(alice), watched(bob)}, Ratings: []model.Rating{rated(alice, 3), rated(bob, 5)}},
		{ID: 2, Views: []model.ViewMark{watched(alice), watched(bob), watched(carol)}},
	}

	board := Leaderboard(users, movies)
	require.Len(t, board, 3)

	// alice and bob tie at 100%; bob's higher average wins.
	assert.Equal(t, bob, board[0].User.ID)
	assert.Equal(t, 100, board[0].Percentage)
	assert.InDelta(t, 5.0, board[0].AverageRating, 1e-9)
	assert.Equal(t, 1, board[0].RatingsCount)
	assert.Equal(t, alice, board[1].User.ID)
	assert.Equal(t, carol, board[2].User.ID)
	assert.Equal(t, 50, board[2].Percentage)
	assert.Zero(t, board[2].AverageRating)
}

func TestLeaderboardEmpty(t *testing.T) {
	board := Leaderboard([]model.User{{ID: alice}}, nil)
	require.Len(t, board, 1)
	assert.Zero(t, board[0].Percentage)
	assert.Zero(t, board[0].Total)
}
