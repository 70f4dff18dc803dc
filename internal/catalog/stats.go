// Package catalog derives read-only views from a cached movie list:
// per-user progress, rating averages, the leaderboard, the filtered and
// sorted movie grid, and pending rating reminders.  Every function in
// this package is pure.  Inputs are never mutated and missing data
// degrades to zero values instead of errors.
package catalog

import (
	"math"
	"sort"

	"github.com/iliyamo/cineclub/internal/model"
)

// WatchedCount returns how many movies userID marked as watched.
func WatchedCount(movies []model.Movie, userID uint64) int {
	n := 0
	for _, m := range movies {
		if s, ok := m.ViewOf(userID); ok && s == model.StateWatched {
			n++
		}
	}
	return n
}

// WatchedPercentage returns round(100*watched/total), or 0 for an empty list.
func WatchedPercentage(movies []model.Movie, userID uint64) int {
	if len(movies) == 0 {
		return 0
	}
	return int(math.Round(100 * float64(WatchedCount(movies, userID)) / float64(len(movies))))
}

// AverageRating returns the mean of the rating values rounded to one
// decimal, or 0 when ratings is empty.
func AverageRating(ratings []model.Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	return round1(mean(ratings))
}

func mean(ratings []model.Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Value
	}
	return float64(sum) / float64(len(ratings))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// RatingsBy collects every rating userID gave across movies.
func RatingsBy(movies []model.Movie, userID uint64) []model.Rating {
	var out []model.Rating
	for _, m := range movies {
		if r, ok := m.RatingOf(userID); ok {
			out = append(out, r)
		}
	}
	return out
}

// Progress summarises one user's activity over the whole list.
type Progress struct {
	Watched       int
	Total         int
	Percentage    int
	AverageRating float64
	RatingsCount  int
}

// ProgressOf computes the Progress of userID.
func ProgressOf(movies []model.Movie, userID uint64) Progress {
	rs := RatingsBy(movies, userID)
	return Progress{
		Watched:       WatchedCount(movies, userID),
		Total:         len(movies),
		Percentage:    WatchedPercentage(movies, userID),
		AverageRating: AverageRating(rs),
		RatingsCount:  len(rs),
	}
}

// Standing is one leaderboard row.
type Standing struct {
	User model.User
	Progress
}

// Leaderboard ranks users by watched percentage, then by the average of
// the ratings they gave, both descending.  Users that tie on both keep
// the order of the users slice.
func Leaderboard(users []model.User, movies []model.Movie) []Standing {
	out := make([]Standing, 0, len(users))
	for _, u := range users {
		out = append(out, Standing{User: u, Progress: ProgressOf(movies, u.ID)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Percentage != out[j].Percentage {
			return out[i].Percentage > out[j].Percentage
		}
		return out[i].AverageRating > out[j].AverageRating
	})
	return out
}
