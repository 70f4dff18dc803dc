package model

import "time"

// ViewState is the per-user watched status stored in viewmarks.state.
type ViewState string

const (
	// StateWatched marks a movie as seen by the user.
	StateWatched ViewState = "vista"
	// StateUnwatched marks a movie as explicitly not seen yet.
	StateUnwatched ViewState = "no vista"
)

// Valid reports whether s is one of the two stored states.
func (s ViewState) Valid() bool {
	return s == StateWatched || s == StateUnwatched
}

// Movie represents a title added to the group list.  Each movie carries
// the view marks and ratings of every user so derived views can be
// computed without additional lookups.
//
// Fields:
//
//	ID        – primary key identifier (0 while a placeholder is pending).
//	TempID    – client-side key of an optimistic placeholder; empty once stored.
//	Title     – display title.
//	Genre     – free text, comma-joined for multi-genre titles.
//	Year      – release year, 0 when unknown.
//	Poster    – poster URL, may be empty.
//	Synopsis  – plot summary.
//	Duration  – runtime in minutes, 0 when unknown.
//	Director  – director name.
//	CreatedBy – users.id of the member who added the movie.
//	CreatedAt – creation timestamp.
type Movie struct {
	ID        uint64    // movies.id
	TempID    string    // not persisted
	Title     string    // movies.title
	Genre     string    // movies.genre
	Year      int       // movies.year (nullable)
	Poster    string    // movies.poster
	Synopsis  string    // movies.synopsis
	Duration  int       // movies.duration (nullable)
	Director  string    // movies.director
	CreatedBy uint64    // movies.created_by
	CreatedAt time.Time // movies.created_at
	Views     []ViewMark
	Ratings   []Rating
}

// ViewMark is a (user, movie) watched status.  The pair is unique.
type ViewMark struct {
	UserID    uint64    // viewmarks.user_id
	MovieID   uint64    // viewmarks.movie_id
	State     ViewState // viewmarks.state
	UpdatedAt time.Time // viewmarks.updated_at
}

// Rating is a (user, movie) score between MinRating and MaxRating.
// The pair is unique; UserName is joined from users for display.
type Rating struct {
	ID        uint64    // ratings.id
	UserID    uint64    // ratings.user_id
	MovieID   uint64    // ratings.movie_id
	Value     int       // ratings.rating
	UserName  string    // users.name
	CreatedAt time.Time // ratings.created_at
	UpdatedAt time.Time // ratings.updated_at
}

const (
	MinRating = 1
	MaxRating = 5
)

// ViewOf returns the state userID recorded for the movie, if any.
func (m Movie) ViewOf(userID uint64) (ViewState, bool) {
	for _, v := range m.Views {
		if v.UserID == userID {
			return v.State, true
		}
	}
	return "", false
}

// RatingOf returns the rating userID gave the movie, if any.
func (m Movie) RatingOf(userID uint64) (Rating, bool) {
	for _, r := range m.Ratings {
		if r.UserID == userID {
			return r, true
		}
	}
	return Rating{}, false
}

// WatchedCount counts the users who marked the movie as watched.
func (m Movie) WatchedCount() int {
	n := 0
	for _, v := range m.Views {
		if v.State == StateWatched {
			n++
		}
	}
	return n
}

// Clone returns a copy of m that shares no slices with the original.
func (m Movie) Clone() Movie {
	out := m
	out.Views = append([]ViewMark(nil), m.Views...)
	out.Ratings = append([]Rating(nil), m.Ratings...)
	return out
}
