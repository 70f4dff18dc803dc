// Package dto holds the JSON shapes the API and the event stream send
// to clients.
package dto

import (
	"time"

	"github.com/iliyamo/cineclub/internal/catalog"
	"github.com/iliyamo/cineclub/internal/model"
)

type User struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar,omitempty"`
	ChatEnabled bool   `json:"chat_enabled"`
}

func FromUser(u model.User) User {
	return User{ID: u.ID, Name: u.Name, Avatar: u.Avatar, ChatEnabled: u.ChatEnabled}
}

func FromUsers(us []model.User) []User {
	out := make([]User, 0, len(us))
	for _, u := range us {
		out = append(out, FromUser(u))
	}
	return out
}

type ViewMark struct {
	UserID    uint64    `json:"user_id"`
	State     string    `json:"state"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type Rating struct {
	ID        uint64    `json:"id,omitempty"`
	UserID    uint64    `json:"user_id"`
	MovieID   uint64    `json:"movie_id"`
	UserName  string    `json:"user_name,omitempty"`
	Rating    int       `json:"rating"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

func FromRating(r model.Rating) Rating {
	return Rating{ID: r.ID, UserID: r.UserID, MovieID: r.MovieID, UserName: r.UserName, Rating: r.Value, UpdatedAt: r.UpdatedAt}
}

// Movie is a list entry.  MyView and MyRating are relative to the
// requesting member.
type Movie struct {
	ID            uint64     `json:"id"`
	TempID        string     `json:"temp_id,omitempty"`
	Title         string     `json:"title"`
	Genre         string     `json:"genre"`
	Year          int        `json:"year,omitempty"`
	Poster        string     `json:"poster,omitempty"`
	Synopsis      string     `json:"synopsis,omitempty"`
	Duration      int        `json:"duration,omitempty"`
	Director      string     `json:"director,omitempty"`
	CreatedBy     uint64     `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
	WatchedCount  int        `json:"watched_count"`
	AverageRating float64    `json:"average_rating"`
	MyView        string     `json:"my_view,omitempty"`
	MyRating      int        `json:"my_rating,omitempty"`
	Views         []ViewMark `json:"views"`
	Ratings       []Rating   `json:"ratings"`
}

func FromMovie(m model.Movie, userID uint64) Movie {
	out := Movie{
		ID:            m.ID,
		TempID:        m.TempID,
		Title:         m.Title,
		Genre:         m.Genre,
		Year:          m.Year,
		Poster:        m.Poster,
		Synopsis:      m.Synopsis,
		Duration:      m.Duration,
		Director:      m.Director,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
		WatchedCount:  m.WatchedCount(),
		AverageRating: catalog.AverageRating(m.Ratings),
		Views:         make([]ViewMark, 0, len(m.Views)),
		Ratings:       make([]Rating, 0, len(m.Ratings)),
	}
	if s, ok := m.ViewOf(userID); ok {
		out.MyView = string(s)
	}
	if r, ok := m.RatingOf(userID); ok {
		out.MyRating = r.Value
	}
	for _, v := range m.Views {
		out.Views = append(out.Views, ViewMark{UserID: v.UserID, State: string(v.State), UpdatedAt: v.UpdatedAt})
	}
	for _, r := range m.Ratings {
		out.Ratings = append(out.Ratings, FromRating(r))
	}
	return out
}

func FromMovies(ms []model.Movie, userID uint64) []Movie {
	out := make([]Movie, 0, len(ms))
	for _, m := range ms {
		out = append(out, FromMovie(m, userID))
	}
	return out
}

type Notification struct {
	ID        uint64    `json:"id"`
	MovieID   uint64    `json:"movie_id,omitempty"`
	Message   string    `json:"message"`
	Read      bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func FromNotification(n model.Notification) Notification {
	return Notification{ID: n.ID, MovieID: n.MovieID, Message: n.Message, Read: n.Read, CreatedAt: n.CreatedAt}
}

func FromNotifications(ns []model.Notification) []Notification {
	out := make([]Notification, 0, len(ns))
	for _, n := range ns {
		out = append(out, FromNotification(n))
	}
	return out
}

type ChatMessage struct {
	ID         uint64    `json:"id,omitempty"`
	TempID     string    `json:"temp_id,omitempty"`
	UserID     uint64    `json:"user_id"`
	SenderName string    `json:"sender_name"`
	Body       string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

func FromMessage(m model.ChatMessage) ChatMessage {
	return ChatMessage{ID: m.ID, TempID: m.TempID, UserID: m.UserID, SenderName: m.SenderName, Body: m.Body, CreatedAt: m.CreatedAt}
}

func FromMessages(ms []model.ChatMessage) []ChatMessage {
	out := make([]ChatMessage, 0, len(ms))
	for _, m := range ms {
		out = append(out, FromMessage(m))
	}
	return out
}

type Progress struct {
	Watched       int     `json:"watched"`
	Total         int     `json:"total"`
	Percentage    int     `json:"percentage"`
	AverageRating float64 `json:"average_rating"`
	RatingsCount  int     `json:"ratings_count"`
}

func FromProgress(p catalog.Progress) Progress {
	return Progress{
		Watched:       p.Watched,
		Total:         p.Total,
		Percentage:    p.Percentage,
		AverageRating: p.AverageRating,
		RatingsCount:  p.RatingsCount,
	}
}

type Standing struct {
	User     User     `json:"user"`
	Progress Progress `json:"progress"`
}

func FromStandings(ss []catalog.Standing) []Standing {
	out := make([]Standing, 0, len(ss))
	for _, s := range ss {
		out = append(out, Standing{User: FromUser(s.User), Progress: FromProgress(s.Progress)})
	}
	return out
}
