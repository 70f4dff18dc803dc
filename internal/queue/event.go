// Package queue defines the events exchanged over the message broker and
// the publisher, consumer and dispatcher that move them.
package queue

import "time"

// Queue names.  Each event type has its own durable queue on the default
// exchange.
const (
	MovieAddedQueue = "movie.added"
	ChatPostedQueue = "chat.posted"
)

// MovieAddedEvent is published after a movie was stored.  It carries
// the whole row so consumers can update their cache without a query.
type MovieAddedEvent struct {
	MovieID     uint64    `json:"movie_id"`
	Title       string    `json:"title"`
	Genre       string    `json:"genre"`
	Year        int       `json:"year,omitempty"`
	Poster      string    `json:"poster,omitempty"`
	Synopsis    string    `json:"synopsis,omitempty"`
	Duration    int       `json:"duration,omitempty"`
	Director    string    `json:"director,omitempty"`
	CreatedBy   uint64    `json:"created_by"`
	CreatorName string    `json:"creator_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChatPostedEvent is published after a chat message was stored.
type ChatPostedEvent struct {
	MessageID  uint64    `json:"message_id"`
	UserID     uint64    `json:"user_id"`
	SenderName string    `json:"sender_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}
