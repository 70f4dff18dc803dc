package model

import "time"

// Notification is addressed to a single user.  Rows are produced when
// another member adds a movie; MovieID is 0 for notifications that do
// not reference a movie.
type Notification struct {
	ID        uint64    // notifications.id
	UserID    uint64    // notifications.user_id
	MovieID   uint64    // notifications.movie_id (nullable)
	Message   string    // notifications.message
	Read      bool      // notifications.is_read
	CreatedAt time.Time // notifications.created_at
}

// ChatMessage is a group chat line visible to every chat-enabled
// member.  TempID identifies an optimistic message until the store
// assigns ID.
type ChatMessage struct {
	ID         uint64    // messages.id
	TempID     string    // not persisted
	UserID     uint64    // messages.user_id
	SenderName string    // users.name
	Body       string    // messages.body
	CreatedAt  time.Time // messages.created_at
}
