// Package realtime fans server-side changes out to connected
// event-stream clients.
package realtime

import "time"

// EventType names the SSE event.
type EventType string

const (
	EventConnected    EventType = "connected"
	EventHeartbeat    EventType = "heartbeat"
	EventMovieCreated EventType = "movie.created"
	EventNotification EventType = "notification.created"
	EventChatMessage  EventType = "chat.message"
)

// Event is one frame on the stream.  UserID 0 addresses every client;
// ChatOnly restricts delivery to chat-enabled members.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	UserID    uint64    `json:"-"`
	ChatOnly  bool      `json:"-"`
}

// MovieCreated is the payload of EventMovieCreated.  Clients refetch
// the list to pick up aggregates.
type MovieCreated struct {
	ID        uint64 `json:"id"`
	Title     string `json:"title"`
	CreatedBy uint64 `json:"created_by"`
}
