package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/cineclub/internal/model"
)

// NotificationWriter persists one notification per member except the
// one who triggered it.
type NotificationWriter interface {
	CreateForAllExcept(ctx context.Context, exceptUserID, movieID uint64, message string) ([]model.Notification, error)
}

// Cache receives rows that were written outside the local coordinator.
type Cache interface {
	ApplyMovie(m model.Movie) bool
	ApplyNotification(n model.Notification) bool
	ApplyMessage(m model.ChatMessage) bool
}

// Broadcaster pushes rows to connected clients.
type Broadcaster interface {
	PublishMovie(m model.Movie)
	PublishNotification(n model.Notification)
	PublishMessage(m model.ChatMessage)
}

// Dispatcher turns events into notification rows, cache updates and
// pushes.  It runs either behind the consumer or inline when no broker
// is reachable.
type Dispatcher struct {
	notes  NotificationWriter
	cache  Cache
	hub    Broadcaster
	logger *zap.SugaredLogger
}

func NewDispatcher(notes NotificationWriter, cache Cache, hub Broadcaster, logger *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{notes: notes, cache: cache, hub: hub, logger: logger}
}

// MovieAddedMessage is the notification text other members receive.
func MovieAddedMessage(ev MovieAddedEvent) string {
	name := ev.CreatorName
	if name == "" {
		name = "Alguien"
	}
	return fmt.Sprintf("%s agregó \"%s\" a la lista", name, ev.Title)
}

func (d *Dispatcher) HandleMovieAdded(ctx context.Context, ev MovieAddedEvent) error {
	m := model.Movie{
		ID:        ev.MovieID,
		Title:     ev.Title,
		Genre:     ev.Genre,
		Year:      ev.Year,
		Poster:    ev.Poster,
		Synopsis:  ev.Synopsis,
		Duration:  ev.Duration,
		Director:  ev.Director,
		CreatedBy: ev.CreatedBy,
		CreatedAt: ev.CreatedAt,
	}
	if d.cache.ApplyMovie(m) {
		d.logger.Debugw("movie applied from event", "movie_id", m.ID)
	}
	d.hub.PublishMovie(m)

	notes, err := d.notes.CreateForAllExcept(ctx, ev.CreatedBy, ev.MovieID, MovieAddedMessage(ev))
	if err != nil {
		return fmt.Errorf("create notifications for movie %d: %w", ev.MovieID, err)
	}
	for _, n := range notes {
		d.cache.ApplyNotification(n)
		d.hub.PublishNotification(n)
	}
	d.logger.Infow("movie added dispatched", "movie_id", ev.MovieID, "notified", len(notes))
	return nil
}

func (d *Dispatcher) HandleChatPosted(_ context.Context, ev ChatPostedEvent) error {
	m := model.ChatMessage{
		ID:         ev.MessageID,
		UserID:     ev.UserID,
		SenderName: ev.SenderName,
		Body:       ev.Body,
		CreatedAt:  ev.CreatedAt,
	}
	d.cache.ApplyMessage(m)
	d.hub.PublishMessage(m)
	return nil
}

// Handlers maps each queue to a decoder in front of the matching
// Handle method, ready for NewConsumer.
func (d *Dispatcher) Handlers() map[string]Handler {
	return map[string]Handler{
		MovieAddedQueue: func(ctx context.Context, body []byte) error {
			var ev MovieAddedEvent
			if err := json.Unmarshal(body, &ev); err != nil {
				return fmt.Errorf("decode %s: %w", MovieAddedQueue, err)
			}
			return d.HandleMovieAdded(ctx, ev)
		},
		ChatPostedQueue: func(ctx context.Context, body []byte) error {
			var ev ChatPostedEvent
			if err := json.Unmarshal(body, &ev); err != nil {
				return fmt.Errorf("decode %s: %w", ChatPostedQueue, err)
			}
			return d.HandleChatPosted(ctx, ev)
		},
	}
}
