package queue

import (
	"context"

	"go.uber.org/zap"

	"github.com/iliyamo/cineclub/internal/model"
)

// Bus is what request handlers emit events into.  With a publisher the
// event goes to the broker and the consumer dispatches it; without one,
// or when publishing fails, the dispatcher runs inline.
type Bus struct {
	pub    *Publisher
	disp   *Dispatcher
	logger *zap.SugaredLogger
}

func NewBus(pub *Publisher, disp *Dispatcher, logger *zap.SugaredLogger) *Bus {
	return &Bus{pub: pub, disp: disp, logger: logger}
}

// MovieAdded announces m, added by the member named creator.
func (b *Bus) MovieAdded(ctx context.Context, m model.Movie, creator string) {
	ev := MovieAddedEvent{
		MovieID:     m.ID,
		Title:       m.Title,
		Genre:       m.Genre,
		Year:        m.Year,
		Poster:      m.Poster,
		Synopsis:    m.Synopsis,
		Duration:    m.Duration,
		Director:    m.Director,
		CreatedBy:   m.CreatedBy,
		CreatorName: creator,
		CreatedAt:   m.CreatedAt,
	}
	if b.pub != nil && b.pub.Publish(ctx, MovieAddedQueue, ev) == nil {
		return
	}
	if err := b.disp.HandleMovieAdded(ctx, ev); err != nil {
		b.logger.Errorw("inline dispatch failed", "queue", MovieAddedQueue, "error", err)
	}
}

// ChatPosted announces a stored chat message.
func (b *Bus) ChatPosted(ctx context.Context, m model.ChatMessage) {
	ev := ChatPostedEvent{
		MessageID:  m.ID,
		UserID:     m.UserID,
		SenderName: m.SenderName,
		Body:       m.Body,
		CreatedAt:  m.CreatedAt,
	}
	if b.pub != nil && b.pub.Publish(ctx, ChatPostedQueue, ev) == nil {
		return
	}
	if err := b.disp.HandleChatPosted(ctx, ev); err != nil {
		b.logger.Errorw("inline dispatch failed", "queue", ChatPostedQueue, "error", err)
	}
}
