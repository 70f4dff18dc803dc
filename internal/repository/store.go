package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/cineclub/internal/model"
)

// Store groups the repositories behind the coordinator's remote
// interface.
type Store struct {
	Users         *UserRepo
	Movies        *MovieRepo
	ViewMarks     *ViewMarkRepo
	Ratings       *RatingRepo
	Notifications *NotificationRepo
	Messages      *MessageRepo
	Tokens        *TokenRepo
}

// NewStore wires every repository to db.
func NewStore(db *sql.DB) *Store {
	return &Store{
		Users:         NewUserRepo(db),
		Movies:        NewMovieRepo(db),
		ViewMarks:     NewViewMarkRepo(db),
		Ratings:       NewRatingRepo(db),
		Notifications: NewNotificationRepo(db),
		Messages:      NewMessageRepo(db),
		Tokens:        NewTokenRepo(db),
	}
}

func (s *Store) FetchUsers(ctx context.Context) ([]model.User, error) {
	return s.Users.List(ctx)
}

func (s *Store) FetchMovies(ctx context.Context) ([]model.Movie, error) {
	return s.Movies.List(ctx)
}

func (s *Store) FetchNotifications(ctx context.Context, userID uint64, limit int) ([]model.Notification, error) {
	return s.Notifications.ListByUser(ctx, userID, limit)
}

func (s *Store) FetchMessages(ctx context.Context, limit int) ([]model.ChatMessage, error) {
	return s.Messages.ListRecent(ctx, limit)
}

func (s *Store) UpsertViewMark(ctx context.Context, v model.ViewMark) error {
	return s.ViewMarks.Upsert(ctx, v)
}

func (s *Store) UpsertRating(ctx context.Context, r model.Rating) (model.Rating, error) {
	return s.Ratings.Upsert(ctx, r)
}

func (s *Store) InsertMovie(ctx context.Context, m model.Movie) (model.Movie, error) {
	return s.Movies.Create(ctx, m)
}

func (s *Store) UpdateMovie(ctx context.Context, m model.Movie) (model.Movie, error) {
	return s.Movies.Update(ctx, m)
}

func (s *Store) DeleteMovie(ctx context.Context, movieID, creatorID uint64) error {
	return s.Movies.DeleteByIDAndOwner(ctx, movieID, creatorID)
}

func (s *Store) MarkNotificationRead(ctx context.Context, id, userID uint64) error {
	return s.Notifications.MarkRead(ctx, id, userID)
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID uint64) error {
	return s.Notifications.MarkAllRead(ctx, userID)
}

func (s *Store) InsertMessage(ctx context.Context, m model.ChatMessage) (model.ChatMessage, error) {
	return s.Messages.Create(ctx, m)
}
