// Package coordinatortest provides a testify mock of coordinator.Remote
// for packages that test code built on a Coordinator.
package coordinatortest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/cineclub/internal/model"
)

// Remote is a mock.Mock backed coordinator.Remote.  Context arguments
// are not recorded; expectations are set on the remaining arguments.
type Remote struct {
	mock.Mock
}

func (r *Remote) FetchUsers(ctx context.Context) ([]model.User, error) {
	args := r.Called()
	return args.Get(0).([]model.User), args.Error(1)
}

func (r *Remote) FetchMovies(ctx context.Context) ([]model.Movie, error) {
	args := r.Called()
	return args.Get(0).([]model.Movie), args.Error(1)
}

func (r *Remote) FetchNotifications(ctx context.Context, userID uint64, limit int) ([]model.Notification, error) {
	args := r.Called(userID, limit)
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (r *Remote) FetchMessages(ctx context.Context, limit int) ([]model.ChatMessage, error) {
	args := r.Called(limit)
	return args.Get(0).([]model.ChatMessage), args.Error(1)
}

func (r *Remote) UpsertViewMark(ctx context.Context, v model.ViewMark) error {
	return r.Called(v).Error(0)
}

func (r *Remote) UpsertRating(ctx context.Context, rt model.Rating) (model.Rating, error) {
	args := r.Called(rt)
	return args.Get(0).(model.Rating), args.Error(1)
}

func (r *Remote) InsertMovie(ctx context.Context, m model.Movie) (model.Movie, error) {
	args := r.Called(m)
	return args.Get(0).(model.Movie), args.Error(1)
}

func (r *Remote) UpdateMovie(ctx context.Context, m model.Movie) (model.Movie, error) {
	args := r.Called(m)
	return args.Get(0).(model.Movie), args.Error(1)
}

func (r *Remote) DeleteMovie(ctx context.Context, movieID, creatorID uint64) error {
	return r.Called(movieID, creatorID).Error(0)
}

func (r *Remote) MarkNotificationRead(ctx context.Context, id, userID uint64) error {
	return r.Called(id, userID).Error(0)
}

func (r *Remote) MarkAllNotificationsRead(ctx context.Context, userID uint64) error {
	return r.Called(userID).Error(0)
}

func (r *Remote) InsertMessage(ctx context.Context, m model.ChatMessage) (model.ChatMessage, error) {
	args := r.Called(m)
	return args.Get(0).(model.ChatMessage), args.Error(1)
}
