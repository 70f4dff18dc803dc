// Package coordinator owns the server-side cache of the group's movies,
// users, notifications and chat, and applies every write optimistically:
// the cache changes first, the store is written second, and a failed
// write is recovered by a full refetch, by discarding a placeholder, or
// by surfacing the error.
package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/xid"
	"go.uber.org/zap"

	"github.com/iliyamo/cineclub/internal/model"
)

// Remote is the authoritative store behind the cache.
type Remote interface {
	FetchUsers(ctx context.Context) ([]model.User, error)
	FetchMovies(ctx context.Context) ([]model.Movie, error)
	FetchNotifications(ctx context.Context, userID uint64, limit int) ([]model.Notification, error)
	FetchMessages(ctx context.Context, limit int) ([]model.ChatMessage, error)

	UpsertViewMark(ctx context.Context, v model.ViewMark) error
	UpsertRating(ctx context.Context, r model.Rating) (model.Rating, error)
	InsertMovie(ctx context.Context, m model.Movie) (model.Movie, error)
	UpdateMovie(ctx context.Context, m model.Movie) (model.Movie, error)
	DeleteMovie(ctx context.Context, movieID, creatorID uint64) error

	MarkNotificationRead(ctx context.Context, id, userID uint64) error
	MarkAllNotificationsRead(ctx context.Context, userID uint64) error
	InsertMessage(ctx context.Context, m model.ChatMessage) (model.ChatMessage, error)
}

const (
	defaultNotificationLimit = 20
	defaultMessageLimit      = 50
	refetchTimeout           = 10 * time.Second
	anonymousSender          = "Anónimo"
)

// Coordinator serialises access to the cache.  The lock is never held
// across a remote call.
type Coordinator struct {
	remote Remote
	logger *zap.SugaredLogger

	notificationLimit int
	messageLimit      int
	observer          func(Mutation)
	now               func() time.Time
	tempID            func() string

	mu             sync.RWMutex
	users          []model.User
	movies         []model.Movie
	notifications  map[uint64][]model.Notification
	messages       []model.ChatMessage
	messagesLoaded bool
	dismissed      map[uint64]string

	// Confirmed movie writes seen while a Load is running.
	loading    int
	journalSeq uint64
	journal    []journalEntry

	// Inbound rows that arrive while an inbox is being fetched.
	notesLoading    map[uint64]int
	notesPending    map[uint64][]model.Notification
	messagesLoading int
	messagesPending []model.ChatMessage
}

// Option alters the defaults of a new Coordinator.
type Option interface {
	apply(*Coordinator)
}

type optionFunc func(*Coordinator)

func (f optionFunc) apply(c *Coordinator) { f(c) }

// WithNotificationLimit caps the cached notifications per user.
func WithNotificationLimit(n int) Option {
	return optionFunc(func(c *Coordinator) {
		if n > 0 {
			c.notificationLimit = n
		}
	})
}

// WithMessageLimit caps the cached chat history.
func WithMessageLimit(n int) Option {
	return optionFunc(func(c *Coordinator) {
		if n > 0 {
			c.messageLimit = n
		}
	})
}

// WithObserver registers fn to receive every mutation phase change.
func WithObserver(fn func(Mutation)) Option {
	return optionFunc(func(c *Coordinator) { c.observer = fn })
}

// WithClock replaces time.Now.
func WithClock(fn func() time.Time) Option {
	return optionFunc(func(c *Coordinator) { c.now = fn })
}

// WithTempID replaces the placeholder id generator.
func WithTempID(fn func() string) Option {
	return optionFunc(func(c *Coordinator) { c.tempID = fn })
}

// New returns an empty Coordinator.  Call Load before serving reads.
func New(remote Remote, logger *zap.SugaredLogger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	c := &Coordinator{
		remote:            remote,
		logger:            logger,
		notificationLimit: defaultNotificationLimit,
		messageLimit:      defaultMessageLimit,
		now:               func() time.Time { return time.Now().UTC() },
		tempID:            func() string { return "tmp-" + xid.New().String() },
		notifications:     make(map[uint64][]model.Notification),
		dismissed:         make(map[uint64]string),
		notesLoading:      make(map[uint64]int),
		notesPending:      make(map[uint64][]model.Notification),
	}
	for _, o := range opts {
		o.apply(c)
	}
	return c
}

// Load fills the user and movie cache from the store.  Writes confirmed
// while the fetch runs are replayed onto the snapshot, so a snapshot
// read before they committed does not hide them.
func (c *Coordinator) Load(ctx context.Context) error {
	c.mu.Lock()
	since := c.journalSeq
	c.loading++
	c.mu.Unlock()

	users, movies, err := c.fetchAll(ctx)

	c.mu.Lock()
	c.loading--
	if err == nil {
		cached := make([]model.Movie, len(movies))
		for i, m := range movies {
			cached[i] = m.Clone()
		}
		c.users = append([]model.User(nil), users...)
		c.movies = c.replayLocked(cached, since)
	}
	if c.loading == 0 {
		c.journal = nil
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.logger.Infow("cache loaded", "users", len(users), "movies", len(movies))
	return nil
}

func (c *Coordinator) fetchAll(ctx context.Context) ([]model.User, []model.Movie, error) {
	users, err := c.remote.FetchUsers(ctx)
	if err != nil {
		return nil, nil, err
	}
	movies, err := c.remote.FetchMovies(ctx)
	if err != nil {
		return nil, nil, err
	}
	return users, movies, nil
}

// Refetch reloads users and movies, discarding optimistic state that
// has not been confirmed.
func (c *Coordinator) Refetch(ctx context.Context) error {
	return c.Load(ctx)
}

// RefreshUsers reloads only the user directory.
func (c *Coordinator) RefreshUsers(ctx context.Context) error {
	users, err := c.remote.FetchUsers(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.users = users
	c.mu.Unlock()
	return nil
}

// resync reloads the cache after a failed write.  It runs detached
// from the caller's cancellation so an aborted request still leaves a
// consistent cache behind.
func (c *Coordinator) resync(ctx context.Context) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refetchTimeout)
	defer cancel()
	if err := c.Refetch(rctx); err != nil {
		c.logger.Errorw("refetch after failed write", "error", err)
	}
}

// Users returns a copy of the cached users.
func (c *Coordinator) Users() []model.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.User(nil), c.users...)
}

// User returns the cached user with id.
func (c *Coordinator) User(id uint64) (model.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userLocked(id)
}

func (c *Coordinator) userLocked(id uint64) (model.User, bool) {
	for _, u := range c.users {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

// Movies returns a deep copy of the cached movies.
func (c *Coordinator) Movies() []model.Movie {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Movie, len(c.movies))
	for i, m := range c.movies {
		out[i] = m.Clone()
	}
	return out
}

// Movie returns a copy of the cached movie with id.
func (c *Coordinator) Movie(id uint64) (model.Movie, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.movieIndex(id); i >= 0 {
		return c.movies[i].Clone(), true
	}
	return model.Movie{}, false
}

func (c *Coordinator) movieIndex(id uint64) int {
	return indexOf(c.movies, id)
}

func (c *Coordinator) tempIndex(tempID string) int {
	for i := range c.movies {
		if c.movies[i].TempID == tempID {
			return i
		}
	}
	return -1
}
