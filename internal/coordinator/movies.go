package coordinator

import (
	"context"
	"strconv"
	"strings"

	"github.com/iliyamo/cineclub/internal/model"
)

func viewKey(userID, movieID uint64) string {
	return strconv.FormatUint(userID, 10) + "/" + strconv.FormatUint(movieID, 10)
}

// ToggleView records state for (userID, movieID).  The mark replaces
// any earlier mark of the same user.  A failed write reloads the cache.
func (c *Coordinator) ToggleView(ctx context.Context, userID, movieID uint64, state model.ViewState) (model.Movie, error) {
	if userID == 0 {
		return model.Movie{}, ErrNoActingUser
	}
	if !state.Valid() {
		return model.Movie{}, ErrInvalidState
	}
	mark := model.ViewMark{UserID: userID, MovieID: movieID, State: state, UpdatedAt: c.now()}

	t := c.track(KindToggleView, userID, viewKey(userID, movieID))
	c.mu.Lock()
	i := c.movieIndex(movieID)
	if i < 0 {
		c.mu.Unlock()
		return model.Movie{}, ErrUnknownMovie
	}
	c.movies[i].Views = upsert(c.movies[i].Views, mark, func(v model.ViewMark) bool { return v.UserID == userID })
	c.mu.Unlock()
	t.applied()

	if err := c.remote.UpsertViewMark(ctx, mark); err != nil {
		c.resync(ctx)
		t.reverted(err)
		return model.Movie{}, &MutationError{Kind: KindToggleView, Recovery: RecoverRefetch, Err: err}
	}
	t.confirmed()

	c.mu.Lock()
	c.commitLocked(putMark(mark))
	i = c.movieIndex(movieID)
	var m model.Movie
	if i >= 0 {
		m = c.movies[i].Clone()
	}
	c.mu.Unlock()
	if i < 0 {
		return model.Movie{}, ErrUnknownMovie
	}
	return m, nil
}

// SetRating rates a movie the user already marked as watched.
func (c *Coordinator) SetRating(ctx context.Context, userID, movieID uint64, value int) (model.Rating, error) {
	return c.rate(ctx, userID, movieID, value, true)
}

// RecordRating rates a movie without checking the watched mark.  It
// backs the plain ratings endpoint, which never enforced that rule.
func (c *Coordinator) RecordRating(ctx context.Context, userID, movieID uint64, value int) (model.Rating, error) {
	return c.rate(ctx, userID, movieID, value, false)
}

func (c *Coordinator) rate(ctx context.Context, userID, movieID uint64, value int, requireWatched bool) (model.Rating, error) {
	if userID == 0 {
		return model.Rating{}, ErrNoActingUser
	}
	if value < model.MinRating || value > model.MaxRating {
		return model.Rating{}, ErrInvalidRating
	}

	t := c.track(KindSetRating, userID, viewKey(userID, movieID))
	c.mu.Lock()
	i := c.movieIndex(movieID)
	if i < 0 {
		c.mu.Unlock()
		return model.Rating{}, ErrUnknownMovie
	}
	if requireWatched {
		if s, ok := c.movies[i].ViewOf(userID); !ok || s != model.StateWatched {
			c.mu.Unlock()
			return model.Rating{}, ErrNotWatched
		}
	}
	now := c.now()
	r := model.Rating{UserID: userID, MovieID: movieID, Value: value, CreatedAt: now, UpdatedAt: now}
	if prev, ok := c.movies[i].RatingOf(userID); ok {
		r.ID = prev.ID
		r.CreatedAt = prev.CreatedAt
	}
	if u, ok := c.userLocked(userID); ok {
		r.UserName = u.Name
	}
	c.movies[i].Ratings = upsert(c.movies[i].Ratings, r, func(x model.Rating) bool { return x.UserID == userID })
	c.mu.Unlock()
	t.applied()

	stored, err := c.remote.UpsertRating(ctx, r)
	if err != nil {
		c.resync(ctx)
		t.reverted(err)
		return model.Rating{}, &MutationError{Kind: KindSetRating, Recovery: RecoverRefetch, Err: err}
	}
	if stored.UserName == "" {
		stored.UserName = r.UserName
	}

	c.mu.Lock()
	c.commitLocked(putRating(stored))
	c.mu.Unlock()
	t.confirmed()
	return stored, nil
}

// MovieDraft is the input of AddMovie.  InitialView is optional.
type MovieDraft struct {
	Title       string
	Genre       string
	Year        int
	Poster      string
	Synopsis    string
	Duration    int
	Director    string
	InitialView model.ViewState
}

// AddResult carries the stored movie and, when the initial view mark
// could not be written, the error of that second write.  The movie is
// kept in that case.
type AddResult struct {
	Movie   model.Movie
	ViewErr error
}

// AddMovie inserts a movie created by userID.  A placeholder keyed by a
// temporary id is visible in the cache until the store answers.
func (c *Coordinator) AddMovie(ctx context.Context, userID uint64, d MovieDraft) (AddResult, error) {
	if userID == 0 {
		return AddResult{}, ErrNoActingUser
	}
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return AddResult{}, ErrEmptyTitle
	}
	if d.InitialView != "" && !d.InitialView.Valid() {
		return AddResult{}, ErrInvalidState
	}

	tmp := c.tempID()
	placeholder := model.Movie{
		TempID:    tmp,
		Title:     d.Title,
		Genre:     strings.TrimSpace(d.Genre),
		Year:      d.Year,
		Poster:    d.Poster,
		Synopsis:  d.Synopsis,
		Duration:  d.Duration,
		Director:  d.Director,
		CreatedBy: userID,
		CreatedAt: c.now(),
	}
	if d.InitialView != "" {
		placeholder.Views = []model.ViewMark{{UserID: userID, State: d.InitialView, UpdatedAt: placeholder.CreatedAt}}
	}

	t := c.track(KindAddMovie, userID, tmp)
	c.mu.Lock()
	c.movies = append(c.movies, placeholder)
	c.mu.Unlock()
	t.applied()

	insert := placeholder
	insert.Views = nil
	stored, err := c.remote.InsertMovie(ctx, insert)
	if err != nil {
		c.resync(ctx)
		t.reverted(err)
		return AddResult{}, &MutationError{Kind: KindAddMovie, Recovery: RecoverRefetch, Err: err}
	}
	stored.TempID = ""
	stored.Views = nil
	stored.Ratings = nil

	res := AddResult{}
	if d.InitialView != "" {
		mark := model.ViewMark{UserID: userID, MovieID: stored.ID, State: d.InitialView, UpdatedAt: c.now()}
		if err := c.remote.UpsertViewMark(ctx, mark); err != nil {
			c.logger.Warnw("initial view mark not stored, keeping movie", "movie_id", stored.ID, "user_id", userID, "error", err)
			res.ViewErr = err
		} else {
			stored.Views = []model.ViewMark{mark}
		}
	}

	c.mu.Lock()
	if i := c.tempIndex(tmp); i >= 0 && c.movieIndex(stored.ID) < 0 {
		c.movies[i] = stored.Clone()
		c.recordLocked(putMovie(stored))
	} else {
		c.movies, _ = removeFirst(c.movies, func(m model.Movie) bool { return m.TempID == tmp })
		c.commitLocked(putMovie(stored))
	}
	for _, v := range stored.Views {
		c.recordLocked(putMark(v))
	}
	c.mu.Unlock()
	t.confirmed()

	res.Movie = stored.Clone()
	return res, nil
}

// MoviePatch lists the editable fields.  Nil fields are left unchanged.
type MoviePatch struct {
	Title    *string
	Genre    *string
	Year     *int
	Poster   *string
	Synopsis *string
	Duration *int
	Director *string
}

func (p MoviePatch) applyTo(m *model.Movie) {
	if p.Title != nil {
		m.Title = strings.TrimSpace(*p.Title)
	}
	if p.Genre != nil {
		m.Genre = strings.TrimSpace(*p.Genre)
	}
	if p.Year != nil {
		m.Year = *p.Year
	}
	if p.Poster != nil {
		m.Poster = *p.Poster
	}
	if p.Synopsis != nil {
		m.Synopsis = *p.Synopsis
	}
	if p.Duration != nil {
		m.Duration = *p.Duration
	}
	if p.Director != nil {
		m.Director = *p.Director
	}
}

// EditMovie updates a movie owned by userID.  Ownership is checked
// against the cache before any remote call.
func (c *Coordinator) EditMovie(ctx context.Context, userID, movieID uint64, p MoviePatch) (model.Movie, error) {
	if userID == 0 {
		return model.Movie{}, ErrNoActingUser
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return model.Movie{}, ErrEmptyTitle
	}

	t := c.track(KindEditMovie, userID, strconv.FormatUint(movieID, 10))
	c.mu.Lock()
	i := c.movieIndex(movieID)
	if i < 0 {
		c.mu.Unlock()
		return model.Movie{}, ErrUnknownMovie
	}
	if c.movies[i].CreatedBy != userID {
		c.mu.Unlock()
		return model.Movie{}, ErrNotOwner
	}
	next := c.movies[i].Clone()
	p.applyTo(&next)
	c.movies[i] = next
	c.mu.Unlock()
	t.applied()

	stored, err := c.remote.UpdateMovie(ctx, next)
	if err != nil {
		c.resync(ctx)
		t.reverted(err)
		return model.Movie{}, &MutationError{Kind: KindEditMovie, Recovery: RecoverRefetch, Err: err}
	}

	c.mu.Lock()
	c.commitLocked(editMovie(stored))
	if i := c.movieIndex(movieID); i >= 0 {
		stored = c.movies[i].Clone()
	}
	c.mu.Unlock()
	t.confirmed()
	return stored, nil
}

// DeleteMovie removes a movie owned by userID together with its marks,
// ratings and the notifications that announced it.
func (c *Coordinator) DeleteMovie(ctx context.Context, userID, movieID uint64) error {
	if userID == 0 {
		return ErrNoActingUser
	}

	t := c.track(KindDeleteMovie, userID, strconv.FormatUint(movieID, 10))
	c.mu.Lock()
	i := c.movieIndex(movieID)
	if i < 0 {
		c.mu.Unlock()
		return ErrUnknownMovie
	}
	if c.movies[i].CreatedBy != userID {
		c.mu.Unlock()
		return ErrNotOwner
	}
	c.movies, _ = removeFirst(c.movies, func(m model.Movie) bool { return m.ID == movieID })
	c.mu.Unlock()
	t.applied()

	if err := c.remote.DeleteMovie(ctx, movieID, userID); err != nil {
		c.resync(ctx)
		t.reverted(err)
		return &MutationError{Kind: KindDeleteMovie, Recovery: RecoverRefetch, Err: err}
	}

	c.mu.Lock()
	c.commitLocked(dropMovie(movieID))
	c.dropNotificationsLocked(movieID)
	c.mu.Unlock()
	t.confirmed()
	return nil
}

// ApplyMovie adds a movie created elsewhere unless it is already cached.
func (c *Coordinator) ApplyMovie(m model.Movie) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m.ID == 0 || c.movieIndex(m.ID) >= 0 {
		return false
	}
	c.commitLocked(putMovie(m))
	return true
}
