package coordinator

import "github.com/iliyamo/cineclub/internal/model"

// A replay re-applies one confirmed write to a movie list.  It may
// modify elements of the slice it is given but never the nested slices
// they share with other lists.
type replay func([]model.Movie) []model.Movie

type journalEntry struct {
	seq uint64
	fn  replay
}

// commitLocked applies a confirmed write to the cache and records it.
func (c *Coordinator) commitLocked(fn replay) {
	c.movies = fn(c.movies)
	c.recordLocked(fn)
}

// recordLocked keeps fn while a refetch is in flight so the snapshot it
// returns can be brought up to date before it replaces the cache.
func (c *Coordinator) recordLocked(fn replay) {
	c.journalSeq++
	if c.loading > 0 {
		c.journal = append(c.journal, journalEntry{seq: c.journalSeq, fn: fn})
	}
}

// replayLocked applies every write recorded after seq to movies.
func (c *Coordinator) replayLocked(movies []model.Movie, seq uint64) []model.Movie {
	for _, e := range c.journal {
		if e.seq > seq {
			movies = e.fn(movies)
		}
	}
	return movies
}

func indexOf(movies []model.Movie, id uint64) int {
	for i := range movies {
		if movies[i].ID == id && id != 0 {
			return i
		}
	}
	return -1
}

func putMark(mark model.ViewMark) replay {
	return func(movies []model.Movie) []model.Movie {
		if i := indexOf(movies, mark.MovieID); i >= 0 {
			movies[i].Views = upsert(movies[i].Views, mark, func(v model.ViewMark) bool { return v.UserID == mark.UserID })
		}
		return movies
	}
}

func putRating(r model.Rating) replay {
	return func(movies []model.Movie) []model.Movie {
		if i := indexOf(movies, r.MovieID); i >= 0 {
			movies[i].Ratings = upsert(movies[i].Ratings, r, func(x model.Rating) bool { return x.UserID == r.UserID })
		}
		return movies
	}
}

func putMovie(m model.Movie) replay {
	return func(movies []model.Movie) []model.Movie {
		if indexOf(movies, m.ID) >= 0 {
			return movies
		}
		return append(movies, m.Clone())
	}
}

// editMovie swaps the stored fields of m in and keeps the cached marks
// and ratings.
func editMovie(m model.Movie) replay {
	return func(movies []model.Movie) []model.Movie {
		if i := indexOf(movies, m.ID); i >= 0 {
			next := m.Clone()
			next.Views = movies[i].Views
			next.Ratings = movies[i].Ratings
			movies[i] = next
		}
		return movies
	}
}

func dropMovie(id uint64) replay {
	return func(movies []model.Movie) []model.Movie {
		out, _ := removeFirst(movies, func(m model.Movie) bool { return m.ID == id })
		return out
	}
}
