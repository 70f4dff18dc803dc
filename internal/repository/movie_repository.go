package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/cineclub/internal/model"
)

// ErrMovieNotFound indicates that a movie was not located in the DB.
var ErrMovieNotFound = errors.New("movie not found")

// MovieRepo manages persistence for movies.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

const movieColumns = `id, title, genre, year, poster, synopsis, duration, director, created_by, created_at`

func scanMovie(sc interface{ Scan(...any) error }) (model.Movie, error) {
	var (
		m        model.Movie
		year     sql.NullInt64
		duration sql.NullInt64
	)
	if err := sc.Scan(&m.ID, &m.Title, &m.Genre, &year, &m.Poster, &m.Synopsis, &duration, &m.Director, &m.CreatedBy, &m.CreatedAt); err != nil {
		return model.Movie{}, err
	}
	m.Year = int(year.Int64)
	m.Duration = int(duration.Int64)
	return m, nil
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v > 0}
}

// List returns every movie ordered by title, each carrying all of its
// view marks and ratings.  Three queries are issued and stitched
// together in memory.
func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+movieColumns+` FROM movies ORDER BY title ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movies []model.Movie
	index := map[uint64]int{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		index[m.ID] = len(movies)
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	vrows, err := r.db.QueryContext(ctx, `SELECT user_id, movie_id, state, updated_at FROM viewmarks ORDER BY updated_at ASC`)
	if err != nil {
		return nil, err
	}
	defer vrows.Close()
	for vrows.Next() {
		var v model.ViewMark
		if err := vrows.Scan(&v.UserID, &v.MovieID, &v.State, &v.UpdatedAt); err != nil {
			return nil, err
		}
		if i, ok := index[v.MovieID]; ok {
			movies[i].Views = append(movies[i].Views, v)
		}
	}
	if err := vrows.Err(); err != nil {
		return nil, err
	}

	rrows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.user_id, r.movie_id, r.rating, u.name, r.created_at, r.updated_at
		 FROM ratings r
		 JOIN users u ON u.id = r.user_id
		 ORDER BY r.created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rrows.Close()
	for rrows.Next() {
		var rt model.Rating
		if err := rrows.Scan(&rt.ID, &rt.UserID, &rt.MovieID, &rt.Value, &rt.UserName, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
			return nil, err
		}
		if i, ok := index[rt.MovieID]; ok {
			movies[i].Ratings = append(movies[i].Ratings, rt)
		}
	}
	return movies, rrows.Err()
}

// GetByID retrieves a movie without its marks.  It returns
// ErrMovieNotFound if there is no matching row.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (model.Movie, error) {
	m, err := scanMovie(r.db.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Movie{}, ErrMovieNotFound
	}
	return m, err
}

// Create inserts m and returns the stored row, including the DB
// generated id and created_at.
func (r *MovieRepo) Create(ctx context.Context, m model.Movie) (model.Movie, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO movies (title, genre, year, poster, synopsis, duration, director, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(m.Title), m.Genre, nullInt(m.Year), m.Poster, m.Synopsis, nullInt(m.Duration), m.Director, m.CreatedBy)
	if err != nil {
		return model.Movie{}, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Movie{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Update overwrites the editable columns of a movie owned by
// m.CreatedBy.  ErrMovieNotFound is returned for an unknown id and
// ErrForbidden when the movie belongs to someone else.
func (r *MovieRepo) Update(ctx context.Context, m model.Movie) (model.Movie, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE movies SET title = ?, genre = ?, year = ?, poster = ?, synopsis = ?, duration = ?, director = ?
		 WHERE id = ? AND created_by = ?`,
		m.Title, m.Genre, nullInt(m.Year), m.Poster, m.Synopsis, nullInt(m.Duration), m.Director, m.ID, m.CreatedBy)
	if err != nil {
		return model.Movie{}, translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// zero rows also happens when nothing changed, so look the row up
		cur, err := r.GetByID(ctx, m.ID)
		if err != nil {
			return model.Movie{}, err
		}
		if cur.CreatedBy != m.CreatedBy {
			return model.Movie{}, ErrForbidden
		}
		return cur, nil
	}
	return r.GetByID(ctx, m.ID)
}

// DeleteByIDAndOwner removes a movie and its view marks, ratings and
// notifications provided it belongs to ownerID.  The deletion occurs
// within a transaction to maintain integrity.
func (r *MovieRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var dbOwnerID uint64
	if err = tx.QueryRowContext(ctx, `SELECT created_by FROM movies WHERE id = ? FOR UPDATE`, id).Scan(&dbOwnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMovieNotFound
		}
		return err
	}
	if dbOwnerID != ownerID {
		return ErrForbidden
	}
	for _, q := range []string{
		`DELETE FROM notifications WHERE movie_id = ?`,
		`DELETE FROM ratings WHERE movie_id = ?`,
		`DELETE FROM viewmarks WHERE movie_id = ?`,
		`DELETE FROM movies WHERE id = ?`,
	} {
		if _, err = tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	return nil
}
