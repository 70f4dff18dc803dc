package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/cineclub/internal/model"
)

// RatingRepo persists 1-5 scores, unique per (user_id, movie_id).
type RatingRepo struct{ DB *sql.DB }

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{DB: db} }

// Upsert inserts or updates the rating of the pair and returns the
// stored row joined with the rater's name.
func (r *RatingRepo) Upsert(ctx context.Context, rt model.Rating) (model.Rating, error) {
	if _, err := r.DB.ExecContext(ctx,
		`INSERT INTO ratings (user_id, movie_id, rating) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE rating = VALUES(rating), updated_at = CURRENT_TIMESTAMP`,
		rt.UserID, rt.MovieID, rt.Value); err != nil {
		return model.Rating{}, translate(err)
	}
	return r.Get(ctx, rt.UserID, rt.MovieID)
}

// Get returns the rating userID gave movieID.
func (r *RatingRepo) Get(ctx context.Context, userID, movieID uint64) (model.Rating, error) {
	var out model.Rating
	err := r.DB.QueryRowContext(ctx,
		`SELECT r.id, r.user_id, r.movie_id, r.rating, u.name, r.created_at, r.updated_at
		 FROM ratings r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.user_id = ? AND r.movie_id = ?`,
		userID, movieID).Scan(&out.ID, &out.UserID, &out.MovieID, &out.Value, &out.UserName, &out.CreatedAt, &out.UpdatedAt)
	return out, err
}
