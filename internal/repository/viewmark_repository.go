package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/cineclub/internal/model"
)

// ViewMarkRepo persists per-user watched states.  (user_id, movie_id)
// is the primary key of viewmarks, so every write is an upsert.
type ViewMarkRepo struct{ DB *sql.DB }

func NewViewMarkRepo(db *sql.DB) *ViewMarkRepo { return &ViewMarkRepo{DB: db} }

// Upsert stores v, replacing any earlier state of the same pair.
func (r *ViewMarkRepo) Upsert(ctx context.Context, v model.ViewMark) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO viewmarks (user_id, movie_id, state) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE state = VALUES(state), updated_at = CURRENT_TIMESTAMP`,
		v.UserID, v.MovieID, string(v.State))
	return translate(err)
}
