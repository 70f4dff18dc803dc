package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/cineclub/internal/model"
)

// NotificationRepo stores per-user inbox rows.
type NotificationRepo struct {
	db *sql.DB
}

func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// ListByUser returns the newest limit notifications of userID.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64, limit int) ([]model.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, movie_id, message, is_read, created_at
		 FROM notifications
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Notification{}
	for rows.Next() {
		var (
			n       model.Notification
			movieID sql.NullInt64
		)
		if err := rows.Scan(&n.ID, &n.UserID, &movieID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.MovieID = uint64(movieID.Int64)
		out = append(out, n)
	}
	return out, rows.Err()
}

// CreateForAllExcept writes message to every member other than
// exceptUserID in a single transaction and returns the new rows.
func (r *NotificationRepo) CreateForAllExcept(ctx context.Context, exceptUserID, movieID uint64, message string) (out []model.Notification, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	rows, err := tx.QueryContext(ctx, `SELECT id FROM users WHERE id <> ? ORDER BY id`, exceptUserID)
	if err != nil {
		return nil, err
	}
	var recipients []uint64
	for rows.Next() {
		var id uint64
		if err = rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		recipients = append(recipients, id)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, nil
	}

	placeholders := make([]string, 0, len(recipients))
	args := make([]any, 0, 3*len(recipients))
	for _, id := range recipients {
		placeholders = append(placeholders, "(?, ?, ?)")
		args = append(args, id, movieID, message)
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO notifications (user_id, movie_id, message) VALUES `+strings.Join(placeholders, ", "), args...)
	if err != nil {
		err = translate(err)
		return nil, err
	}
	first, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	created, err := tx.QueryContext(ctx,
		`SELECT id, user_id, created_at
		 FROM notifications
		 WHERE movie_id = ? AND id >= ?
		 ORDER BY id`, movieID, first)
	if err != nil {
		return nil, err
	}
	defer created.Close()
	out = make([]model.Notification, 0, len(recipients))
	for created.Next() {
		n := model.Notification{MovieID: movieID, Message: message}
		if err = created.Scan(&n.ID, &n.UserID, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err = created.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead flags one notification of userID as read.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM notifications WHERE id = ? AND user_id = ?)`, id, userID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return sql.ErrNoRows
		}
	}
	return nil
}

// MarkAllRead flags every unread notification of userID.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = ? AND is_read = FALSE`, userID)
	return err
}
