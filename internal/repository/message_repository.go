package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/cineclub/internal/model"
)

// MessageRepo stores the group chat.
type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// ListRecent returns the newest limit messages, oldest first.
func (r *MessageRepo) ListRecent(ctx context.Context, limit int) ([]model.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, body, created_at FROM (
			SELECT m.id, m.user_id, COALESCE(u.name, '') AS name, m.body, m.created_at
			FROM messages m
			LEFT JOIN users u ON u.id = m.user_id
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT ?
		) recent
		ORDER BY created_at ASC, id ASC`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ChatMessage{}
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.SenderName, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Create stores a message and returns the row with id, timestamp and
// sender name filled in.
func (r *MessageRepo) Create(ctx context.Context, m model.ChatMessage) (model.ChatMessage, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO messages (user_id, body) VALUES (?, ?)`, m.UserID, m.Body)
	if err != nil {
		return model.ChatMessage{}, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.ChatMessage{}, err
	}
	var out model.ChatMessage
	err = r.db.QueryRowContext(ctx,
		`SELECT m.id, m.user_id, COALESCE(u.name, ''), m.body, m.created_at
		 FROM messages m
		 LEFT JOIN users u ON u.id = m.user_id
		 WHERE m.id = ?`, id).Scan(&out.ID, &out.UserID, &out.SenderName, &out.Body, &out.CreatedAt)
	return out, err
}
