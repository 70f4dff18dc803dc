package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/cineclub/internal/model"
	"github.com/iliyamo/cineclub/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrNameExists = errors.New("name already exists")

// Create inserts a member with a bcrypt hashed PIN and returns its ID.
func (r *UserRepo) Create(ctx context.Context, name, avatar, pin string, chatEnabled bool, cost int) (uint64, error) {
	name = strings.TrimSpace(name)
	hash, err := utils.HashPIN(pin, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, avatar, chat_enabled, pin_hash) VALUES (?,?,?,?)",
		name, avatar, chatEnabled, hash)
	if err != nil {
		if errors.Is(translate(err), ErrConflict) {
			return 0, ErrNameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// List returns the directory ordered by name.  PIN hashes are not read.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id,name,avatar,chat_enabled,created_at FROM users ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Avatar, &u.ChatEnabled, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// GetByID fetches a user by id, PIN hash included.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,avatar,chat_enabled,pin_hash,created_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Name, &u.Avatar, &u.ChatEnabled, &u.PinHash, &u.CreatedAt)
	return u, err
}

// SetPIN replaces the PIN of a member.
func (r *UserRepo) SetPIN(ctx context.Context, id uint64, pin string, cost int) error {
	hash, err := utils.HashPIN(pin, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET pin_hash=? WHERE id=?", hash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
