package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/newsroomhq/rundown/internal/models"
)

func (r *Repository) CreateUser(ctx context.Context, u *models.User) error {
	query := `INSERT INTO users (user_id, display_name, role) VALUES (?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, u.UserID, u.DisplayName, u.Role)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *Repository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	query := `SELECT user_id, display_name, role, created_at, updated_at FROM users WHERE user_id = ?`

	var u models.User
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&u.UserID, &u.DisplayName, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]*models.User, error) {
	query := `SELECT user_id, display_name, role, created_at, updated_at FROM users ORDER BY display_name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.UserID, &u.DisplayName, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return users, nil
}
