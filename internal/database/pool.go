package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/newsroomhq/rundown/internal/models"
)

const poolColumns = `story_id, slug, title, est_duration_secs, status, assigned_row_id, created_by, created_at, updated_at`

func (r *Repository) CreatePoolStory(ctx context.Context, s *models.PoolStory) error {
	query := `INSERT INTO pool_stories
		(story_id, slug, title, est_duration_secs, status, created_by)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		s.StoryID, s.Slug, s.Title, s.EstDurationSecs, s.Status, s.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to create pool story: %w", err)
	}
	return nil
}

func (r *Repository) GetPoolStory(ctx context.Context, storyID string) (*models.PoolStory, error) {
	query := `SELECT ` + poolColumns + ` FROM pool_stories WHERE story_id = ?`
	return scanPoolStory(r.db.QueryRowContext(ctx, query, storyID))
}

// GetPoolStoryForUpdateTx locks the story so two producers cannot assign it
// to different bulletins at once.
func (r *Repository) GetPoolStoryForUpdateTx(ctx context.Context, tx *sql.Tx, storyID string) (*models.PoolStory, error) {
	query := `SELECT ` + poolColumns + ` FROM pool_stories WHERE story_id = ? FOR UPDATE`
	return scanPoolStory(tx.QueryRowContext(ctx, query, storyID))
}

func scanPoolStory(row *sql.Row) (*models.PoolStory, error) {
	var s models.PoolStory
	err := row.Scan(
		&s.StoryID,
		&s.Slug,
		&s.Title,
		&s.EstDurationSecs,
		&s.Status,
		&s.AssignedRowID,
		&s.CreatedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan pool story: %w", err)
	}
	return &s, nil
}

func (r *Repository) ListPoolStories(ctx context.Context, status models.PoolStoryStatus) ([]*models.PoolStory, error) {
	query := `SELECT ` + poolColumns + ` FROM pool_stories`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pool stories: %w", err)
	}
	defer rows.Close()

	var stories []*models.PoolStory
	for rows.Next() {
		var s models.PoolStory
		if err := rows.Scan(
			&s.StoryID,
			&s.Slug,
			&s.Title,
			&s.EstDurationSecs,
			&s.Status,
			&s.AssignedRowID,
			&s.CreatedBy,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pool story: %w", err)
		}
		stories = append(stories, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return stories, nil
}

func (r *Repository) UpdatePoolStory(ctx context.Context, s *models.PoolStory) error {
	query := `UPDATE pool_stories
		SET slug = ?, title = ?, est_duration_secs = ?, status = ?
		WHERE story_id = ?`

	res, err := r.db.ExecContext(ctx, query, s.Slug, s.Title, s.EstDurationSecs, s.Status, s.StoryID)
	if err != nil {
		return fmt.Errorf("failed to update pool story: %w", err)
	}
	return requireAffected(res)
}

// MarkPoolStoryAssignedTx links the story to the rundown row created from it.
func (r *Repository) MarkPoolStoryAssignedTx(ctx context.Context, tx *sql.Tx, storyID, rowID string) error {
	query := `UPDATE pool_stories SET status = ?, assigned_row_id = ? WHERE story_id = ?`

	res, err := tx.ExecContext(ctx, query, models.PoolAssigned, rowID, storyID)
	if err != nil {
		return fmt.Errorf("failed to mark pool story assigned: %w", err)
	}
	return requireAffected(res)
}
