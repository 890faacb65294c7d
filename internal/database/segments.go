package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/newsroomhq/rundown/internal/models"
)

const segmentColumns = `segment_id, row_id, sort_order, segment_type, script, duration_secs, created_at, updated_at`

func (r *Repository) GetSegments(ctx context.Context, rowID string) ([]*models.RowSegment, error) {
	query := `SELECT ` + segmentColumns + ` FROM row_segments
		WHERE row_id = ? ORDER BY sort_order`

	rows, err := r.db.QueryContext(ctx, query, rowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query segments: %w", err)
	}
	defer rows.Close()

	var segments []*models.RowSegment
	for rows.Next() {
		s, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		segments = append(segments, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return segments, nil
}

func (r *Repository) GetSegmentByID(ctx context.Context, segmentID string) (*models.RowSegment, error) {
	query := `SELECT ` + segmentColumns + ` FROM row_segments WHERE segment_id = ?`
	return scanSegment(r.db.QueryRowContext(ctx, query, segmentID))
}

// scanSegment reads one segment. The script column is nullable in the schema,
// so a NULL written outside the app scans as the empty string.
func scanSegment(s rowScanner) (*models.RowSegment, error) {
	var segment models.RowSegment
	var script sql.NullString
	err := s.Scan(
		&segment.SegmentID,
		&segment.RowID,
		&segment.SortOrder,
		&segment.SegmentType,
		&script,
		&segment.DurationSecs,
		&segment.CreatedAt,
		&segment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan segment: %w", err)
	}
	segment.Script = script.String
	return &segment, nil
}

func (r *Repository) CreateSegment(ctx context.Context, s *models.RowSegment) error {
	query := `INSERT INTO row_segments
		(segment_id, row_id, sort_order, segment_type, script, duration_secs)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		s.SegmentID, s.RowID, s.SortOrder, s.SegmentType, s.Script, s.DurationSecs)
	if err != nil {
		return fmt.Errorf("failed to create segment: %w", err)
	}
	return nil
}

func (r *Repository) UpdateSegment(ctx context.Context, s *models.RowSegment) error {
	query := `UPDATE row_segments
		SET sort_order = ?, segment_type = ?, script = ?, duration_secs = ?
		WHERE segment_id = ?`

	res, err := r.db.ExecContext(ctx, query,
		s.SortOrder, s.SegmentType, s.Script, s.DurationSecs, s.SegmentID)
	if err != nil {
		return fmt.Errorf("failed to update segment: %w", err)
	}
	return requireAffected(res)
}

func (r *Repository) DeleteSegment(ctx context.Context, segmentID string) error {
	query := `DELETE FROM row_segments WHERE segment_id = ?`

	res, err := r.db.ExecContext(ctx, query, segmentID)
	if err != nil {
		return fmt.Errorf("failed to delete segment: %w", err)
	}
	return requireAffected(res)
}
