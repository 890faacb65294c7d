package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/newsroomhq/rundown/internal/models"
)

const rowColumns = `row_id, bulletin_id, sort_order, row_type, slug, block,
	est_duration_secs, actual_duration_secs, front_time_secs, cume_time_secs,
	deleted_at, created_at, updated_at`

// resequenceOffset parks live rows on temporarily high sort orders while they
// are renumbered, keeping the (bulletin_id, sort_order) unique key satisfied
// mid-update.
const resequenceOffset = 100000

// GetRows returns the live rows of a bulletin ordered by sort_order.
func (r *Repository) GetRows(ctx context.Context, bulletinID string) ([]*models.RundownRow, error) {
	return queryRows(ctx, r.db, bulletinID)
}

// GetRowsTx is GetRows inside a transaction holding the bulletin lock.
func (r *Repository) GetRowsTx(ctx context.Context, tx *sql.Tx, bulletinID string) ([]*models.RundownRow, error) {
	return queryRows(ctx, tx, bulletinID)
}

func queryRows(ctx context.Context, q querier, bulletinID string) ([]*models.RundownRow, error) {
	query := `SELECT ` + rowColumns + ` FROM rundown_rows
		WHERE bulletin_id = ? AND deleted_at IS NULL
		ORDER BY sort_order`

	rows, err := q.QueryContext(ctx, query, bulletinID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rundown rows: %w", err)
	}
	defer rows.Close()

	var out []*models.RundownRow
	for rows.Next() {
		row, err := scanRundownRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRundownRow(s rowScanner) (*models.RundownRow, error) {
	var row models.RundownRow
	err := s.Scan(
		&row.RowID,
		&row.BulletinID,
		&row.SortOrder,
		&row.RowType,
		&row.Slug,
		&row.Block,
		&row.EstDurationSecs,
		&row.ActualDurationSecs,
		&row.FrontTimeSecs,
		&row.CumeTimeSecs,
		&row.DeletedAt,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan rundown row: %w", err)
	}
	return &row, nil
}

func (r *Repository) GetRowByID(ctx context.Context, rowID string) (*models.RundownRow, error) {
	return getRowByID(ctx, r.db, rowID)
}

func (r *Repository) GetRowByIDTx(ctx context.Context, tx *sql.Tx, rowID string) (*models.RundownRow, error) {
	return getRowByID(ctx, tx, rowID)
}

func getRowByID(ctx context.Context, q querier, rowID string) (*models.RundownRow, error) {
	query := `SELECT ` + rowColumns + ` FROM rundown_rows WHERE row_id = ?`
	return scanRundownRow(q.QueryRowContext(ctx, query, rowID))
}

func (r *Repository) InsertRowTx(ctx context.Context, tx *sql.Tx, row *models.RundownRow) error {
	query := `INSERT INTO rundown_rows
		(row_id, bulletin_id, sort_order, row_type, slug, block, est_duration_secs, actual_duration_secs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := tx.ExecContext(ctx, query,
		row.RowID,
		row.BulletinID,
		row.SortOrder,
		row.RowType,
		row.Slug,
		row.Block,
		row.EstDurationSecs,
		row.ActualDurationSecs,
	)
	if err != nil {
		return fmt.Errorf("failed to insert rundown row: %w", err)
	}
	return nil
}

func (r *Repository) UpdateRowTx(ctx context.Context, tx *sql.Tx, row *models.RundownRow) error {
	query := `UPDATE rundown_rows
		SET row_type = ?, slug = ?, block = ?, est_duration_secs = ?
		WHERE row_id = ? AND deleted_at IS NULL`

	res, err := tx.ExecContext(ctx, query, row.RowType, row.Slug, row.Block, row.EstDurationSecs, row.RowID)
	if err != nil {
		return fmt.Errorf("failed to update rundown row: %w", err)
	}
	return requireAffected(res)
}

// SetActualDurationTx records (or clears, with nil) a row's timed duration.
func (r *Repository) SetActualDurationTx(ctx context.Context, tx *sql.Tx, rowID string, secs *int) error {
	query := `UPDATE rundown_rows SET actual_duration_secs = ? WHERE row_id = ? AND deleted_at IS NULL`

	res, err := tx.ExecContext(ctx, query, secs, rowID)
	if err != nil {
		return fmt.Errorf("failed to set actual duration: %w", err)
	}
	return requireAffected(res)
}

// UpdateRowTimingTx writes the computed front and cume times for one row.
func (r *Repository) UpdateRowTimingTx(ctx context.Context, tx *sql.Tx, rowID string, frontSecs, cumeSecs int) error {
	query := `UPDATE rundown_rows SET front_time_secs = ?, cume_time_secs = ? WHERE row_id = ?`

	res, err := tx.ExecContext(ctx, query, frontSecs, cumeSecs, rowID)
	if err != nil {
		return fmt.Errorf("failed to update row timing: %w", err)
	}
	return requireAffected(res)
}

// ShiftRowsDownTx opens a gap at fromOrder by pushing every live row at or
// after it one position down. Highest orders move first so the unique key
// never collides mid-shift.
func (r *Repository) ShiftRowsDownTx(ctx context.Context, tx *sql.Tx, bulletinID string, fromOrder int) error {
	query := `UPDATE rundown_rows SET sort_order = sort_order + 1
		WHERE bulletin_id = ? AND deleted_at IS NULL AND sort_order >= ?
		ORDER BY sort_order DESC`

	if _, err := tx.ExecContext(ctx, query, bulletinID, fromOrder); err != nil {
		return fmt.Errorf("failed to shift rundown rows: %w", err)
	}
	return nil
}

// MaxSortOrderTx returns the highest live sort order, 0 for an empty rundown.
func (r *Repository) MaxSortOrderTx(ctx context.Context, tx *sql.Tx, bulletinID string) (int, error) {
	query := `SELECT COALESCE(MAX(sort_order), 0) FROM rundown_rows
		WHERE bulletin_id = ? AND deleted_at IS NULL`

	var maxOrder int
	if err := tx.QueryRowContext(ctx, query, bulletinID).Scan(&maxOrder); err != nil {
		return 0, fmt.Errorf("failed to read max sort order: %w", err)
	}
	return maxOrder, nil
}

// NextTombstoneOrderTx returns a unique negative sort order for a row being
// soft-deleted, below every order already used in the bulletin.
func (r *Repository) NextTombstoneOrderTx(ctx context.Context, tx *sql.Tx, bulletinID string) (int, error) {
	query := `SELECT COALESCE(MIN(sort_order), 0) FROM rundown_rows WHERE bulletin_id = ?`

	var minOrder int
	if err := tx.QueryRowContext(ctx, query, bulletinID).Scan(&minOrder); err != nil {
		return 0, fmt.Errorf("failed to read min sort order: %w", err)
	}
	if minOrder >= 0 {
		return -1, nil
	}
	return minOrder - 1, nil
}

// SoftDeleteRowTx tombstones a row: stamps deleted_at and parks it on a
// negative sort order so live rows can be renumbered contiguously.
func (r *Repository) SoftDeleteRowTx(ctx context.Context, tx *sql.Tx, rowID string, tombstoneOrder int) error {
	query := `UPDATE rundown_rows SET deleted_at = NOW(), sort_order = ?
		WHERE row_id = ? AND deleted_at IS NULL`

	res, err := tx.ExecContext(ctx, query, tombstoneOrder, rowID)
	if err != nil {
		return fmt.Errorf("failed to delete rundown row: %w", err)
	}
	return requireAffected(res)
}

// RestoreRowTx revives a soft-deleted row at the given sort order. Rows past
// the retention window cannot come back even if the purge has not caught them
// yet.
func (r *Repository) RestoreRowTx(ctx context.Context, tx *sql.Tx, rowID string, sortOrder int, deletedAfter time.Time) error {
	query := `UPDATE rundown_rows SET deleted_at = NULL, sort_order = ?
		WHERE row_id = ? AND deleted_at IS NOT NULL AND deleted_at >= ?`

	res, err := tx.ExecContext(ctx, query, sortOrder, rowID, deletedAfter)
	if err != nil {
		return fmt.Errorf("failed to restore rundown row: %w", err)
	}
	return requireAffected(res)
}

// ResequenceRowsTx rewrites the live rows of a bulletin to sort orders
// 1..n following orderedRowIDs. Two passes: park everything high, then
// assign finals.
func (r *Repository) ResequenceRowsTx(ctx context.Context, tx *sql.Tx, bulletinID string, orderedRowIDs []string) error {
	park := `UPDATE rundown_rows SET sort_order = sort_order + ?
		WHERE bulletin_id = ? AND deleted_at IS NULL AND sort_order > 0
		ORDER BY sort_order DESC`
	if _, err := tx.ExecContext(ctx, park, resequenceOffset, bulletinID); err != nil {
		return fmt.Errorf("failed to park rundown rows: %w", err)
	}

	assign := `UPDATE rundown_rows SET sort_order = ? WHERE row_id = ? AND bulletin_id = ?`
	for i, rowID := range orderedRowIDs {
		if _, err := tx.ExecContext(ctx, assign, i+1, rowID, bulletinID); err != nil {
			return fmt.Errorf("failed to resequence rundown row %s: %w", rowID, err)
		}
	}
	return nil
}

// ListDeletedRows returns soft-deleted rows still inside the retention
// window, for the trash view.
func (r *Repository) ListDeletedRows(ctx context.Context, since time.Time) ([]*models.RundownRow, error) {
	query := `SELECT ` + rowColumns + ` FROM rundown_rows
		WHERE deleted_at IS NOT NULL AND deleted_at >= ?
		ORDER BY deleted_at DESC`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query deleted rows: %w", err)
	}
	defer rows.Close()

	var out []*models.RundownRow
	for rows.Next() {
		row, err := scanRundownRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

// PurgeRows hard-deletes rows whose retention window has expired.
func (r *Repository) PurgeRows(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM rundown_rows WHERE deleted_at IS NOT NULL AND deleted_at < ?`

	res, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge rows: %w", err)
	}
	return res.RowsAffected()
}
