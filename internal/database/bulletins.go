package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/newsroomhq/rundown/internal/models"
)

const bulletinColumns = `bulletin_id, title, air_date, start_time, planned_duration_secs,
	status, total_est_duration_secs, total_actual_duration_secs, total_commercial_secs,
	timing_variance_secs, is_locked, locked_by, created_by, deleted_at, created_at, updated_at`

func (r *Repository) CreateBulletin(ctx context.Context, b *models.Bulletin) error {
	query := `INSERT INTO bulletins
		(bulletin_id, title, air_date, start_time, planned_duration_secs, status, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		b.BulletinID,
		b.Title,
		b.AirDate,
		b.StartTime,
		b.PlannedDurationSecs,
		b.Status,
		b.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create bulletin: %w", err)
	}
	return nil
}

func (r *Repository) GetBulletinByID(ctx context.Context, id string) (*models.Bulletin, error) {
	query := `SELECT ` + bulletinColumns + ` FROM bulletins
		WHERE bulletin_id = ? AND deleted_at IS NULL`
	return scanBulletin(r.db.QueryRowContext(ctx, query, id))
}

// GetBulletinForUpdateTx reads the bulletin with a row lock, serializing
// concurrent recalculations of the same bulletin on this select.
func (r *Repository) GetBulletinForUpdateTx(ctx context.Context, tx *sql.Tx, id string) (*models.Bulletin, error) {
	query := `SELECT ` + bulletinColumns + ` FROM bulletins
		WHERE bulletin_id = ? AND deleted_at IS NULL FOR UPDATE`
	return scanBulletin(tx.QueryRowContext(ctx, query, id))
}

func scanBulletin(row *sql.Row) (*models.Bulletin, error) {
	var b models.Bulletin
	err := row.Scan(
		&b.BulletinID,
		&b.Title,
		&b.AirDate,
		&b.StartTime,
		&b.PlannedDurationSecs,
		&b.Status,
		&b.TotalEstDurationSecs,
		&b.TotalActualDurationSecs,
		&b.TotalCommercialSecs,
		&b.TimingVarianceSecs,
		&b.IsLocked,
		&b.LockedBy,
		&b.CreatedBy,
		&b.DeletedAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan bulletin: %w", err)
	}
	return &b, nil
}

func (r *Repository) ListBulletins(ctx context.Context, airDate string) ([]*models.Bulletin, error) {
	query := `SELECT ` + bulletinColumns + ` FROM bulletins WHERE deleted_at IS NULL`
	args := []any{}
	if airDate != "" {
		query += ` AND air_date = ?`
		args = append(args, airDate)
	}
	query += ` ORDER BY air_date, start_time`

	return r.queryBulletins(ctx, query, args...)
}

// ListDeletedBulletins returns soft-deleted bulletins still inside the
// retention window.
func (r *Repository) ListDeletedBulletins(ctx context.Context, since time.Time) ([]*models.Bulletin, error) {
	query := `SELECT ` + bulletinColumns + ` FROM bulletins
		WHERE deleted_at IS NOT NULL AND deleted_at >= ?
		ORDER BY deleted_at DESC`
	return r.queryBulletins(ctx, query, since)
}

func (r *Repository) queryBulletins(ctx context.Context, query string, args ...any) ([]*models.Bulletin, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bulletins: %w", err)
	}
	defer rows.Close()

	var bulletins []*models.Bulletin
	for rows.Next() {
		var b models.Bulletin
		if err := rows.Scan(
			&b.BulletinID,
			&b.Title,
			&b.AirDate,
			&b.StartTime,
			&b.PlannedDurationSecs,
			&b.Status,
			&b.TotalEstDurationSecs,
			&b.TotalActualDurationSecs,
			&b.TotalCommercialSecs,
			&b.TimingVarianceSecs,
			&b.IsLocked,
			&b.LockedBy,
			&b.CreatedBy,
			&b.DeletedAt,
			&b.CreatedAt,
			&b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bulletin: %w", err)
		}
		bulletins = append(bulletins, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return bulletins, nil
}

// UpdateBulletinTx writes bulletin metadata. Runs in the same transaction as
// the recalculation the metadata change triggers.
func (r *Repository) UpdateBulletinTx(ctx context.Context, tx *sql.Tx, b *models.Bulletin) error {
	query := `UPDATE bulletins
		SET title = ?, air_date = ?, start_time = ?, planned_duration_secs = ?, status = ?
		WHERE bulletin_id = ? AND deleted_at IS NULL`

	res, err := tx.ExecContext(ctx, query,
		b.Title, b.AirDate, b.StartTime, b.PlannedDurationSecs, b.Status, b.BulletinID)
	if err != nil {
		return fmt.Errorf("failed to update bulletin: %w", err)
	}
	return requireAffected(res)
}

// UpdateBulletinTotalsTx writes the four aggregate fields computed by a
// recalculation. totalActual nil means no row has been timed yet and is
// stored as NULL, not zero.
func (r *Repository) UpdateBulletinTotalsTx(ctx context.Context, tx *sql.Tx, bulletinID string,
	totalEst int, totalActual *int, totalCommercial, variance int) error {

	query := `UPDATE bulletins
		SET total_est_duration_secs = ?, total_actual_duration_secs = ?,
			total_commercial_secs = ?, timing_variance_secs = ?
		WHERE bulletin_id = ?`

	res, err := tx.ExecContext(ctx, query, totalEst, totalActual, totalCommercial, variance, bulletinID)
	if err != nil {
		return fmt.Errorf("failed to update bulletin totals: %w", err)
	}
	return requireAffected(res)
}

// SetBulletinLockTx writes the editorial lock state. Callers hold the
// bulletin's row lock, so concurrent lock attempts cannot both pass the
// holder check and overwrite each other.
func (r *Repository) SetBulletinLockTx(ctx context.Context, tx *sql.Tx, id string, locked bool, lockedBy *string) error {
	query := `UPDATE bulletins SET is_locked = ?, locked_by = ?
		WHERE bulletin_id = ? AND deleted_at IS NULL`

	res, err := tx.ExecContext(ctx, query, locked, lockedBy, id)
	if err != nil {
		return fmt.Errorf("failed to set bulletin lock: %w", err)
	}
	return requireAffected(res)
}

func (r *Repository) SoftDeleteBulletin(ctx context.Context, id string) error {
	query := `UPDATE bulletins SET deleted_at = NOW() WHERE bulletin_id = ? AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete bulletin: %w", err)
	}
	return requireAffected(res)
}

// RestoreBulletin revives a soft-deleted bulletin, but only while it is still
// inside the retention window, matching what the trash listing shows.
func (r *Repository) RestoreBulletin(ctx context.Context, id string, deletedAfter time.Time) error {
	query := `UPDATE bulletins SET deleted_at = NULL
		WHERE bulletin_id = ? AND deleted_at IS NOT NULL AND deleted_at >= ?`

	res, err := r.db.ExecContext(ctx, query, id, deletedAfter)
	if err != nil {
		return fmt.Errorf("failed to restore bulletin: %w", err)
	}
	return requireAffected(res)
}

// PurgeBulletins hard-deletes bulletins whose retention window has expired.
// Rows and segments go with them via FK cascade.
func (r *Repository) PurgeBulletins(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM bulletins WHERE deleted_at IS NOT NULL AND deleted_at < ?`

	res, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge bulletins: %w", err)
	}
	return res.RowsAffected()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
