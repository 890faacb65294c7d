package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/newsroomhq/rundown/internal/models"
)

// InsertAudit appends one audit entry outside any transaction.
func (r *Repository) InsertAudit(ctx context.Context, e *models.AuditEntry) error {
	return insertAudit(ctx, r.db, e)
}

// InsertAuditTx appends one audit entry in the same transaction as the
// mutation it records.
func (r *Repository) InsertAuditTx(ctx context.Context, tx *sql.Tx, e *models.AuditEntry) error {
	return insertAudit(ctx, tx, e)
}

func insertAudit(ctx context.Context, q querier, e *models.AuditEntry) error {
	query := `INSERT INTO audit_log
		(entry_id, actor_id, actor_role, action, entity_type, entity_id, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := q.ExecContext(ctx, query,
		e.EntryID, e.ActorID, e.ActorRole, e.Action, e.EntityType, e.EntityID, e.Detail)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// ListAudit returns audit entries newest first, optionally filtered to one
// entity id (e.g. a bulletin).
func (r *Repository) ListAudit(ctx context.Context, entityID string, limit int) ([]*models.AuditEntry, error) {
	query := `SELECT entry_id, actor_id, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_log`
	args := []any{}
	if entityID != "" {
		query += ` WHERE entity_id = ?`
		args = append(args, entityID)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(
			&e.EntryID,
			&e.ActorID,
			&e.ActorRole,
			&e.Action,
			&e.EntityType,
			&e.EntityID,
			&e.Detail,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}
