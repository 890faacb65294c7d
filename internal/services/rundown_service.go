package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/newsroomhq/rundown/internal/ctxutil"
	"github.com/newsroomhq/rundown/internal/database"
	"github.com/newsroomhq/rundown/internal/models"
	"github.com/newsroomhq/rundown/internal/timing"
)

// RundownService mutates a bulletin's running order. Every mutation locks the
// bulletin, applies the change, recalculates timing and writes its audit
// entry inside one transaction.
type RundownService struct {
	repo      *database.Repository
	timing    *TimingService
	retention time.Duration
}

func NewRundownService(repo *database.Repository, timing *TimingService, retention time.Duration) *RundownService {
	return &RundownService{repo: repo, timing: timing, retention: retention}
}

type RowInput struct {
	RowType         models.RowType `json:"row_type"`
	Slug            string         `json:"slug"`
	Block           string         `json:"block"`
	EstDurationSecs *int           `json:"est_duration_secs"`
	Position        *int           `json:"position"` // 1-based; nil appends
}

// AddRow inserts a row, shifting later rows down when a position is given.
func (s *RundownService) AddRow(ctx context.Context, bulletinID string, in RowInput) (*models.RundownRow, *timing.Result, error) {
	if in.RowType == "" {
		in.RowType = models.RowStory
	}
	if !validRowType(in.RowType) {
		return nil, nil, fmt.Errorf("%w: unknown row type %q", ErrValidation, in.RowType)
	}
	if in.EstDurationSecs != nil && *in.EstDurationSecs < 0 {
		return nil, nil, fmt.Errorf("%w: estimated duration must not be negative", ErrValidation)
	}

	actor := ctxutil.ActorFromContext(ctx)
	row := &models.RundownRow{
		RowID:      uuid.NewString(),
		BulletinID: bulletinID,
		RowType:    in.RowType,
		Slug:       in.Slug,
		Block:      in.Block,
	}
	switch {
	case in.EstDurationSecs != nil:
		row.EstDurationSecs = *in.EstDurationSecs
	case in.RowType == models.RowStory:
		row.EstDurationSecs = models.DefaultStoryDurationSecs
	}

	var result *timing.Result
	err := s.repo.InTx(ctx, func(tx *sql.Tx) error {
		b, err := s.repo.GetBulletinForUpdateTx(ctx, tx, bulletinID)
		if err != nil {
			return err
		}
		if err := ensureEditable(b, actor); err != nil {
			return err
		}

		if err := insertRowAt(ctx, s.repo, tx, row, in.Position); err != nil {
			return err
		}

		result, err = s.timing.RecalculateTx(ctx, tx, bulletinID)
		if err != nil {
			return err
		}
		return s.repo.InsertAuditTx(ctx, tx, auditEntry(actor, "row.create", "row", row.RowID, row.Slug))
	})
	if err != nil {
		return nil, nil, err
	}
	return row, result, nil
}

// insertRowAt places a new row at position (1-based, appended when nil or
// past the end), opening a sort-order gap first. Callers hold the bulletin
// lock.
func insertRowAt(ctx context.Context, repo *database.Repository, tx *sql.Tx, row *models.RundownRow, position *int) error {
	maxOrder, err := repo.MaxSortOrderTx(ctx, tx, row.BulletinID)
	if err != nil {
		return err
	}

	order := maxOrder + 1
	if position != nil && *position >= 1 && *position <= maxOrder {
		order = *position
		if err := repo.ShiftRowsDownTx(ctx, tx, row.BulletinID, order); err != nil {
			return err
		}
	}

	row.SortOrder = order
	return repo.InsertRowTx(ctx, tx, row)
}

type RowPatch struct {
	RowType         *models.RowType `json:"row_type"`
	Slug            *string         `json:"slug"`
	Block           *string         `json:"block"`
	EstDurationSecs *int            `json:"est_duration_secs"`
}

// UpdateRow edits a row and recalculates; a type or duration change moves
// everything downstream of it.
func (s *RundownService) UpdateRow(ctx context.Context, bulletinID, rowID string, patch RowPatch) (*models.RundownRow, *timing.Result, error) {
	if patch.RowType != nil && !validRowType(*patch.RowType) {
		return nil, nil, fmt.Errorf("%w: unknown row type %q", ErrValidation, *patch.RowType)
	}
	if patch.EstDurationSecs != nil && *patch.EstDurationSecs < 0 {
		return nil, nil, fmt.Errorf("%w: estimated duration must not be negative", ErrValidation)
	}

	actor := ctxutil.ActorFromContext(ctx)

	var row *models.RundownRow
	var result *timing.Result
	err := s.repo.InTx(ctx, func(tx *sql.Tx) error {
		b, err := s.repo.GetBulletinForUpdateTx(ctx, tx, bulletinID)
		if err != nil {
			return err
		}
		if err := ensureEditable(b, actor); err != nil {
			return err
		}

		row, err = s.liveRowInBulletin(ctx, tx, bulletinID, rowID)
		if err != nil {
			return err
		}

		if patch.RowType != nil {
			row.RowType = *patch.RowType
		}
		if patch.Slug != nil {
			row.Slug = *patch.Slug
		}
		if patch.Block != nil {
			row.Block = *patch.Block
		}
		if patch.EstDurationSecs != nil {
			row.EstDurationSecs = *patch.EstDurationSecs
		}

		if err := s.repo.UpdateRowTx(ctx, tx, row); err != nil {
			return err
		}

		result, err = s.timing.RecalculateTx(ctx, tx, bulletinID)
		if err != nil {
			return err
		}
		return s.repo.InsertAuditTx(ctx, tx, auditEntry(actor, "row.update", "row", rowID, row.Slug))
	})
	if err != nil {
		return nil, nil, err
	}
	return row, result, nil
}

// SetActualDuration records a row's timed duration, or clears it with nil.
// Once set, the actual overrides the estimate for all downstream timing.
func (s *RundownService) SetActualDuration(ctx context.Context, bulletinID, rowID string, secs *int) (*timing.Result, error) {
	if secs != nil && *secs < 0 {
		return nil, fmt.Errorf("%w: actual duration must not be negative", ErrValidation)
	}

	actor := ctxutil.ActorFromContext(ctx)

	var result *timing.Result
	err := s.repo.InTx(ctx, func(tx *sql.Tx) error {
		b, err := s.repo.GetBulletinForUpdateTx(ctx, tx, bulletinID)
		if err != nil {
			return err
		}
		if err := ensureEditable(b, actor); err != nil {
			return err
		}

		if _, err := s.liveRowInBulletin(ctx, tx, bulletinID, rowID); err != nil {
			return err
		}

		if err := s.repo.SetActualDurationTx(ctx, tx, rowID, secs); err != nil {
			return err
		}

		result, err = s.timing.RecalculateTx(ctx, tx, bulletinID)
		if err != nil {
			return err
		}

		detail := "cleared"
		if secs != nil {
			detail = fmt.Sprintf("%ds", *secs)
		}
		return s.repo.InsertAuditTx(ctx, tx, auditEntry(actor, "row.actual", "row", rowID, detail))
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MoveRow places a row at a new 1-based position and renumbers the bulletin
// contiguously.
func (s *RundownService) MoveRow(ctx context.Context, bulletinID, rowID string, toPosition int) (*timing.Result, error) {
	if toPosition < 1 {
		return nil, fmt.Errorf("%w: position must be at least 1", ErrValidation)
	}

	actor := ctxutil.ActorFromContext(ctx)

	var result *timing.Result
	err := s.repo.InTx(ctx, func(tx *sql.Tx) error {
		b, err := s.repo.GetBulletinForUpdateTx(ctx, tx, bulletinID)
		if err != nil {
			return err
		}
		if err := ensureEditable(b, actor); err != nil {
			return err
		}

		rows, err := s.repo.GetRowsTx(ctx, tx, bulletinID)
		if err != nil {
			return err
		}

		from := -1
		for i, row := range rows {
			if row.RowID == rowID {
				from = i
				break
			}
		}
		if from == -1 {
			return database.ErrNotFound
		}

		to := toPosition - 1
		if to >= len(rows) {
			to = len(rows) - 1
		}

		ordered := make([]string, 0, len(rows))
		for i, row := range rows {
			if i != from {
				ordered = append(ordered, row.RowID)
			}
		}
		if to > len(ordered) {
			to = len(ordered)
		}
		ordered = append(ordered[:to], append([]string{rowID}, ordered[to:]...)...)

		if err := s.repo.ResequenceRowsTx(ctx, tx, bulletinID, ordered); err != nil {
			return err
		}

		result, err = s.timing.RecalculateTx(ctx, tx, bulletinID)
		if err != nil {
			return err
		}
		return s.repo.InsertAuditTx(ctx, tx, auditEntry(actor, "row.move", "row", rowID,
			fmt.Sprintf("to position %d", to+1)))
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteRow soft-deletes a row, closes the sort-order gap and recalculates.
// The row stays restorable for the retention window.
func (s *RundownService) DeleteRow(ctx context.Context, bulletinID, rowID string) (*timing.Result, error) {
	actor := ctxutil.ActorFromContext(ctx)

	var result *timing.Result
	err := s.repo.InTx(ctx, func(tx *sql.Tx) error {
		b, err := s.repo.GetBulletinForUpdateTx(ctx, tx, bulletinID)
		if err != nil {
			return err
		}
		if err := ensureEditable(b, actor); err != nil {
			return err
		}

		row, err := s.liveRowInBulletin(ctx, tx, bulletinID, rowID)
		if err != nil {
			return err
		}

		tombstone, err := s.repo.NextTombstoneOrderTx(ctx, tx, bulletinID)
		if err != nil {
			return err
		}
		if err := s.repo.SoftDeleteRowTx(ctx, tx, rowID, tombstone); err != nil {
			return err
		}

		remaining, err := s.repo.GetRowsTx(ctx, tx, bulletinID)
		if err != nil {
			return err
		}
		ordered := make([]string, 0, len(remaining))
		for _, r := range remaining {
			ordered = append(ordered, r.RowID)
		}
		if err := s.repo.ResequenceRowsTx(ctx, tx, bulletinID, ordered); err != nil {
			return err
		}

		result, err = s.timing.RecalculateTx(ctx, tx, bulletinID)
		if err != nil {
			return err
		}
		return s.repo.InsertAuditTx(ctx, tx, auditEntry(actor, "row.delete", "row", rowID, row.Slug))
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RestoreRow revives a soft-deleted row at the end of the rundown. Rows past
// the retention window stay deleted.
func (s *RundownService) RestoreRow(ctx context.Context, bulletinID, rowID string) (*timing.Result, error) {
	actor := ctxutil.ActorFromContext(ctx)
	deletedAfter := time.Now().Add(-s.retention)

	var result *timing.Result
	err := s.repo.InTx(ctx, func(tx *sql.Tx) error {
		b, err := s.repo.GetBulletinForUpdateTx(ctx, tx, bulletinID)
		if err != nil {
			return err
		}
		if err := ensureEditable(b, actor); err != nil {
			return err
		}

		row, err := s.repo.GetRowByIDTx(ctx, tx, rowID)
		if err != nil {
			return err
		}
		if row.BulletinID != bulletinID || row.DeletedAt == nil {
			return database.ErrNotFound
		}

		maxOrder, err := s.repo.MaxSortOrderTx(ctx, tx, bulletinID)
		if err != nil {
			return err
		}
		if err := s.repo.RestoreRowTx(ctx, tx, rowID, maxOrder+1, deletedAfter); err != nil {
			return err
		}

		result, err = s.timing.RecalculateTx(ctx, tx, bulletinID)
		if err != nil {
			return err
		}
		return s.repo.InsertAuditTx(ctx, tx, auditEntry(actor, "row.restore", "row", rowID, row.Slug))
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// liveRowInBulletin loads a row and checks it is live and belongs to the
// bulletin being edited.
func (s *RundownService) liveRowInBulletin(ctx context.Context, tx *sql.Tx, bulletinID, rowID string) (*models.RundownRow, error) {
	row, err := s.repo.GetRowByIDTx(ctx, tx, rowID)
	if err != nil {
		return nil, err
	}
	if row.BulletinID != bulletinID || row.DeletedAt != nil {
		return nil, database.ErrNotFound
	}
	return row, nil
}
