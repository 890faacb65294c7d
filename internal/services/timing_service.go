package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/newsroomhq/rundown/internal/database"
	"github.com/newsroomhq/rundown/internal/timing"
)

// TimingService owns the single recalculation path for rundown timing. Every
// row mutation runs RecalculateTx before committing, so the stored front and
// cume times never lag the row set.
type TimingService struct {
	repo *database.Repository
}

func NewTimingService(repo *database.Repository) *TimingService {
	return &TimingService{repo: repo}
}

// Recalculate recomputes and persists all timing for one bulletin in its own
// transaction. Safe to call redundantly: with no intervening mutation the
// second run writes identical values.
func (s *TimingService) Recalculate(ctx context.Context, bulletinID string) (*timing.Result, error) {
	var result *timing.Result
	err := s.repo.InTx(ctx, func(tx *sql.Tx) error {
		var err error
		result, err = s.RecalculateTx(ctx, tx, bulletinID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecalculateTx runs the recalculation inside an existing transaction. The
// FOR UPDATE read of the bulletin serializes concurrent recalculations of the
// same bulletin, so each one sees the committed row state of the previous.
// Persistence failures propagate; a partial timing write must surface rather
// than leave the grid showing stale times.
func (s *TimingService) RecalculateTx(ctx context.Context, tx *sql.Tx, bulletinID string) (*timing.Result, error) {
	b, err := s.repo.GetBulletinForUpdateTx(ctx, tx, bulletinID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.GetRowsTx(ctx, tx, bulletinID)
	if err != nil {
		return nil, err
	}

	result := timing.Compute(b, rows)

	for _, rt := range result.Rows {
		if err := s.repo.UpdateRowTimingTx(ctx, tx, rt.RowID, rt.FrontTimeSecs, rt.CumeTimeSecs); err != nil {
			return nil, fmt.Errorf("failed to persist timing for row %s: %w", rt.RowID, err)
		}
	}

	if err := s.repo.UpdateBulletinTotalsTx(ctx, tx, b.BulletinID,
		result.TotalEstDurationSecs,
		result.TotalActualDurationSecs,
		result.TotalCommercialSecs,
		result.TimingVarianceSecs,
	); err != nil {
		return nil, fmt.Errorf("failed to persist bulletin totals: %w", err)
	}

	return result, nil
}
