package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/newsroomhq/rundown/internal/ctxutil"
	"github.com/newsroomhq/rundown/internal/database"
	"github.com/newsroomhq/rundown/internal/models"
	"github.com/newsroomhq/rundown/internal/timing"
)

// TemplateService generates the standard bulletin shape: lettered blocks A-D
// of stories separated by commercial breaks and teases, bookended by the
// open/welcome and the Z-block close.
type TemplateService struct {
	repo   *database.Repository
	timing *TimingService
}

func NewTemplateService(repo *database.Repository, timing *TimingService) *TemplateService {
	return &TemplateService{repo: repo, timing: timing}
}

type templateRow struct {
	rowType models.RowType
	slug    string
	block   string
	estSecs int
}

var standardRundown = []templateRow{
	{models.RowOpen, "SHOW OPEN", "A", 20},
	{models.RowWelcome, "WELCOME", "A", 30},
	{models.RowStory, "A1", "A", 90},
	{models.RowStory, "A2", "A", 90},
	{models.RowStory, "A3", "A", 90},
	{models.RowBreakLink, "TEASE B", "A", 15},
	{models.RowCommercial, "BREAK 1", "A", 180},
	{models.RowStory, "B1", "B", 90},
	{models.RowStory, "B2", "B", 90},
	{models.RowBreakLink, "TEASE C", "B", 15},
	{models.RowCommercial, "BREAK 2", "B", 180},
	{models.RowStory, "C1", "C", 90},
	{models.RowStory, "C2", "C", 90},
	{models.RowBreakLink, "TEASE D", "C", 15},
	{models.RowCommercial, "BREAK 3", "C", 180},
	{models.RowStory, "D1", "D", 90},
	{models.RowStory, "D2", "D", 90},
	{models.RowClose, "GOODNIGHT", "Z", 30},
}

// Generate appends the standard rundown to a bulletin and recalculates once
// at the end, so the stored timing satisfies the running-order invariant
// immediately after generation.
func (s *TemplateService) Generate(ctx context.Context, bulletinID string) ([]*models.RundownRow, *timing.Result, error) {
	actor := ctxutil.ActorFromContext(ctx)

	var created []*models.RundownRow
	var result *timing.Result
	err := s.repo.InTx(ctx, func(tx *sql.Tx) error {
		b, err := s.repo.GetBulletinForUpdateTx(ctx, tx, bulletinID)
		if err != nil {
			return err
		}
		if err := ensureEditable(b, actor); err != nil {
			return err
		}

		maxOrder, err := s.repo.MaxSortOrderTx(ctx, tx, bulletinID)
		if err != nil {
			return err
		}

		for i, tpl := range standardRundown {
			row := &models.RundownRow{
				RowID:           uuid.NewString(),
				BulletinID:      bulletinID,
				SortOrder:       maxOrder + i + 1,
				RowType:         tpl.rowType,
				Slug:            tpl.slug,
				Block:           tpl.block,
				EstDurationSecs: tpl.estSecs,
			}
			if err := s.repo.InsertRowTx(ctx, tx, row); err != nil {
				return err
			}
			created = append(created, row)
		}

		result, err = s.timing.RecalculateTx(ctx, tx, bulletinID)
		if err != nil {
			return err
		}
		return s.repo.InsertAuditTx(ctx, tx, auditEntry(actor, "bulletin.template", "bulletin", bulletinID,
			fmt.Sprintf("%d rows", len(standardRundown))))
	})
	if err != nil {
		return nil, nil, err
	}
	return created, result, nil
}
