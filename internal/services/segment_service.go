package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/newsroomhq/rundown/internal/ctxutil"
	"github.com/newsroomhq/rundown/internal/database"
	"github.com/newsroomhq/rundown/internal/models"
)

// SegmentService manages the sub-units of a row. Segment durations are
// informational; timing stays row-level, so none of these operations
// recalculate.
type SegmentService struct {
	repo *database.Repository
}

func NewSegmentService(repo *database.Repository) *SegmentService {
	return &SegmentService{repo: repo}
}

type SegmentInput struct {
	SortOrder    int                `json:"sort_order"`
	SegmentType  models.SegmentType `json:"segment_type"`
	Script       string             `json:"script"`
	DurationSecs int                `json:"duration_secs"`
}

func (s *SegmentService) List(ctx context.Context, bulletinID, rowID string) ([]*models.RowSegment, error) {
	if _, err := s.rowInBulletin(ctx, bulletinID, rowID); err != nil {
		return nil, err
	}
	return s.repo.GetSegments(ctx, rowID)
}

func (s *SegmentService) Add(ctx context.Context, bulletinID, rowID string, in SegmentInput) (*models.RowSegment, error) {
	if in.SegmentType == "" {
		in.SegmentType = models.SegmentVO
	}
	if !validSegmentType(in.SegmentType) {
		return nil, fmt.Errorf("%w: unknown segment type %q", ErrValidation, in.SegmentType)
	}
	if in.DurationSecs < 0 {
		return nil, fmt.Errorf("%w: duration must not be negative", ErrValidation)
	}

	actor := ctxutil.ActorFromContext(ctx)
	if err := s.editableRow(ctx, bulletinID, rowID, actor); err != nil {
		return nil, err
	}

	if in.SortOrder < 1 {
		existing, err := s.repo.GetSegments(ctx, rowID)
		if err != nil {
			return nil, err
		}
		in.SortOrder = len(existing) + 1
	}

	segment := &models.RowSegment{
		SegmentID:    uuid.NewString(),
		RowID:        rowID,
		SortOrder:    in.SortOrder,
		SegmentType:  in.SegmentType,
		Script:       in.Script,
		DurationSecs: in.DurationSecs,
	}
	if err := s.repo.CreateSegment(ctx, segment); err != nil {
		return nil, err
	}
	if err := s.repo.InsertAudit(ctx, auditEntry(actor, "segment.create", "segment", segment.SegmentID, string(in.SegmentType))); err != nil {
		return nil, err
	}
	return s.repo.GetSegmentByID(ctx, segment.SegmentID)
}

type SegmentPatch struct {
	SortOrder    *int                `json:"sort_order"`
	SegmentType  *models.SegmentType `json:"segment_type"`
	Script       *string             `json:"script"`
	DurationSecs *int                `json:"duration_secs"`
}

func (s *SegmentService) Update(ctx context.Context, bulletinID, rowID, segmentID string, patch SegmentPatch) (*models.RowSegment, error) {
	if patch.SegmentType != nil && !validSegmentType(*patch.SegmentType) {
		return nil, fmt.Errorf("%w: unknown segment type %q", ErrValidation, *patch.SegmentType)
	}

	actor := ctxutil.ActorFromContext(ctx)
	if err := s.editableRow(ctx, bulletinID, rowID, actor); err != nil {
		return nil, err
	}

	segment, err := s.repo.GetSegmentByID(ctx, segmentID)
	if err != nil {
		return nil, err
	}
	if segment.RowID != rowID {
		return nil, database.ErrNotFound
	}

	if patch.SortOrder != nil {
		segment.SortOrder = *patch.SortOrder
	}
	if patch.SegmentType != nil {
		segment.SegmentType = *patch.SegmentType
	}
	if patch.Script != nil {
		segment.Script = *patch.Script
	}
	if patch.DurationSecs != nil {
		if *patch.DurationSecs < 0 {
			return nil, fmt.Errorf("%w: duration must not be negative", ErrValidation)
		}
		segment.DurationSecs = *patch.DurationSecs
	}

	if err := s.repo.UpdateSegment(ctx, segment); err != nil {
		return nil, err
	}
	if err := s.repo.InsertAudit(ctx, auditEntry(actor, "segment.update", "segment", segmentID, "")); err != nil {
		return nil, err
	}
	return s.repo.GetSegmentByID(ctx, segmentID)
}

func (s *SegmentService) Delete(ctx context.Context, bulletinID, rowID, segmentID string) error {
	actor := ctxutil.ActorFromContext(ctx)
	if err := s.editableRow(ctx, bulletinID, rowID, actor); err != nil {
		return err
	}

	segment, err := s.repo.GetSegmentByID(ctx, segmentID)
	if err != nil {
		return err
	}
	if segment.RowID != rowID {
		return database.ErrNotFound
	}

	if err := s.repo.DeleteSegment(ctx, segmentID); err != nil {
		return err
	}
	return s.repo.InsertAudit(ctx, auditEntry(actor, "segment.delete", "segment", segmentID, ""))
}

func (s *SegmentService) rowInBulletin(ctx context.Context, bulletinID, rowID string) (*models.RundownRow, error) {
	row, err := s.repo.GetRowByID(ctx, rowID)
	if err != nil {
		return nil, err
	}
	if row.BulletinID != bulletinID || row.DeletedAt != nil {
		return nil, database.ErrNotFound
	}
	return row, nil
}

func (s *SegmentService) editableRow(ctx context.Context, bulletinID, rowID string, actor ctxutil.Actor) error {
	b, err := s.repo.GetBulletinByID(ctx, bulletinID)
	if err != nil {
		return err
	}
	if err := ensureEditable(b, actor); err != nil {
		return err
	}
	_, err = s.rowInBulletin(ctx, bulletinID, rowID)
	return err
}
