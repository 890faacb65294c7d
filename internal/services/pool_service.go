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

// PoolService manages pre-produced stories waiting for a bulletin.
type PoolService struct {
	repo   *database.Repository
	timing *TimingService
}

func NewPoolService(repo *database.Repository, timing *TimingService) *PoolService {
	return &PoolService{repo: repo, timing: timing}
}

type PoolStoryInput struct {
	Slug            string `json:"slug"`
	Title           string `json:"title"`
	EstDurationSecs int    `json:"est_duration_secs"`
}

func (s *PoolService) CreateStory(ctx context.Context, in PoolStoryInput) (*models.PoolStory, error) {
	if in.Slug == "" {
		return nil, fmt.Errorf("%w: slug is required", ErrValidation)
	}
	if in.EstDurationSecs < 0 {
		return nil, fmt.Errorf("%w: estimated duration must not be negative", ErrValidation)
	}
	if in.EstDurationSecs == 0 {
		in.EstDurationSecs = models.DefaultStoryDurationSecs
	}

	actor := ctxutil.ActorFromContext(ctx)
	story := &models.PoolStory{
		StoryID:         uuid.NewString(),
		Slug:            in.Slug,
		Title:           in.Title,
		EstDurationSecs: in.EstDurationSecs,
		Status:          models.PoolAvailable,
		CreatedBy:       actor.UserID,
	}

	if err := s.repo.CreatePoolStory(ctx, story); err != nil {
		return nil, err
	}
	if err := s.repo.InsertAudit(ctx, auditEntry(actor, "pool.create", "pool_story", story.StoryID, story.Slug)); err != nil {
		return nil, err
	}
	return s.repo.GetPoolStory(ctx, story.StoryID)
}

func (s *PoolService) ListStories(ctx context.Context, status models.PoolStoryStatus) ([]*models.PoolStory, error) {
	return s.repo.ListPoolStories(ctx, status)
}

type PoolStoryPatch struct {
	Slug            *string                 `json:"slug"`
	Title           *string                 `json:"title"`
	EstDurationSecs *int                    `json:"est_duration_secs"`
	Status          *models.PoolStoryStatus `json:"status"`
}

func (s *PoolService) UpdateStory(ctx context.Context, storyID string, patch PoolStoryPatch) (*models.PoolStory, error) {
	story, err := s.repo.GetPoolStory(ctx, storyID)
	if err != nil {
		return nil, err
	}

	if patch.Slug != nil {
		story.Slug = *patch.Slug
	}
	if patch.Title != nil {
		story.Title = *patch.Title
	}
	if patch.EstDurationSecs != nil {
		if *patch.EstDurationSecs < 0 {
			return nil, fmt.Errorf("%w: estimated duration must not be negative", ErrValidation)
		}
		story.EstDurationSecs = *patch.EstDurationSecs
	}
	if patch.Status != nil {
		story.Status = *patch.Status
	}

	if err := s.repo.UpdatePoolStory(ctx, story); err != nil {
		return nil, err
	}

	actor := ctxutil.ActorFromContext(ctx)
	if err := s.repo.InsertAudit(ctx, auditEntry(actor, "pool.update", "pool_story", storyID, story.Slug)); err != nil {
		return nil, err
	}
	return s.repo.GetPoolStory(ctx, storyID)
}

// Assign puts an available pool story on air: it creates a story row in the
// bulletin, links the story to it and recalculates. The story is locked for
// the duration so two producers cannot assign it twice.
func (s *PoolService) Assign(ctx context.Context, storyID, bulletinID string, position *int) (*models.RundownRow, *timing.Result, error) {
	actor := ctxutil.ActorFromContext(ctx)

	var row *models.RundownRow
	var result *timing.Result
	err := s.repo.InTx(ctx, func(tx *sql.Tx) error {
		story, err := s.repo.GetPoolStoryForUpdateTx(ctx, tx, storyID)
		if err != nil {
			return err
		}
		if story.Status != models.PoolAvailable {
			return ErrStoryUnavailable
		}

		b, err := s.repo.GetBulletinForUpdateTx(ctx, tx, bulletinID)
		if err != nil {
			return err
		}
		if err := ensureEditable(b, actor); err != nil {
			return err
		}

		row = &models.RundownRow{
			RowID:           uuid.NewString(),
			BulletinID:      bulletinID,
			RowType:         models.RowStory,
			Slug:            story.Slug,
			EstDurationSecs: story.EstDurationSecs,
		}
		if err := insertRowAt(ctx, s.repo, tx, row, position); err != nil {
			return err
		}

		if err := s.repo.MarkPoolStoryAssignedTx(ctx, tx, storyID, row.RowID); err != nil {
			return err
		}

		result, err = s.timing.RecalculateTx(ctx, tx, bulletinID)
		if err != nil {
			return err
		}
		return s.repo.InsertAuditTx(ctx, tx, auditEntry(actor, "pool.assign", "pool_story", storyID,
			fmt.Sprintf("to bulletin %s", bulletinID)))
	})
	if err != nil {
		return nil, nil, err
	}
	return row, result, nil
}
