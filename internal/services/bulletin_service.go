package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/newsroomhq/rundown/internal/ctxutil"
	"github.com/newsroomhq/rundown/internal/database"
	"github.com/newsroomhq/rundown/internal/models"
	"github.com/newsroomhq/rundown/internal/timing"
)

type BulletinService struct {
	repo      *database.Repository
	timing    *TimingService
	retention time.Duration
}

func NewBulletinService(repo *database.Repository, timing *TimingService, retention time.Duration) *BulletinService {
	return &BulletinService{repo: repo, timing: timing, retention: retention}
}

type BulletinInput struct {
	Title               string `json:"title"`
	AirDate             string `json:"air_date"`
	StartTime           string `json:"start_time"`
	PlannedDurationSecs int    `json:"planned_duration_secs"`
}

func (s *BulletinService) Create(ctx context.Context, in BulletinInput) (*models.Bulletin, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !strings.Contains(in.StartTime, ":") {
		return nil, fmt.Errorf("%w: start time %q is not a clock time", ErrValidation, in.StartTime)
	}
	if in.PlannedDurationSecs < 0 {
		return nil, fmt.Errorf("%w: planned duration must not be negative", ErrValidation)
	}

	actor := ctxutil.ActorFromContext(ctx)
	b := &models.Bulletin{
		BulletinID:          uuid.NewString(),
		Title:               in.Title,
		AirDate:             in.AirDate,
		StartTime:           in.StartTime,
		PlannedDurationSecs: in.PlannedDurationSecs,
		Status:              models.BulletinDraft,
		CreatedBy:           actor.UserID,
	}

	if err := s.repo.CreateBulletin(ctx, b); err != nil {
		return nil, err
	}

	if err := s.repo.InsertAudit(ctx, auditEntry(actor, "bulletin.create", "bulletin", b.BulletinID, b.Title)); err != nil {
		return nil, err
	}
	return s.repo.GetBulletinByID(ctx, b.BulletinID)
}

// Get returns the bulletin with its live rows in running order.
func (s *BulletinService) Get(ctx context.Context, id string) (*models.Bulletin, []*models.RundownRow, error) {
	b, err := s.repo.GetBulletinByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.repo.GetRows(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return b, rows, nil
}

func (s *BulletinService) List(ctx context.Context, airDate string) ([]*models.Bulletin, error) {
	return s.repo.ListBulletins(ctx, airDate)
}

type BulletinPatch struct {
	Title               *string                `json:"title"`
	AirDate             *string                `json:"air_date"`
	StartTime           *string                `json:"start_time"`
	PlannedDurationSecs *int                   `json:"planned_duration_secs"`
	Status              *models.BulletinStatus `json:"status"`
}

// Update edits bulletin metadata and recalculates in the same transaction,
// since a new start time or planned duration moves every front time and the
// variance. A failed recalculation rolls the metadata change back too.
func (s *BulletinService) Update(ctx context.Context, id string, patch BulletinPatch) (*models.Bulletin, *timing.Result, error) {
	if patch.PlannedDurationSecs != nil && *patch.PlannedDurationSecs < 0 {
		return nil, nil, fmt.Errorf("%w: planned duration must not be negative", ErrValidation)
	}

	actor := ctxutil.ActorFromContext(ctx)

	var updated *models.Bulletin
	var result *timing.Result
	err := s.repo.InTx(ctx, func(tx *sql.Tx) error {
		b, err := s.repo.GetBulletinForUpdateTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := ensureEditable(b, actor); err != nil {
			return err
		}

		if patch.Title != nil {
			b.Title = *patch.Title
		}
		if patch.AirDate != nil {
			b.AirDate = *patch.AirDate
		}
		if patch.StartTime != nil {
			b.StartTime = *patch.StartTime
		}
		if patch.PlannedDurationSecs != nil {
			b.PlannedDurationSecs = *patch.PlannedDurationSecs
		}
		if patch.Status != nil {
			b.Status = *patch.Status
		}

		if err := s.repo.UpdateBulletinTx(ctx, tx, b); err != nil {
			return err
		}

		result, err = s.timing.RecalculateTx(ctx, tx, id)
		if err != nil {
			return err
		}

		b.TotalEstDurationSecs = result.TotalEstDurationSecs
		b.TotalActualDurationSecs = result.TotalActualDurationSecs
		b.TotalCommercialSecs = result.TotalCommercialSecs
		b.TimingVarianceSecs = result.TimingVarianceSecs
		updated = b

		return s.repo.InsertAuditTx(ctx, tx, auditEntry(actor, "bulletin.update", "bulletin", id, b.Title))
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, result, nil
}

// Lock takes the editorial lock for the acting user. Taking a lock someone
// else holds requires ADMIN. The FOR UPDATE read serializes concurrent lock
// attempts so two producers cannot both pass the holder check.
func (s *BulletinService) Lock(ctx context.Context, id string) error {
	return s.setLock(ctx, id, true)
}

func (s *BulletinService) Unlock(ctx context.Context, id string) error {
	return s.setLock(ctx, id, false)
}

func (s *BulletinService) setLock(ctx context.Context, id string, locked bool) error {
	actor := ctxutil.ActorFromContext(ctx)

	return s.repo.InTx(ctx, func(tx *sql.Tx) error {
		b, err := s.repo.GetBulletinForUpdateTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if b.IsLocked && actor.Role != models.RoleAdmin &&
			(b.LockedBy == nil || *b.LockedBy != actor.UserID) {
			return ErrBulletinLocked
		}

		action := "bulletin.unlock"
		var holder *string
		if locked {
			action = "bulletin.lock"
			holder = &actor.UserID
		}
		if err := s.repo.SetBulletinLockTx(ctx, tx, id, locked, holder); err != nil {
			return err
		}
		return s.repo.InsertAuditTx(ctx, tx, auditEntry(actor, action, "bulletin", id, ""))
	})
}

// SoftDelete moves the bulletin to the trash; it stays restorable for the
// retention window.
func (s *BulletinService) SoftDelete(ctx context.Context, id string) error {
	actor := ctxutil.ActorFromContext(ctx)

	b, err := s.repo.GetBulletinByID(ctx, id)
	if err != nil {
		return err
	}
	if err := ensureEditable(b, actor); err != nil {
		return err
	}

	if err := s.repo.SoftDeleteBulletin(ctx, id); err != nil {
		return err
	}
	return s.repo.InsertAudit(ctx, auditEntry(actor, "bulletin.delete", "bulletin", id, b.Title))
}

// Restore revives a trashed bulletin. A bulletin past the retention window
// is gone even if the purge has not run yet.
func (s *BulletinService) Restore(ctx context.Context, id string) error {
	actor := ctxutil.ActorFromContext(ctx)

	if err := s.repo.RestoreBulletin(ctx, id, time.Now().Add(-s.retention)); err != nil {
		return err
	}
	return s.repo.InsertAudit(ctx, auditEntry(actor, "bulletin.restore", "bulletin", id, ""))
}
