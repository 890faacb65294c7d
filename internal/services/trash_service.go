package services

import (
	"context"
	"time"

	"github.com/newsroomhq/rundown/internal/database"
	"github.com/newsroomhq/rundown/internal/models"
)

// TrashService lists soft-deleted bulletins and rows still inside the
// retention window and purges the ones past it.
type TrashService struct {
	repo      *database.Repository
	retention time.Duration
}

func NewTrashService(repo *database.Repository, retention time.Duration) *TrashService {
	return &TrashService{repo: repo, retention: retention}
}

type TrashContents struct {
	Bulletins []*models.Bulletin   `json:"bulletins"`
	Rows      []*models.RundownRow `json:"rows"`
}

func (s *TrashService) List(ctx context.Context) (*TrashContents, error) {
	since := time.Now().Add(-s.retention)

	bulletins, err := s.repo.ListDeletedBulletins(ctx, since)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListDeletedRows(ctx, since)
	if err != nil {
		return nil, err
	}
	return &TrashContents{Bulletins: bulletins, Rows: rows}, nil
}

// PurgeExpired hard-deletes everything whose retention window has passed and
// returns how many items went.
func (s *TrashService) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.retention)

	rows, err := s.repo.PurgeRows(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	bulletins, err := s.repo.PurgeBulletins(ctx, cutoff)
	if err != nil {
		return rows, err
	}
	return rows + bulletins, nil
}
