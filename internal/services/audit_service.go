package services

import (
	"context"

	"github.com/newsroomhq/rundown/internal/database"
	"github.com/newsroomhq/rundown/internal/models"
)

const defaultAuditLimit = 200

type AuditService struct {
	repo *database.Repository
}

func NewAuditService(repo *database.Repository) *AuditService {
	return &AuditService{repo: repo}
}

func (s *AuditService) List(ctx context.Context, entityID string, limit int) ([]*models.AuditEntry, error) {
	if limit < 1 || limit > defaultAuditLimit {
		limit = defaultAuditLimit
	}
	return s.repo.ListAudit(ctx, entityID, limit)
}
